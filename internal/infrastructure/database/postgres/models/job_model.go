package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// JobModel represents the database model for Jobs. job_number is filled
// from the job_number_seq sequence, never computed from existing rows.
type JobModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	JobNumber   int64     `gorm:"not null;uniqueIndex"`
	CustomerID  uuid.UUID `gorm:"type:uuid;not null;index"`
	JobType     string    `gorm:"type:varchar(20);not null"`
	ServiceType string    `gorm:"type:varchar(30);not null;index"`

	CargoDescription string `gorm:"type:text;not null"`

	PickupAddress       string `gorm:"type:text;not null"`
	PickupCity          string `gorm:"type:varchar(100);not null"`
	PickupContactPerson string `gorm:"type:varchar(100);not null"`
	PickupContactPhone  string `gorm:"type:varchar(20);not null"`

	DeliveryAddress       string `gorm:"type:text;not null"`
	DeliveryCity          string `gorm:"type:varchar(100);not null"`
	DeliveryRegion        string `gorm:"type:varchar(10);not null;default:''"`
	DeliveryContactPerson string `gorm:"type:varchar(100);not null"`
	DeliveryContactPhone  string `gorm:"type:varchar(20);not null"`

	RequestedPickupAt *time.Time `gorm:"type:timestamptz"`

	RoomCount      *int              `gorm:"type:integer"`
	VolumeCF       *int              `gorm:"column:volume_cf;type:integer"`
	CrewSize       *int              `gorm:"type:integer"`
	EstimatedItems datatypes.JSONMap `gorm:"type:jsonb"`

	PalletCount  *int    `gorm:"type:integer"`
	WeightLbs    *int    `gorm:"type:integer"`
	IsHazardous  bool    `gorm:"default:false;not null"`
	BOLNumber    *string `gorm:"column:bol_number;type:varchar(50);uniqueIndex"`
	PricingModel *string `gorm:"type:varchar(20)"`

	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`

	Customer *UserModel `gorm:"foreignKey:CustomerID"`
}

func (JobModel) TableName() string {
	return "jobs"
}

// JobTimelineModel represents one status entry. A partial unique index on
// (job_id) WHERE is_current backs the single-current rule.
type JobTimelineModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	JobID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	Status      string     `gorm:"type:varchar(30);not null;index"`
	Location    string     `gorm:"type:varchar(255);not null;default:''"`
	Description string     `gorm:"type:text;not null;default:''"`
	IsCurrent   bool       `gorm:"default:false;not null"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid"`
	Timestamp   time.Time  `gorm:"not null;index"`

	Job *JobModel `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
}

func (JobTimelineModel) TableName() string {
	return "job_timelines"
}
