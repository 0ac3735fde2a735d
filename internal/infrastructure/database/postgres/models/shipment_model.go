package models

import (
	"time"

	"github.com/google/uuid"
)

// ShipmentModel represents the database model for Shipments
type ShipmentModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	JobID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	DriverID  *uuid.UUID `gorm:"type:uuid;index"`
	VehicleID *uuid.UUID `gorm:"type:uuid;index"`
	Status    string     `gorm:"type:varchar(20);not null;default:'PENDING';index"`

	EstimatedDeparture *time.Time `gorm:"type:timestamptz"`
	EstimatedArrival   *time.Time `gorm:"type:timestamptz"`
	ActualDeparture    *time.Time `gorm:"type:timestamptz"`
	ActualArrival      *time.Time `gorm:"type:timestamptz"`

	ProofOfDeliveryURL *string `gorm:"column:proof_of_delivery_url;type:varchar(500)"`
	SignatureName      *string `gorm:"type:varchar(100)"`
	FailureReason      *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`

	Job     *JobModel     `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
	Driver  *DriverModel  `gorm:"foreignKey:DriverID;constraint:OnDelete:SET NULL"`
	Vehicle *VehicleModel `gorm:"foreignKey:VehicleID;constraint:OnDelete:SET NULL"`
}

func (ShipmentModel) TableName() string {
	return "shipments"
}
