package models

import (
	"time"

	"github.com/google/uuid"
)

// DriverModel represents the database model for driver profiles
type DriverModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	LicenseNumber string    `gorm:"type:varchar(50);not null"`
	PhoneNumber   string    `gorm:"type:varchar(20);not null"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`

	User *UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (DriverModel) TableName() string {
	return "drivers"
}

// VehicleModel represents the database model for Vehicles
type VehicleModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	LicensePlate string    `gorm:"type:varchar(20);not null;uniqueIndex"`
	Make         string    `gorm:"type:varchar(50);not null"`
	Model        string    `gorm:"type:varchar(50);not null"`
	Year         int       `gorm:"type:integer;not null"`
	CapacityKg   int       `gorm:"type:integer;not null;default:0"`
	Status       string    `gorm:"type:varchar(20);not null;default:'AVAILABLE';index"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (VehicleModel) TableName() string {
	return "vehicles"
}
