package fleet

import (
	"time"

	"github.com/google/uuid"
)

// Driver is the operational profile of a user with the driver role. Having
// one is what makes a user a driver for authorization purposes.
type Driver struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	FullName      string
	LicenseNumber string
	PhoneNumber   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "AVAILABLE"
	VehicleInUse       VehicleStatus = "IN_USE"
	VehicleMaintenance VehicleStatus = "MAINTENANCE"
)

func (s VehicleStatus) IsValid() bool {
	switch s {
	case VehicleAvailable, VehicleInUse, VehicleMaintenance:
		return true
	}
	return false
}

type Vehicle struct {
	ID           uuid.UUID
	LicensePlate string
	Make         string
	Model        string
	Year         int
	CapacityKg   int
	Status       VehicleStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
