package shipment

import (
	"time"

	"github.com/google/uuid"
)

type Shipment struct {
	ID        uuid.UUID
	JobID     uuid.UUID
	DriverID  *uuid.UUID
	VehicleID *uuid.UUID
	Status    Status

	EstimatedDeparture *time.Time
	EstimatedArrival   *time.Time
	ActualDeparture    *time.Time
	ActualArrival      *time.Time

	ProofOfDeliveryURL *string
	SignatureName      *string
	FailureReason      *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AssignedTo reports whether driverID is the shipment's current driver.
func (s *Shipment) AssignedTo(driverID uuid.UUID) bool {
	return s.DriverID != nil && *s.DriverID == driverID
}

// Assignment is a shipment joined with what a driver needs to run it.
type Assignment struct {
	Shipment          *Shipment
	JobNumber         int64
	PickupAddress     string
	PickupCity        string
	DeliveryAddress   string
	DeliveryCity      string
	RequestedPickupAt *time.Time
}
