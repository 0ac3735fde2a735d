package timeline

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusOrderPlaced    Status = "ORDER_PLACED"
	StatusDriverAssigned Status = "DRIVER_ASSIGNED"
	StatusPickedUp       Status = "PICKED_UP"
	StatusInTransit      Status = "IN_TRANSIT"
	StatusOutForDelivery Status = "OUT_FOR_DELIVERY"
	StatusDelivered      Status = "DELIVERED"
	StatusFailed         Status = "FAILED"
)

var labels = map[Status]string{
	StatusOrderPlaced:    "Order Placed",
	StatusDriverAssigned: "Driver Assigned",
	StatusPickedUp:       "Picked Up",
	StatusInTransit:      "In Transit",
	StatusOutForDelivery: "Out for Delivery",
	StatusDelivered:      "Delivered",
	StatusFailed:         "Delivery Failed",
}

func (s Status) IsValid() bool {
	_, ok := labels[s]
	return ok
}

// Label is the human readable form shown on tracking pages.
func (s Status) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

// IsCheckpoint reports whether a driver may report s without a shipment
// status change.
func (s Status) IsCheckpoint() bool {
	return s == StatusPickedUp || s == StatusInTransit || s == StatusOutForDelivery
}

// IsActive is true for statuses counted as "on the road".
func (s Status) IsActive() bool {
	return s == StatusInTransit || s == StatusOutForDelivery
}

// Entry is one audit record on a job. Exactly one entry per job is current.
type Entry struct {
	ID          uuid.UUID
	JobID       uuid.UUID
	Status      Status
	Location    string
	Description string
	IsCurrent   bool
	CreatedBy   *uuid.UUID
	Timestamp   time.Time
}
