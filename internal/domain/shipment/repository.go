package shipment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, shipment *Shipment) error
	GetByID(ctx context.Context, shipmentID uuid.UUID) (*Shipment, error)
	// GetForUpdate loads the shipment and holds a row lock until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, shipmentID uuid.UUID) (*Shipment, error)
	GetByJobID(ctx context.Context, jobID uuid.UUID) (*Shipment, error)
	Update(ctx context.Context, shipment *Shipment) error
	List(ctx context.Context, filter *Filter) ([]*Shipment, int64, error)
	ListAssignments(ctx context.Context, driverID uuid.UUID) ([]*Assignment, error)
}

type Filter struct {
	Status   *Status
	DriverID *uuid.UUID
	JobID    *uuid.UUID
	Page     int
	PageSize int
}
