package fleet

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockgen -destination=../../mocks/mock_fleet.go -package=mocks logipro/internal/domain/fleet DriverRepository

type DriverRepository interface {
	Create(ctx context.Context, driver *Driver) error
	GetByID(ctx context.Context, driverID uuid.UUID) (*Driver, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Driver, error)
	Update(ctx context.Context, driver *Driver) error
	Delete(ctx context.Context, driverID uuid.UUID) error
	List(ctx context.Context) ([]*Driver, error)
}

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *Vehicle) error
	GetByID(ctx context.Context, vehicleID uuid.UUID) (*Vehicle, error)
	Update(ctx context.Context, vehicle *Vehicle) error
	Delete(ctx context.Context, vehicleID uuid.UUID) error
	List(ctx context.Context, status *VehicleStatus) ([]*Vehicle, error)
}
