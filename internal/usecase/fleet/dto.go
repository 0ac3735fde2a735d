package fleet

import (
	"time"

	"github.com/google/uuid"

	domainFleet "logipro/internal/domain/fleet"
)

type CreateDriverRequest struct {
	UserID        uuid.UUID `json:"user_id" validate:"required"`
	LicenseNumber string    `json:"license_number" validate:"required,max=50"`
	PhoneNumber   string    `json:"phone_number" validate:"required,phone"`
}

type UpdateDriverRequest struct {
	LicenseNumber *string `json:"license_number" validate:"omitempty,max=50"`
	PhoneNumber   *string `json:"phone_number" validate:"omitempty,phone"`
}

type CreateVehicleRequest struct {
	LicensePlate string  `json:"license_plate" validate:"required,max=20"`
	Make         string  `json:"make" validate:"required,max=50"`
	Model        string  `json:"model" validate:"required,max=50"`
	Year         int     `json:"year" validate:"required,min=1950,max=2100"`
	CapacityKg   int     `json:"capacity_kg" validate:"min=0"`
	Status       *string `json:"status" validate:"omitempty,oneof=AVAILABLE IN_USE MAINTENANCE"`
}

type UpdateVehicleRequest struct {
	LicensePlate *string `json:"license_plate" validate:"omitempty,max=20"`
	Make         *string `json:"make" validate:"omitempty,max=50"`
	Model        *string `json:"model" validate:"omitempty,max=50"`
	Year         *int    `json:"year" validate:"omitempty,min=1950,max=2100"`
	CapacityKg   *int    `json:"capacity_kg" validate:"omitempty,min=0"`
	Status       *string `json:"status" validate:"omitempty,oneof=AVAILABLE IN_USE MAINTENANCE"`
}

type ListVehiclesRequest struct {
	Status *string `form:"status" validate:"omitempty,oneof=AVAILABLE IN_USE MAINTENANCE"`
}

type DriverResponse struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	FullName      string    `json:"full_name"`
	LicenseNumber string    `json:"license_number"`
	PhoneNumber   string    `json:"phone_number"`
	CreatedAt     time.Time `json:"created_at"`
}

type VehicleResponse struct {
	ID           uuid.UUID `json:"id"`
	LicensePlate string    `json:"license_plate"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	CapacityKg   int       `json:"capacity_kg"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

func ToDriverResponse(d *domainFleet.Driver) *DriverResponse {
	return &DriverResponse{
		ID:            d.ID,
		UserID:        d.UserID,
		FullName:      d.FullName,
		LicenseNumber: d.LicenseNumber,
		PhoneNumber:   d.PhoneNumber,
		CreatedAt:     d.CreatedAt,
	}
}

func ToVehicleResponse(v *domainFleet.Vehicle) *VehicleResponse {
	return &VehicleResponse{
		ID:           v.ID,
		LicensePlate: v.LicensePlate,
		Make:         v.Make,
		Model:        v.Model,
		Year:         v.Year,
		CapacityKg:   v.CapacityKg,
		Status:       string(v.Status),
		CreatedAt:    v.CreatedAt,
	}
}
