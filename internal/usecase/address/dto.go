package address

import (
	"time"

	"github.com/google/uuid"

	domainAddress "logipro/internal/domain/address"
)

type CreateAddressRequest struct {
	Label     string  `json:"label" validate:"required,oneof=HOME OFFICE WAREHOUSE OTHER"`
	Name      string  `json:"name" validate:"required,max=100"`
	Address1  string  `json:"address_1" validate:"required,max=255"`
	Address2  *string `json:"address_2" validate:"omitempty,max=255"`
	City      string  `json:"city" validate:"required,max=100"`
	State     string  `json:"state" validate:"required,max=100"`
	ZipCode   string  `json:"zip_code" validate:"required,max=20"`
	Phone     *string `json:"phone" validate:"omitempty,phone"`
	IsDefault bool    `json:"is_default"`
}

type UpdateAddressRequest struct {
	Label     *string `json:"label" validate:"omitempty,oneof=HOME OFFICE WAREHOUSE OTHER"`
	Name      *string `json:"name" validate:"omitempty,max=100"`
	Address1  *string `json:"address_1" validate:"omitempty,max=255"`
	Address2  *string `json:"address_2" validate:"omitempty,max=255"`
	City      *string `json:"city" validate:"omitempty,max=100"`
	State     *string `json:"state" validate:"omitempty,max=100"`
	ZipCode   *string `json:"zip_code" validate:"omitempty,max=20"`
	Phone     *string `json:"phone" validate:"omitempty,phone"`
	IsDefault *bool   `json:"is_default"`
}

type AddressResponse struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label"`
	Name      string    `json:"name"`
	Address1  string    `json:"address_1"`
	Address2  *string   `json:"address_2,omitempty"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	ZipCode   string    `json:"zip_code"`
	Phone     *string   `json:"phone,omitempty"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToAddressResponse(a *domainAddress.Address) *AddressResponse {
	return &AddressResponse{
		ID:        a.ID,
		Label:     string(a.Label),
		Name:      a.Name,
		Address1:  a.Address1,
		Address2:  a.Address2,
		City:      a.City,
		State:     a.State,
		ZipCode:   a.ZipCode,
		Phone:     a.Phone,
		IsDefault: a.IsDefault,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
