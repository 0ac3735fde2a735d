package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"logipro/internal/domain/address"
	"logipro/internal/infrastructure/database/postgres/models"
)

type AddressRepository struct {
	db *DB
}

func NewAddressRepository(db *DB) *AddressRepository {
	return &AddressRepository{db: db}
}

func (r *AddressRepository) Create(ctx context.Context, a *address.Address) error {
	now := time.Now()
	a.ID = uuid.New()
	a.CreatedAt = now
	a.UpdatedAt = now

	if err := r.db.conn(ctx).Omit("Customer").Create(toAddressModel(a)).Error; err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}
	return nil
}

func (r *AddressRepository) Get(ctx context.Context, customerID, addressID uuid.UUID) (*address.Address, error) {
	var dbModel models.CustomerAddressModel
	err := r.db.conn(ctx).
		Where("id = ? AND customer_id = ?", addressID, customerID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, address.ErrAddressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get address: %w", err)
	}
	return toAddressEntity(&dbModel), nil
}

func (r *AddressRepository) Update(ctx context.Context, a *address.Address) error {
	a.UpdatedAt = time.Now()

	result := r.db.conn(ctx).Model(&models.CustomerAddressModel{}).
		Where("id = ? AND customer_id = ?", a.ID, a.CustomerID).
		Updates(map[string]interface{}{
			"label":      string(a.Label),
			"name":       a.Name,
			"address1":   a.Address1,
			"address2":   a.Address2,
			"city":       a.City,
			"state":      a.State,
			"zip_code":   a.ZipCode,
			"phone":      a.Phone,
			"is_default": a.IsDefault,
			"updated_at": a.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update address: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return address.ErrAddressNotFound
	}
	return nil
}

func (r *AddressRepository) Delete(ctx context.Context, customerID, addressID uuid.UUID) error {
	result := r.db.conn(ctx).
		Where("id = ? AND customer_id = ?", addressID, customerID).
		Delete(&models.CustomerAddressModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete address: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return address.ErrAddressNotFound
	}
	return nil
}

// List returns the default address first, then the newest.
func (r *AddressRepository) List(ctx context.Context, customerID uuid.UUID) ([]*address.Address, error) {
	var dbModels []models.CustomerAddressModel
	err := r.db.conn(ctx).
		Where("customer_id = ?", customerID).
		Order("is_default DESC").
		Order("created_at DESC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}

	addresses := make([]*address.Address, len(dbModels))
	for i := range dbModels {
		addresses[i] = toAddressEntity(&dbModels[i])
	}
	return addresses, nil
}

func (r *AddressRepository) ClearDefault(ctx context.Context, customerID uuid.UUID, except uuid.UUID) error {
	err := r.db.conn(ctx).Model(&models.CustomerAddressModel{}).
		Where("customer_id = ? AND id <> ? AND is_default", customerID, except).
		Updates(map[string]interface{}{
			"is_default": false,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to clear default address: %w", err)
	}
	return nil
}

func toAddressModel(a *address.Address) *models.CustomerAddressModel {
	return &models.CustomerAddressModel{
		ID:         a.ID,
		CustomerID: a.CustomerID,
		Label:      string(a.Label),
		Name:       a.Name,
		Address1:   a.Address1,
		Address2:   a.Address2,
		City:       a.City,
		State:      a.State,
		ZipCode:    a.ZipCode,
		Phone:      a.Phone,
		IsDefault:  a.IsDefault,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func toAddressEntity(m *models.CustomerAddressModel) *address.Address {
	return &address.Address{
		ID:         m.ID,
		CustomerID: m.CustomerID,
		Label:      address.Label(m.Label),
		Name:       m.Name,
		Address1:   m.Address1,
		Address2:   m.Address2,
		City:       m.City,
		State:      m.State,
		ZipCode:    m.ZipCode,
		Phone:      m.Phone,
		IsDefault:  m.IsDefault,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
