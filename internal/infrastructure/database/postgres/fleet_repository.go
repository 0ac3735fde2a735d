package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"logipro/internal/domain/fleet"
	"logipro/internal/infrastructure/database/postgres/models"
)

// DriverRepository implements fleet.DriverRepository. FullName is read
// from the linked user row.
type DriverRepository struct {
	db *DB
}

func NewDriverRepository(db *DB) *DriverRepository {
	return &DriverRepository{db: db}
}

func (r *DriverRepository) Create(ctx context.Context, d *fleet.Driver) error {
	now := time.Now()
	d.ID = uuid.New()
	d.CreatedAt = now
	d.UpdatedAt = now

	dbModel := &models.DriverModel{
		ID:            d.ID,
		UserID:        d.UserID,
		LicenseNumber: d.LicenseNumber,
		PhoneNumber:   d.PhoneNumber,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if err := r.db.conn(ctx).Omit("User").Create(dbModel).Error; err != nil {
		if isUniqueViolation(err, "user_id") {
			return fleet.ErrDriverExists
		}
		return fmt.Errorf("failed to create driver: %w", err)
	}
	return nil
}

func (r *DriverRepository) GetByID(ctx context.Context, driverID uuid.UUID) (*fleet.Driver, error) {
	return r.first(ctx, "drivers.id = ?", driverID)
}

func (r *DriverRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*fleet.Driver, error) {
	return r.first(ctx, "drivers.user_id = ?", userID)
}

func (r *DriverRepository) first(ctx context.Context, query string, args ...interface{}) (*fleet.Driver, error) {
	var dbModel models.DriverModel
	err := r.db.conn(ctx).Joins("User").Where(query, args...).First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fleet.ErrDriverNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}
	return toDriverEntity(&dbModel), nil
}

func (r *DriverRepository) Update(ctx context.Context, d *fleet.Driver) error {
	d.UpdatedAt = time.Now()

	result := r.db.conn(ctx).Model(&models.DriverModel{}).
		Where("id = ?", d.ID).
		Updates(map[string]interface{}{
			"license_number": d.LicenseNumber,
			"phone_number":   d.PhoneNumber,
			"updated_at":     d.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update driver: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fleet.ErrDriverNotFound
	}
	return nil
}

func (r *DriverRepository) Delete(ctx context.Context, driverID uuid.UUID) error {
	result := r.db.conn(ctx).Where("id = ?", driverID).Delete(&models.DriverModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete driver: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fleet.ErrDriverNotFound
	}
	return nil
}

func (r *DriverRepository) List(ctx context.Context) ([]*fleet.Driver, error) {
	var dbModels []models.DriverModel
	if err := r.db.conn(ctx).Joins("User").Order(`"User".full_name ASC`).Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}

	drivers := make([]*fleet.Driver, len(dbModels))
	for i := range dbModels {
		drivers[i] = toDriverEntity(&dbModels[i])
	}
	return drivers, nil
}

func toDriverEntity(m *models.DriverModel) *fleet.Driver {
	d := &fleet.Driver{
		ID:            m.ID,
		UserID:        m.UserID,
		LicenseNumber: m.LicenseNumber,
		PhoneNumber:   m.PhoneNumber,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.User != nil {
		d.FullName = m.User.FullName
	}
	return d
}

type VehicleRepository struct {
	db *DB
}

func NewVehicleRepository(db *DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

func (r *VehicleRepository) Create(ctx context.Context, v *fleet.Vehicle) error {
	now := time.Now()
	v.ID = uuid.New()
	v.CreatedAt = now
	v.UpdatedAt = now
	if v.Status == "" {
		v.Status = fleet.VehicleAvailable
	}

	if err := r.db.conn(ctx).Create(toVehicleModel(v)).Error; err != nil {
		if isUniqueViolation(err, "license_plate") {
			return fleet.ErrDuplicatePlate
		}
		return fmt.Errorf("failed to create vehicle: %w", err)
	}
	return nil
}

func (r *VehicleRepository) GetByID(ctx context.Context, vehicleID uuid.UUID) (*fleet.Vehicle, error) {
	var dbModel models.VehicleModel
	err := r.db.conn(ctx).Where("id = ?", vehicleID).First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fleet.ErrVehicleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}
	return toVehicleEntity(&dbModel), nil
}

func (r *VehicleRepository) Update(ctx context.Context, v *fleet.Vehicle) error {
	v.UpdatedAt = time.Now()

	result := r.db.conn(ctx).Model(&models.VehicleModel{}).
		Where("id = ?", v.ID).
		Updates(map[string]interface{}{
			"license_plate": v.LicensePlate,
			"make":          v.Make,
			"model":         v.Model,
			"year":          v.Year,
			"capacity_kg":   v.CapacityKg,
			"status":        string(v.Status),
			"updated_at":    v.UpdatedAt,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error, "license_plate") {
			return fleet.ErrDuplicatePlate
		}
		return fmt.Errorf("failed to update vehicle: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fleet.ErrVehicleNotFound
	}
	return nil
}

func (r *VehicleRepository) Delete(ctx context.Context, vehicleID uuid.UUID) error {
	result := r.db.conn(ctx).Where("id = ?", vehicleID).Delete(&models.VehicleModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete vehicle: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fleet.ErrVehicleNotFound
	}
	return nil
}

func (r *VehicleRepository) List(ctx context.Context, status *fleet.VehicleStatus) ([]*fleet.Vehicle, error) {
	var dbModels []models.VehicleModel

	db := r.db.conn(ctx)
	if status != nil {
		db = db.Where("status = ?", string(*status))
	}
	if err := db.Order("license_plate ASC").Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}

	vehicles := make([]*fleet.Vehicle, len(dbModels))
	for i := range dbModels {
		vehicles[i] = toVehicleEntity(&dbModels[i])
	}
	return vehicles, nil
}

func toVehicleModel(v *fleet.Vehicle) *models.VehicleModel {
	return &models.VehicleModel{
		ID:           v.ID,
		LicensePlate: v.LicensePlate,
		Make:         v.Make,
		Model:        v.Model,
		Year:         v.Year,
		CapacityKg:   v.CapacityKg,
		Status:       string(v.Status),
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

func toVehicleEntity(m *models.VehicleModel) *fleet.Vehicle {
	return &fleet.Vehicle{
		ID:           m.ID,
		LicensePlate: m.LicensePlate,
		Make:         m.Make,
		Model:        m.Model,
		Year:         m.Year,
		CapacityKg:   m.CapacityKg,
		Status:       fleet.VehicleStatus(m.Status),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
