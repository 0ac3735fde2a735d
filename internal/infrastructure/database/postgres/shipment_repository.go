package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"logipro/internal/domain/shipment"
	"logipro/internal/infrastructure/database/postgres/models"
)

type ShipmentRepository struct {
	db *DB
}

func NewShipmentRepository(db *DB) *ShipmentRepository {
	return &ShipmentRepository{db: db}
}

func (r *ShipmentRepository) Create(ctx context.Context, s *shipment.Shipment) error {
	now := time.Now()
	s.ID = uuid.New()
	s.CreatedAt = now
	s.UpdatedAt = now
	if s.Status == "" {
		s.Status = shipment.StatusPending
	}

	if err := r.db.conn(ctx).Create(toShipmentModel(s)).Error; err != nil {
		return fmt.Errorf("failed to create shipment: %w", err)
	}

	return nil
}

func (r *ShipmentRepository) GetByID(ctx context.Context, shipmentID uuid.UUID) (*shipment.Shipment, error) {
	return r.first(r.db.conn(ctx), "id = ?", shipmentID)
}

func (r *ShipmentRepository) GetForUpdate(ctx context.Context, shipmentID uuid.UUID) (*shipment.Shipment, error) {
	return r.first(r.db.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", shipmentID)
}

func (r *ShipmentRepository) GetByJobID(ctx context.Context, jobID uuid.UUID) (*shipment.Shipment, error) {
	return r.first(r.db.conn(ctx), "job_id = ?", jobID)
}

func (r *ShipmentRepository) first(db *gorm.DB, query string, args ...interface{}) (*shipment.Shipment, error) {
	var dbModel models.ShipmentModel
	err := db.Where(query, args...).First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shipment.ErrShipmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shipment: %w", err)
	}

	return toShipmentEntity(&dbModel), nil
}

func (r *ShipmentRepository) Update(ctx context.Context, s *shipment.Shipment) error {
	s.UpdatedAt = time.Now()

	result := r.db.conn(ctx).Model(&models.ShipmentModel{}).
		Where("id = ?", s.ID).
		Updates(map[string]interface{}{
			"driver_id":             s.DriverID,
			"vehicle_id":            s.VehicleID,
			"status":                string(s.Status),
			"estimated_departure":   s.EstimatedDeparture,
			"estimated_arrival":     s.EstimatedArrival,
			"actual_departure":      s.ActualDeparture,
			"actual_arrival":        s.ActualArrival,
			"proof_of_delivery_url": s.ProofOfDeliveryURL,
			"signature_name":        s.SignatureName,
			"failure_reason":        s.FailureReason,
			"updated_at":            s.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update shipment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shipment.ErrShipmentNotFound
	}

	return nil
}

func (r *ShipmentRepository) List(ctx context.Context, filter *shipment.Filter) ([]*shipment.Shipment, int64, error) {
	var dbModels []models.ShipmentModel
	var total int64

	db := r.db.conn(ctx).Model(&models.ShipmentModel{})
	if filter.Status != nil {
		db = db.Where("status = ?", string(*filter.Status))
	}
	if filter.DriverID != nil {
		db = db.Where("driver_id = ?", *filter.DriverID)
	}
	if filter.JobID != nil {
		db = db.Where("job_id = ?", *filter.JobID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count shipments: %w", err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	err := db.Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&dbModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list shipments: %w", err)
	}

	shipments := make([]*shipment.Shipment, len(dbModels))
	for i := range dbModels {
		shipments[i] = toShipmentEntity(&dbModels[i])
	}

	return shipments, total, nil
}

// ListAssignments returns the driver's non-terminal shipments, earliest
// requested pickup first.
func (r *ShipmentRepository) ListAssignments(ctx context.Context, driverID uuid.UUID) ([]*shipment.Assignment, error) {
	var dbModels []models.ShipmentModel

	err := r.db.conn(ctx).
		Joins("Job").
		Where("shipments.driver_id = ?", driverID).
		Where("shipments.status IN ?", []string{string(shipment.StatusAssigned), string(shipment.StatusInTransit)}).
		Order(`"Job".requested_pickup_at ASC NULLS LAST`).
		Order("shipments.created_at ASC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	assignments := make([]*shipment.Assignment, 0, len(dbModels))
	for i := range dbModels {
		m := &dbModels[i]
		a := &shipment.Assignment{Shipment: toShipmentEntity(m)}
		if m.Job != nil {
			a.JobNumber = m.Job.JobNumber
			a.PickupAddress = m.Job.PickupAddress
			a.PickupCity = m.Job.PickupCity
			a.DeliveryAddress = m.Job.DeliveryAddress
			a.DeliveryCity = m.Job.DeliveryCity
			a.RequestedPickupAt = m.Job.RequestedPickupAt
		}
		assignments = append(assignments, a)
	}

	return assignments, nil
}

func toShipmentModel(s *shipment.Shipment) *models.ShipmentModel {
	return &models.ShipmentModel{
		ID:                 s.ID,
		JobID:              s.JobID,
		DriverID:           s.DriverID,
		VehicleID:          s.VehicleID,
		Status:             string(s.Status),
		EstimatedDeparture: s.EstimatedDeparture,
		EstimatedArrival:   s.EstimatedArrival,
		ActualDeparture:    s.ActualDeparture,
		ActualArrival:      s.ActualArrival,
		ProofOfDeliveryURL: s.ProofOfDeliveryURL,
		SignatureName:      s.SignatureName,
		FailureReason:      s.FailureReason,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func toShipmentEntity(m *models.ShipmentModel) *shipment.Shipment {
	return &shipment.Shipment{
		ID:                 m.ID,
		JobID:              m.JobID,
		DriverID:           m.DriverID,
		VehicleID:          m.VehicleID,
		Status:             shipment.Status(m.Status),
		EstimatedDeparture: m.EstimatedDeparture,
		EstimatedArrival:   m.EstimatedArrival,
		ActualDeparture:    m.ActualDeparture,
		ActualArrival:      m.ActualArrival,
		ProofOfDeliveryURL: m.ProofOfDeliveryURL,
		SignatureName:      m.SignatureName,
		FailureReason:      m.FailureReason,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}
