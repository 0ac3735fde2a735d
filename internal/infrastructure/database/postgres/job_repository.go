package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"logipro/internal/authz"
	"logipro/internal/domain/job"
	"logipro/internal/domain/timeline"
	"logipro/internal/infrastructure/database/postgres/models"
)

const currentStatusClause = "EXISTS (SELECT 1 FROM job_timelines t WHERE t.job_id = jobs.id AND t.is_current AND t.status IN ?)"

type JobRepository struct {
	db *DB
}

func NewJobRepository(db *DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) NextNumber(ctx context.Context) (int64, error) {
	var next int64
	if err := r.db.conn(ctx).Raw("SELECT nextval('job_number_seq')").Scan(&next).Error; err != nil {
		return 0, fmt.Errorf("failed to draw job number: %w", err)
	}
	return next, nil
}

func (r *JobRepository) Create(ctx context.Context, j *job.Job) error {
	now := time.Now()
	j.ID = uuid.New()
	j.CreatedAt = now
	j.UpdatedAt = now

	if err := r.db.conn(ctx).Create(toJobModel(j)).Error; err != nil {
		return createJobError(err)
	}

	return nil
}

func (r *JobRepository) GetByID(ctx context.Context, jobID uuid.UUID) (*job.Job, error) {
	return r.first(ctx, "id = ?", jobID)
}

func (r *JobRepository) GetByNumber(ctx context.Context, number int64) (*job.Job, error) {
	return r.first(ctx, "job_number = ?", number)
}

func (r *JobRepository) first(ctx context.Context, query string, args ...interface{}) (*job.Job, error) {
	var dbModel models.JobModel
	err := r.db.conn(ctx).Where(query, args...).First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, job.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return toJobEntity(&dbModel), nil
}

// Update rewrites the mutable job fields. job_number and customer_id are
// never part of the update set.
func (r *JobRepository) Update(ctx context.Context, j *job.Job) error {
	j.UpdatedAt = time.Now()
	m := toJobModel(j)

	result := r.db.conn(ctx).Model(&models.JobModel{}).
		Where("id = ?", j.ID).
		Updates(map[string]interface{}{
			"job_type":                m.JobType,
			"service_type":            m.ServiceType,
			"cargo_description":       m.CargoDescription,
			"pickup_address":          m.PickupAddress,
			"pickup_city":             m.PickupCity,
			"pickup_contact_person":   m.PickupContactPerson,
			"pickup_contact_phone":    m.PickupContactPhone,
			"delivery_address":        m.DeliveryAddress,
			"delivery_city":           m.DeliveryCity,
			"delivery_region":         m.DeliveryRegion,
			"delivery_contact_person": m.DeliveryContactPerson,
			"delivery_contact_phone":  m.DeliveryContactPhone,
			"requested_pickup_at":     m.RequestedPickupAt,
			"room_count":              m.RoomCount,
			"volume_cf":               m.VolumeCF,
			"crew_size":               m.CrewSize,
			"estimated_items":         m.EstimatedItems,
			"pallet_count":            m.PalletCount,
			"weight_lbs":              m.WeightLbs,
			"is_hazardous":            m.IsHazardous,
			"bol_number":              m.BOLNumber,
			"pricing_model":           m.PricingModel,
			"updated_at":              j.UpdatedAt,
		})

	if result.Error != nil {
		if isUniqueViolation(result.Error, "bol_number") {
			return job.ErrDuplicateBOL
		}
		return fmt.Errorf("failed to update job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return job.ErrJobNotFound
	}

	return nil
}

func (r *JobRepository) List(ctx context.Context, filter *job.Filter) ([]*job.Job, int64, error) {
	var dbModels []models.JobModel
	var total int64

	db := r.db.conn(ctx).Model(&models.JobModel{})

	if filter.CustomerID != nil {
		db = db.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.DriverID != nil {
		db = db.Where("EXISTS (SELECT 1 FROM shipments s WHERE s.job_id = jobs.id AND s.driver_id = ?)", *filter.DriverID)
	}
	if filter.ServiceType != nil {
		db = db.Where("service_type = ?", string(*filter.ServiceType))
	}
	if filter.Status != nil {
		db = db.Where(currentStatusClause, []string{*filter.Status})
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		db = db.Where("CAST(job_number AS TEXT) LIKE ? OR pickup_address ILIKE ? OR delivery_address ILIKE ? OR pickup_city ILIKE ? OR delivery_city ILIKE ?",
			search, search, search, search, search)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	err := db.Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&dbModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}

	jobs := make([]*job.Job, len(dbModels))
	for i := range dbModels {
		jobs[i] = toJobEntity(&dbModels[i])
	}

	return jobs, total, nil
}

func (r *JobRepository) CustomerStats(ctx context.Context, customerID uuid.UUID) (*job.CustomerStats, error) {
	stats := &job.CustomerStats{}
	base := func() *gorm.DB {
		return r.db.conn(ctx).Model(&models.JobModel{}).Where("customer_id = ?", customerID)
	}

	if err := base().Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}
	if err := base().Where(currentStatusClause, activeStatuses()).Count(&stats.Active).Error; err != nil {
		return nil, fmt.Errorf("failed to count active jobs: %w", err)
	}
	if err := base().Where(currentStatusClause, []string{string(timeline.StatusDelivered)}).Count(&stats.Delivered).Error; err != nil {
		return nil, fmt.Errorf("failed to count delivered jobs: %w", err)
	}

	return stats, nil
}

func (r *JobRepository) PublicStats(ctx context.Context) (*job.PublicStats, error) {
	stats := &job.PublicStats{}

	err := r.db.conn(ctx).Model(&models.UserModel{}).
		Where("role = ?", string(authz.RoleCustomer)).
		Count(&stats.TotalCustomers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	err = r.db.conn(ctx).Model(&models.JobModel{}).
		Where(currentStatusClause, []string{string(timeline.StatusDelivered)}).
		Count(&stats.CompletedDeliveries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count delivered jobs: %w", err)
	}

	err = r.db.conn(ctx).Model(&models.JobModel{}).
		Where(currentStatusClause, activeStatuses()).
		Count(&stats.ActiveOrders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count active jobs: %w", err)
	}

	return stats, nil
}

func activeStatuses() []string {
	return []string{string(timeline.StatusInTransit), string(timeline.StatusOutForDelivery)}
}

func toJobModel(j *job.Job) *models.JobModel {
	m := &models.JobModel{
		ID:                    j.ID,
		JobNumber:             j.JobNumber,
		CustomerID:            j.CustomerID,
		JobType:               string(j.JobType),
		ServiceType:           string(j.ServiceType),
		CargoDescription:      j.CargoDescription,
		PickupAddress:         j.Pickup.Address,
		PickupCity:            j.Pickup.City,
		PickupContactPerson:   j.Pickup.ContactPerson,
		PickupContactPhone:    j.Pickup.ContactPhone,
		DeliveryAddress:       j.Delivery.Address,
		DeliveryCity:          j.Delivery.City,
		DeliveryRegion:        j.Delivery.Region,
		DeliveryContactPerson: j.Delivery.ContactPerson,
		DeliveryContactPhone:  j.Delivery.ContactPhone,
		RequestedPickupAt:     j.RequestedPickupAt,
		RoomCount:             j.RoomCount,
		VolumeCF:              j.VolumeCF,
		CrewSize:              j.CrewSize,
		PalletCount:           j.PalletCount,
		WeightLbs:             j.WeightLbs,
		IsHazardous:           j.IsHazardous,
		BOLNumber:             j.BOLNumber,
		CreatedAt:             j.CreatedAt,
		UpdatedAt:             j.UpdatedAt,
	}
	if j.PricingModel != nil {
		pm := string(*j.PricingModel)
		m.PricingModel = &pm
	}
	if len(j.EstimatedItems) > 0 {
		m.EstimatedItems = datatypes.JSONMap{}
		for item, qty := range j.EstimatedItems {
			m.EstimatedItems[item] = qty
		}
	}
	return m
}

func toJobEntity(m *models.JobModel) *job.Job {
	j := &job.Job{
		ID:               m.ID,
		JobNumber:        m.JobNumber,
		CustomerID:       m.CustomerID,
		JobType:          job.JobType(m.JobType),
		ServiceType:      job.ServiceType(m.ServiceType),
		CargoDescription: m.CargoDescription,
		Pickup: job.Stop{
			Address:       m.PickupAddress,
			City:          m.PickupCity,
			ContactPerson: m.PickupContactPerson,
			ContactPhone:  m.PickupContactPhone,
		},
		Delivery: job.Stop{
			Address:       m.DeliveryAddress,
			City:          m.DeliveryCity,
			Region:        m.DeliveryRegion,
			ContactPerson: m.DeliveryContactPerson,
			ContactPhone:  m.DeliveryContactPhone,
		},
		RequestedPickupAt: m.RequestedPickupAt,
		RoomCount:         m.RoomCount,
		VolumeCF:          m.VolumeCF,
		CrewSize:          m.CrewSize,
		PalletCount:       m.PalletCount,
		WeightLbs:         m.WeightLbs,
		IsHazardous:       m.IsHazardous,
		BOLNumber:         m.BOLNumber,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	if m.PricingModel != nil {
		pm := job.PricingModel(*m.PricingModel)
		j.PricingModel = &pm
	}
	if len(m.EstimatedItems) > 0 {
		j.EstimatedItems = make(map[string]int, len(m.EstimatedItems))
		for item, raw := range m.EstimatedItems {
			switch qty := raw.(type) {
			case float64:
				j.EstimatedItems[item] = int(qty)
			case int:
				j.EstimatedItems[item] = qty
			}
		}
	}
	return j
}

// createJobError maps unique violations on insert to conflicts. The
// job_number index backs up the sequence.
func createJobError(err error) error {
	switch {
	case isUniqueViolation(err, "job_number"):
		return job.ErrDuplicateNumber
	case isUniqueViolation(err, "bol_number"):
		return job.ErrDuplicateBOL
	default:
		return fmt.Errorf("failed to create job: %w", err)
	}
}
