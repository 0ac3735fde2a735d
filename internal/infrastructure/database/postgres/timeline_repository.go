package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"logipro/internal/domain/job"
	"logipro/internal/domain/timeline"
	"logipro/internal/infrastructure/database/postgres/models"
)

type TimelineRepository struct {
	db *DB
}

func NewTimelineRepository(db *DB) *TimelineRepository {
	return &TimelineRepository{db: db}
}

// Append serialises writers on the job row so two concurrent appends can
// never both leave a current entry behind.
func (r *TimelineRepository) Append(ctx context.Context, entry *timeline.Entry) error {
	db := r.db.conn(ctx)

	var locked models.JobModel
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", entry.JobID).
		First(&locked).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return job.ErrJobNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock job: %w", err)
	}

	err = db.Model(&models.JobTimelineModel{}).
		Where("job_id = ? AND is_current", entry.JobID).
		Update("is_current", false).Error
	if err != nil {
		return fmt.Errorf("failed to clear current timeline entry: %w", err)
	}

	entry.ID = uuid.New()
	entry.IsCurrent = true
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	if err := db.Create(toTimelineModel(entry)).Error; err != nil {
		return fmt.Errorf("failed to append timeline entry: %w", err)
	}

	return nil
}

func (r *TimelineRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]*timeline.Entry, error) {
	var dbModels []models.JobTimelineModel

	err := r.db.conn(ctx).
		Where("job_id = ?", jobID).
		Order("timestamp ASC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list timeline: %w", err)
	}

	entries := make([]*timeline.Entry, len(dbModels))
	for i := range dbModels {
		entries[i] = toTimelineEntity(&dbModels[i])
	}
	return entries, nil
}

// Current returns nil, nil for a job without entries.
func (r *TimelineRepository) Current(ctx context.Context, jobID uuid.UUID) (*timeline.Entry, error) {
	var dbModel models.JobTimelineModel

	err := r.db.conn(ctx).Where("job_id = ? AND is_current", jobID).First(&dbModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current timeline entry: %w", err)
	}

	return toTimelineEntity(&dbModel), nil
}

func toTimelineModel(e *timeline.Entry) *models.JobTimelineModel {
	return &models.JobTimelineModel{
		ID:          e.ID,
		JobID:       e.JobID,
		Status:      string(e.Status),
		Location:    e.Location,
		Description: e.Description,
		IsCurrent:   e.IsCurrent,
		CreatedBy:   e.CreatedBy,
		Timestamp:   e.Timestamp,
	}
}

func toTimelineEntity(m *models.JobTimelineModel) *timeline.Entry {
	return &timeline.Entry{
		ID:          m.ID,
		JobID:       m.JobID,
		Status:      timeline.Status(m.Status),
		Location:    m.Location,
		Description: m.Description,
		IsCurrent:   m.IsCurrent,
		CreatedBy:   m.CreatedBy,
		Timestamp:   m.Timestamp,
	}
}
