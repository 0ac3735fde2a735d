package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"logipro/internal/domain/quote"
	"logipro/internal/infrastructure/database/postgres/models"
)

type QuoteRequestRepository struct {
	db *DB
}

func NewQuoteRequestRepository(db *DB) *QuoteRequestRepository {
	return &QuoteRequestRepository{db: db}
}

func (r *QuoteRequestRepository) Create(ctx context.Context, req *quote.Request) error {
	req.ID = uuid.New()
	req.CreatedAt = time.Now()

	dbModel := &models.QuoteRequestModel{
		ID:            req.ID,
		Origin:        req.Origin,
		Destination:   req.Destination,
		PackageType:   string(req.PackageType),
		Weight:        req.Weight,
		Price:         req.Price,
		EstimatedDays: req.EstimatedDays,
		Distance:      req.Distance,
		CustomerID:    req.CustomerID,
		CreatedAt:     req.CreatedAt,
	}
	if err := r.db.conn(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to record quote request: %w", err)
	}
	return nil
}
