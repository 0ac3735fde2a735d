package invoice

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, invoice *Invoice) error
	GetByID(ctx context.Context, invoiceID uuid.UUID) (*Invoice, error)
	GetForUpdate(ctx context.Context, invoiceID uuid.UUID) (*Invoice, error)
	GetByJobID(ctx context.Context, jobID uuid.UUID) (*Invoice, error)
	Update(ctx context.Context, invoice *Invoice) error
	List(ctx context.Context, filter *Filter) ([]*Invoice, int64, error)
}

type TaxRuleRepository interface {
	Create(ctx context.Context, rule *TaxRule) error
	GetByID(ctx context.Context, ruleID uuid.UUID) (*TaxRule, error)
	// FindActive returns nil, nil when the region has no active rule.
	FindActive(ctx context.Context, regionCode string) (*TaxRule, error)
	Update(ctx context.Context, rule *TaxRule) error
	List(ctx context.Context) ([]*TaxRule, error)
}

type Filter struct {
	Status   *Status
	JobID    *uuid.UUID
	Page     int
	PageSize int
}
