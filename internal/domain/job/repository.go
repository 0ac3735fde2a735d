package job

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// NextNumber draws the next value of the job number sequence. Values are
	// never handed out twice, even when the surrounding transaction aborts.
	NextNumber(ctx context.Context) (int64, error)
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, jobID uuid.UUID) (*Job, error)
	GetByNumber(ctx context.Context, number int64) (*Job, error)
	Update(ctx context.Context, job *Job) error
	List(ctx context.Context, filter *Filter) ([]*Job, int64, error)
	CustomerStats(ctx context.Context, customerID uuid.UUID) (*CustomerStats, error)
	PublicStats(ctx context.Context) (*PublicStats, error)
}

type Filter struct {
	CustomerID  *uuid.UUID
	DriverID    *uuid.UUID
	ServiceType *ServiceType
	// Status matches the job's current timeline status.
	Status   *string
	Search   string
	Page     int
	PageSize int
}
