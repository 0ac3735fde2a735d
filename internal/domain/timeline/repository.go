package timeline

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Append clears the job's current entry and stores entry as the new
	// current one. Callers run it inside a transaction.
	Append(ctx context.Context, entry *Entry) error
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]*Entry, error)
	Current(ctx context.Context, jobID uuid.UUID) (*Entry, error)
}
