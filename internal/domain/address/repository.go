package address

import (
	"context"

	"github.com/google/uuid"
)

// Repository lookups are always scoped to the owning customer so one
// customer can never read another's address book.
type Repository interface {
	Create(ctx context.Context, address *Address) error
	Get(ctx context.Context, customerID, addressID uuid.UUID) (*Address, error)
	Update(ctx context.Context, address *Address) error
	Delete(ctx context.Context, customerID, addressID uuid.UUID) error
	List(ctx context.Context, customerID uuid.UUID) ([]*Address, error)
	ClearDefault(ctx context.Context, customerID uuid.UUID, except uuid.UUID) error
}
