package quote

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request is the analytics record kept for every estimate served.
type Request struct {
	ID            uuid.UUID
	Origin        string
	Destination   string
	PackageType   PackageType
	Weight        decimal.Decimal
	Price         decimal.Decimal
	EstimatedDays string
	Distance      int
	CustomerID    *uuid.UUID
	CreatedAt     time.Time
}

type RequestRepository interface {
	Create(ctx context.Context, req *Request) error
}
