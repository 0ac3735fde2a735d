package tracking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StatusEvent is broadcast after a job's timeline moves.
type StatusEvent struct {
	JobID          uuid.UUID `json:"job_id"`
	JobNumber      int64     `json:"job_number"`
	ShipmentID     uuid.UUID `json:"shipment_id"`
	ShipmentStatus string    `json:"shipment_status"`
	Status         string    `json:"status"`
	StatusLabel    string    `json:"status_label"`
	Location       string    `json:"location,omitempty"`
	Description    string    `json:"description,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

//go:generate mockgen -destination=../../mocks/mock_publisher.go -package=mocks logipro/internal/domain/tracking Publisher

// Publisher delivers status events. Delivery is best effort: callers log
// failures and never roll back on them.
type Publisher interface {
	PublishStatus(ctx context.Context, event StatusEvent) error
}
