package events

import (
	"context"
	"errors"

	"logipro/internal/domain/tracking"
)

// Fanout delivers each event to every publisher and joins their errors.
type Fanout []tracking.Publisher

func (f Fanout) PublishStatus(ctx context.Context, event tracking.StatusEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.PublishStatus(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
