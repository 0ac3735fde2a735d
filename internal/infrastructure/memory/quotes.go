package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"logipro/internal/domain/quote"
)

type QuoteRequestRepository struct {
	v view
}

func (r *QuoteRequestRepository) Create(_ context.Context, req *quote.Request) error {
	return r.v.do(func(st *state) error {
		req.ID = uuid.New()
		req.CreatedAt = time.Now()
		st.quotes = append(st.quotes, *req)
		return nil
	})
}

// Count reports how many estimates were recorded.
func (r *QuoteRequestRepository) Count() int {
	n := 0
	_ = r.v.do(func(st *state) error {
		n = len(st.quotes)
		return nil
	})
	return n
}
