package memory

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"logipro/internal/domain/job"
	"logipro/internal/domain/timeline"
)

type TimelineRepository struct {
	v view
}

func (r *TimelineRepository) Append(_ context.Context, entry *timeline.Entry) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.jobs[entry.JobID]; !ok {
			return job.ErrJobNotFound
		}
		for i := range st.timeline {
			if st.timeline[i].JobID == entry.JobID {
				st.timeline[i].IsCurrent = false
			}
		}
		entry.ID = uuid.New()
		entry.IsCurrent = true
		if entry.Timestamp.IsZero() {
			entry.Timestamp = time.Now()
		}
		st.timeline = append(st.timeline, *entry)
		return nil
	})
}

func (r *TimelineRepository) ListByJob(_ context.Context, jobID uuid.UUID) ([]*timeline.Entry, error) {
	var entries []*timeline.Entry
	err := r.v.do(func(st *state) error {
		for _, e := range st.timeline {
			if e.JobID == jobID {
				entries = append(entries, &e)
			}
		}
		return nil
	})
	slices.SortStableFunc(entries, func(a, b *timeline.Entry) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return entries, err
}

func (r *TimelineRepository) Current(_ context.Context, jobID uuid.UUID) (*timeline.Entry, error) {
	var current *timeline.Entry
	err := r.v.do(func(st *state) error {
		for _, e := range st.timeline {
			if e.JobID == jobID && e.IsCurrent {
				current = &e
				return nil
			}
		}
		return nil
	})
	return current, err
}
