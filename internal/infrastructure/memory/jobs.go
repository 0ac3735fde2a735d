package memory

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"logipro/internal/authz"
	"logipro/internal/domain/job"
	"logipro/internal/domain/timeline"
)

type JobRepository struct {
	v   view
	seq *atomic.Int64
}

// NextNumber is not rolled back with the transaction, matching a database
// sequence.
func (r *JobRepository) NextNumber(_ context.Context) (int64, error) {
	return r.seq.Add(1), nil
}

func (r *JobRepository) Create(_ context.Context, j *job.Job) error {
	return r.v.do(func(st *state) error {
		for _, existing := range st.jobs {
			if existing.JobNumber == j.JobNumber {
				return job.ErrDuplicateNumber
			}
			if j.BOLNumber != nil && existing.BOLNumber != nil && *existing.BOLNumber == *j.BOLNumber {
				return job.ErrDuplicateBOL
			}
		}
		now := time.Now()
		j.ID = uuid.New()
		j.CreatedAt = now
		j.UpdatedAt = now
		st.jobs[j.ID] = *j
		return nil
	})
}

func (r *JobRepository) GetByID(_ context.Context, jobID uuid.UUID) (*job.Job, error) {
	var found *job.Job
	err := r.v.do(func(st *state) error {
		j, ok := st.jobs[jobID]
		if !ok {
			return job.ErrJobNotFound
		}
		found = &j
		return nil
	})
	return found, err
}

func (r *JobRepository) GetByNumber(_ context.Context, number int64) (*job.Job, error) {
	var found *job.Job
	err := r.v.do(func(st *state) error {
		for _, j := range st.jobs {
			if j.JobNumber == number {
				found = &j
				return nil
			}
		}
		return job.ErrJobNotFound
	})
	return found, err
}

func (r *JobRepository) Update(_ context.Context, j *job.Job) error {
	return r.v.do(func(st *state) error {
		existing, ok := st.jobs[j.ID]
		if !ok {
			return job.ErrJobNotFound
		}
		if j.BOLNumber != nil {
			for id, other := range st.jobs {
				if id != j.ID && other.BOLNumber != nil && *other.BOLNumber == *j.BOLNumber {
					return job.ErrDuplicateBOL
				}
			}
		}
		j.UpdatedAt = time.Now()
		updated := *j
		updated.JobNumber = existing.JobNumber
		updated.CustomerID = existing.CustomerID
		updated.CreatedAt = existing.CreatedAt
		st.jobs[j.ID] = updated
		return nil
	})
}

func (r *JobRepository) List(_ context.Context, filter *job.Filter) ([]*job.Job, int64, error) {
	var matched []*job.Job
	err := r.v.do(func(st *state) error {
		search := strings.ToLower(filter.Search)
		for _, j := range st.jobs {
			if filter.CustomerID != nil && j.CustomerID != *filter.CustomerID {
				continue
			}
			if filter.ServiceType != nil && j.ServiceType != *filter.ServiceType {
				continue
			}
			if filter.DriverID != nil && !st.jobHasDriver(j.ID, *filter.DriverID) {
				continue
			}
			if filter.Status != nil && !st.currentIn(j.ID, timeline.Status(*filter.Status)) {
				continue
			}
			if search != "" && !jobMatches(&j, search) {
				continue
			}
			matched = append(matched, &j)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sortNewestFirst(matched, func(j *job.Job) time.Time { return j.CreatedAt })
	return paginate(matched, filter.Page, filter.PageSize), int64(len(matched)), nil
}

func jobMatches(j *job.Job, search string) bool {
	fields := []string{
		strconv.FormatInt(j.JobNumber, 10),
		j.Pickup.Address, j.Delivery.Address,
		j.Pickup.City, j.Delivery.City,
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

func (r *JobRepository) CustomerStats(_ context.Context, customerID uuid.UUID) (*job.CustomerStats, error) {
	stats := &job.CustomerStats{}
	err := r.v.do(func(st *state) error {
		for _, j := range st.jobs {
			if j.CustomerID != customerID {
				continue
			}
			stats.Total++
			if st.currentIn(j.ID, timeline.StatusInTransit, timeline.StatusOutForDelivery) {
				stats.Active++
			}
			if st.currentIn(j.ID, timeline.StatusDelivered) {
				stats.Delivered++
			}
		}
		return nil
	})
	return stats, err
}

func (r *JobRepository) PublicStats(_ context.Context) (*job.PublicStats, error) {
	stats := &job.PublicStats{}
	err := r.v.do(func(st *state) error {
		for _, u := range st.users {
			if u.Role == authz.RoleCustomer {
				stats.TotalCustomers++
			}
		}
		for id := range st.jobs {
			if st.currentIn(id, timeline.StatusDelivered) {
				stats.CompletedDeliveries++
			}
			if st.currentIn(id, timeline.StatusInTransit, timeline.StatusOutForDelivery) {
				stats.ActiveOrders++
			}
		}
		return nil
	})
	return stats, err
}

func (st *state) currentIn(jobID uuid.UUID, statuses ...timeline.Status) bool {
	for _, e := range st.timeline {
		if e.JobID == jobID && e.IsCurrent {
			for _, s := range statuses {
				if e.Status == s {
					return true
				}
			}
			return false
		}
	}
	return false
}

func (st *state) jobHasDriver(jobID, driverID uuid.UUID) bool {
	for _, s := range st.shipments {
		if s.JobID == jobID && s.AssignedTo(driverID) {
			return true
		}
	}
	return false
}
