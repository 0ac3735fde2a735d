package memory

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"logipro/internal/domain/shipment"
	appErrors "logipro/pkg/errors"
)

type ShipmentRepository struct {
	v view
}

func (r *ShipmentRepository) Create(_ context.Context, s *shipment.Shipment) error {
	return r.v.do(func(st *state) error {
		for _, existing := range st.shipments {
			if existing.JobID == s.JobID {
				return appErrors.Conflict("Job already has a shipment", nil)
			}
		}
		now := time.Now()
		s.ID = uuid.New()
		s.CreatedAt = now
		s.UpdatedAt = now
		if s.Status == "" {
			s.Status = shipment.StatusPending
		}
		st.shipments[s.ID] = *s
		return nil
	})
}

func (r *ShipmentRepository) GetByID(_ context.Context, shipmentID uuid.UUID) (*shipment.Shipment, error) {
	var found *shipment.Shipment
	err := r.v.do(func(st *state) error {
		s, ok := st.shipments[shipmentID]
		if !ok {
			return shipment.ErrShipmentNotFound
		}
		found = &s
		return nil
	})
	return found, err
}

// GetForUpdate needs no lock of its own: transactions are already serial.
func (r *ShipmentRepository) GetForUpdate(ctx context.Context, shipmentID uuid.UUID) (*shipment.Shipment, error) {
	return r.GetByID(ctx, shipmentID)
}

func (r *ShipmentRepository) GetByJobID(_ context.Context, jobID uuid.UUID) (*shipment.Shipment, error) {
	var found *shipment.Shipment
	err := r.v.do(func(st *state) error {
		for _, s := range st.shipments {
			if s.JobID == jobID {
				found = &s
				return nil
			}
		}
		return shipment.ErrShipmentNotFound
	})
	return found, err
}

func (r *ShipmentRepository) Update(_ context.Context, s *shipment.Shipment) error {
	return r.v.do(func(st *state) error {
		existing, ok := st.shipments[s.ID]
		if !ok {
			return shipment.ErrShipmentNotFound
		}
		s.UpdatedAt = time.Now()
		updated := *s
		updated.JobID = existing.JobID
		updated.CreatedAt = existing.CreatedAt
		st.shipments[s.ID] = updated
		return nil
	})
}

func (r *ShipmentRepository) List(_ context.Context, filter *shipment.Filter) ([]*shipment.Shipment, int64, error) {
	var matched []*shipment.Shipment
	err := r.v.do(func(st *state) error {
		for _, s := range st.shipments {
			if filter.Status != nil && s.Status != *filter.Status {
				continue
			}
			if filter.DriverID != nil && !s.AssignedTo(*filter.DriverID) {
				continue
			}
			if filter.JobID != nil && s.JobID != *filter.JobID {
				continue
			}
			matched = append(matched, &s)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sortNewestFirst(matched, func(s *shipment.Shipment) time.Time { return s.CreatedAt })
	return paginate(matched, filter.Page, filter.PageSize), int64(len(matched)), nil
}

func (r *ShipmentRepository) ListAssignments(_ context.Context, driverID uuid.UUID) ([]*shipment.Assignment, error) {
	var assignments []*shipment.Assignment
	err := r.v.do(func(st *state) error {
		for _, s := range st.shipments {
			if !s.AssignedTo(driverID) || (s.Status != shipment.StatusAssigned && s.Status != shipment.StatusInTransit) {
				continue
			}
			a := &shipment.Assignment{Shipment: &s}
			if j, ok := st.jobs[s.JobID]; ok {
				a.JobNumber = j.JobNumber
				a.PickupAddress = j.Pickup.Address
				a.PickupCity = j.Pickup.City
				a.DeliveryAddress = j.Delivery.Address
				a.DeliveryCity = j.Delivery.City
				a.RequestedPickupAt = j.RequestedPickupAt
			}
			assignments = append(assignments, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(assignments, func(a, b *shipment.Assignment) int {
		switch {
		case a.RequestedPickupAt == nil && b.RequestedPickupAt == nil:
			return a.Shipment.CreatedAt.Compare(b.Shipment.CreatedAt)
		case a.RequestedPickupAt == nil:
			return 1
		case b.RequestedPickupAt == nil:
			return -1
		}
		return a.RequestedPickupAt.Compare(*b.RequestedPickupAt)
	})
	return assignments, nil
}
