package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"logipro/internal/domain/fleet"
)

type DriverRepository struct {
	v view
}

func (r *DriverRepository) Create(_ context.Context, d *fleet.Driver) error {
	return r.v.do(func(st *state) error {
		for _, existing := range st.drivers {
			if existing.UserID == d.UserID {
				return fleet.ErrDriverExists
			}
		}
		now := time.Now()
		d.ID = uuid.New()
		d.CreatedAt = now
		d.UpdatedAt = now
		st.drivers[d.ID] = *d
		return nil
	})
}

func (r *DriverRepository) GetByID(_ context.Context, driverID uuid.UUID) (*fleet.Driver, error) {
	return r.find(func(d *fleet.Driver) bool { return d.ID == driverID })
}

func (r *DriverRepository) GetByUserID(_ context.Context, userID uuid.UUID) (*fleet.Driver, error) {
	return r.find(func(d *fleet.Driver) bool { return d.UserID == userID })
}

func (r *DriverRepository) find(match func(*fleet.Driver) bool) (*fleet.Driver, error) {
	var found *fleet.Driver
	err := r.v.do(func(st *state) error {
		for _, d := range st.drivers {
			if match(&d) {
				d.FullName = st.users[d.UserID].FullName
				found = &d
				return nil
			}
		}
		return fleet.ErrDriverNotFound
	})
	return found, err
}

func (r *DriverRepository) Update(_ context.Context, d *fleet.Driver) error {
	return r.v.do(func(st *state) error {
		existing, ok := st.drivers[d.ID]
		if !ok {
			return fleet.ErrDriverNotFound
		}
		d.UpdatedAt = time.Now()
		existing.LicenseNumber = d.LicenseNumber
		existing.PhoneNumber = d.PhoneNumber
		existing.UpdatedAt = d.UpdatedAt
		st.drivers[d.ID] = existing
		return nil
	})
}

// Delete also detaches the driver from shipments, as ON DELETE SET NULL does.
func (r *DriverRepository) Delete(_ context.Context, driverID uuid.UUID) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.drivers[driverID]; !ok {
			return fleet.ErrDriverNotFound
		}
		delete(st.drivers, driverID)
		for id, s := range st.shipments {
			if s.AssignedTo(driverID) {
				s.DriverID = nil
				st.shipments[id] = s
			}
		}
		return nil
	})
}

func (r *DriverRepository) List(_ context.Context) ([]*fleet.Driver, error) {
	var drivers []*fleet.Driver
	err := r.v.do(func(st *state) error {
		for _, d := range st.drivers {
			d.FullName = st.users[d.UserID].FullName
			drivers = append(drivers, &d)
		}
		return nil
	})
	slices.SortFunc(drivers, func(a, b *fleet.Driver) int {
		return strings.Compare(a.FullName, b.FullName)
	})
	return drivers, err
}

type VehicleRepository struct {
	v view
}

func (r *VehicleRepository) Create(_ context.Context, v *fleet.Vehicle) error {
	return r.v.do(func(st *state) error {
		if st.plateTaken(v.LicensePlate, uuid.Nil) {
			return fleet.ErrDuplicatePlate
		}
		now := time.Now()
		v.ID = uuid.New()
		v.CreatedAt = now
		v.UpdatedAt = now
		if v.Status == "" {
			v.Status = fleet.VehicleAvailable
		}
		st.vehicles[v.ID] = *v
		return nil
	})
}

func (r *VehicleRepository) GetByID(_ context.Context, vehicleID uuid.UUID) (*fleet.Vehicle, error) {
	var found *fleet.Vehicle
	err := r.v.do(func(st *state) error {
		v, ok := st.vehicles[vehicleID]
		if !ok {
			return fleet.ErrVehicleNotFound
		}
		found = &v
		return nil
	})
	return found, err
}

func (r *VehicleRepository) Update(_ context.Context, v *fleet.Vehicle) error {
	return r.v.do(func(st *state) error {
		existing, ok := st.vehicles[v.ID]
		if !ok {
			return fleet.ErrVehicleNotFound
		}
		if st.plateTaken(v.LicensePlate, v.ID) {
			return fleet.ErrDuplicatePlate
		}
		v.UpdatedAt = time.Now()
		v.CreatedAt = existing.CreatedAt
		st.vehicles[v.ID] = *v
		return nil
	})
}

func (r *VehicleRepository) Delete(_ context.Context, vehicleID uuid.UUID) error {
	return r.v.do(func(st *state) error {
		if _, ok := st.vehicles[vehicleID]; !ok {
			return fleet.ErrVehicleNotFound
		}
		delete(st.vehicles, vehicleID)
		for id, s := range st.shipments {
			if s.VehicleID != nil && *s.VehicleID == vehicleID {
				s.VehicleID = nil
				st.shipments[id] = s
			}
		}
		return nil
	})
}

func (r *VehicleRepository) List(_ context.Context, status *fleet.VehicleStatus) ([]*fleet.Vehicle, error) {
	var vehicles []*fleet.Vehicle
	err := r.v.do(func(st *state) error {
		for _, v := range st.vehicles {
			if status != nil && v.Status != *status {
				continue
			}
			vehicles = append(vehicles, &v)
		}
		return nil
	})
	slices.SortFunc(vehicles, func(a, b *fleet.Vehicle) int {
		return strings.Compare(a.LicensePlate, b.LicensePlate)
	})
	return vehicles, err
}

func (st *state) plateTaken(plate string, except uuid.UUID) bool {
	for id, v := range st.vehicles {
		if id != except && strings.EqualFold(v.LicensePlate, plate) {
			return true
		}
	}
	return false
}
