package memory

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"logipro/internal/domain/address"
	appErrors "logipro/pkg/errors"
)

type AddressRepository struct {
	v view
}

func (r *AddressRepository) Create(_ context.Context, a *address.Address) error {
	return r.v.do(func(st *state) error {
		if a.IsDefault && st.hasOtherDefault(a.CustomerID, uuid.Nil) {
			return appErrors.Conflict("Customer already has a default address", nil)
		}
		now := time.Now()
		a.ID = uuid.New()
		a.CreatedAt = now
		a.UpdatedAt = now
		st.addresses[a.ID] = *a
		return nil
	})
}

func (r *AddressRepository) Get(_ context.Context, customerID, addressID uuid.UUID) (*address.Address, error) {
	var found *address.Address
	err := r.v.do(func(st *state) error {
		a, ok := st.addresses[addressID]
		if !ok || a.CustomerID != customerID {
			return address.ErrAddressNotFound
		}
		found = &a
		return nil
	})
	return found, err
}

func (r *AddressRepository) Update(_ context.Context, a *address.Address) error {
	return r.v.do(func(st *state) error {
		existing, ok := st.addresses[a.ID]
		if !ok || existing.CustomerID != a.CustomerID {
			return address.ErrAddressNotFound
		}
		if a.IsDefault && st.hasOtherDefault(a.CustomerID, a.ID) {
			return appErrors.Conflict("Customer already has a default address", nil)
		}
		a.UpdatedAt = time.Now()
		a.CreatedAt = existing.CreatedAt
		st.addresses[a.ID] = *a
		return nil
	})
}

func (r *AddressRepository) Delete(_ context.Context, customerID, addressID uuid.UUID) error {
	return r.v.do(func(st *state) error {
		a, ok := st.addresses[addressID]
		if !ok || a.CustomerID != customerID {
			return address.ErrAddressNotFound
		}
		delete(st.addresses, addressID)
		return nil
	})
}

func (r *AddressRepository) List(_ context.Context, customerID uuid.UUID) ([]*address.Address, error) {
	var addresses []*address.Address
	err := r.v.do(func(st *state) error {
		for _, a := range st.addresses {
			if a.CustomerID == customerID {
				addresses = append(addresses, &a)
			}
		}
		return nil
	})
	slices.SortStableFunc(addresses, func(a, b *address.Address) int {
		if a.IsDefault != b.IsDefault {
			if a.IsDefault {
				return -1
			}
			return 1
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return addresses, err
}

func (r *AddressRepository) ClearDefault(_ context.Context, customerID uuid.UUID, except uuid.UUID) error {
	return r.v.do(func(st *state) error {
		for id, a := range st.addresses {
			if a.CustomerID == customerID && id != except && a.IsDefault {
				a.IsDefault = false
				a.UpdatedAt = time.Now()
				st.addresses[id] = a
			}
		}
		return nil
	})
}

func (st *state) hasOtherDefault(customerID, except uuid.UUID) bool {
	for id, a := range st.addresses {
		if id != except && a.CustomerID == customerID && a.IsDefault {
			return true
		}
	}
	return false
}
