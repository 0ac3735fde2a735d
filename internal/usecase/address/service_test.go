package address

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logipro/internal/authz"
	"logipro/internal/infrastructure/memory"
	"logipro/internal/testutil"
	appErrors "logipro/pkg/errors"
)

func home(isDefault bool) *CreateAddressRequest {
	return &CreateAddressRequest{
		Label:     "HOME",
		Name:      "Home",
		Address1:  "12 Harbour St",
		City:      "Sydney",
		State:     "NSW",
		ZipCode:   "2000",
		IsDefault: isDefault,
	}
}

func countDefaults(items []*AddressResponse) int {
	n := 0
	for _, a := range items {
		if a.IsDefault {
			n++
		}
	}
	return n
}

func TestDefaultAddressFlip(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, store.Addresses())
	ctx := context.Background()
	customer := testutil.Principal(testutil.NewUser(t, store, authz.RoleCustomer))

	first, err := svc.Create(ctx, customer, home(true))
	require.NoError(t, err)

	office := home(true)
	office.Label = "OFFICE"
	office.Name = "Office"
	second, err := svc.Create(ctx, customer, office)
	require.NoError(t, err)

	items, err := svc.List(ctx, customer)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 1, countDefaults(items))
	assert.Equal(t, second.ID, items[0].ID)

	yes := true
	_, err = svc.Update(ctx, customer, first.ID, &UpdateAddressRequest{IsDefault: &yes})
	require.NoError(t, err)

	items, err = svc.List(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, 1, countDefaults(items))
	assert.Equal(t, first.ID, items[0].ID)
}

func TestAddressesAreScopedToCustomer(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, store.Addresses())
	ctx := context.Background()
	alice := testutil.Principal(testutil.NewUser(t, store, authz.RoleCustomer))
	bob := testutil.Principal(testutil.NewUser(t, store, authz.RoleCustomer))

	created, err := svc.Create(ctx, alice, home(false))
	require.NoError(t, err)

	_, err = svc.Get(ctx, bob, created.ID)
	assert.Equal(t, http.StatusNotFound, appErrors.HTTPStatus(err))

	err = svc.Delete(ctx, bob, created.ID)
	assert.Equal(t, http.StatusNotFound, appErrors.HTTPStatus(err))

	bobs, err := svc.List(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, bobs)

	require.NoError(t, svc.Delete(ctx, alice, created.ID))
	_, err = svc.Get(ctx, alice, created.ID)
	assert.Equal(t, http.StatusNotFound, appErrors.HTTPStatus(err))
}

func TestAddressValidationAndRoles(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store, store.Addresses())
	ctx := context.Background()
	customer := testutil.Principal(testutil.NewUser(t, store, authz.RoleCustomer))
	manager := testutil.Principal(testutil.NewUser(t, store, authz.RoleManager))

	_, err := svc.Create(ctx, manager, home(false))
	assert.Equal(t, http.StatusForbidden, appErrors.HTTPStatus(err))

	bad := home(false)
	bad.Label = "CASTLE"
	_, err = svc.Create(ctx, customer, bad)
	assert.Equal(t, http.StatusBadRequest, appErrors.HTTPStatus(err))

	phone := "+61400000003"
	req := home(false)
	req.Phone = &phone
	created, err := svc.Create(ctx, customer, req)
	require.NoError(t, err)
	require.NotNil(t, created.Phone)

	city := "Parramatta"
	updated, err := svc.Update(ctx, customer, created.ID, &UpdateAddressRequest{City: &city})
	require.NoError(t, err)
	assert.Equal(t, "Parramatta", updated.City)
	assert.Equal(t, "12 Harbour St", updated.Address1)
	assert.False(t, updated.IsDefault)
}
