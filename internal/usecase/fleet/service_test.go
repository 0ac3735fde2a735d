package fleet

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logipro/internal/authz"
	domainFleet "logipro/internal/domain/fleet"
	domainJob "logipro/internal/domain/job"
	domainShipment "logipro/internal/domain/shipment"
	"logipro/internal/infrastructure/memory"
	"logipro/internal/testutil"
	appErrors "logipro/pkg/errors"
)

func newService(store *memory.Store) *Service {
	return NewService(store.Drivers(), store.Vehicles(), store.Users())
}

func TestCreateDriver(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)
	ctx := context.Background()

	driverUser := testutil.NewUser(t, store, authz.RoleDriver)
	resp, err := svc.CreateDriver(ctx, &CreateDriverRequest{
		UserID:        driverUser.ID,
		LicenseNumber: "NSW-4471",
		PhoneNumber:   "+61400111222",
	})
	require.NoError(t, err)
	assert.Equal(t, driverUser.FullName, resp.FullName)
	assert.Equal(t, driverUser.ID, resp.UserID)

	t.Run("second profile conflicts", func(t *testing.T) {
		_, err := svc.CreateDriver(ctx, &CreateDriverRequest{UserID: driverUser.ID, LicenseNumber: "X-1", PhoneNumber: "+61400111223"})
		assert.Equal(t, http.StatusConflict, appErrors.HTTPStatus(err))
	})

	t.Run("customer cannot become driver", func(t *testing.T) {
		customer := testutil.NewUser(t, store, authz.RoleCustomer)
		_, err := svc.CreateDriver(ctx, &CreateDriverRequest{UserID: customer.ID, LicenseNumber: "X-2", PhoneNumber: "+61400111224"})
		assert.ErrorIs(t, err, domainFleet.ErrUserNotDriverRole)
		assert.Equal(t, http.StatusBadRequest, appErrors.HTTPStatus(err))
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.CreateDriver(ctx, &CreateDriverRequest{UserID: uuid.New(), LicenseNumber: "X-3", PhoneNumber: "+61400111225"})
		assert.Equal(t, http.StatusBadRequest, appErrors.HTTPStatus(err))
	})

	t.Run("invalid phone", func(t *testing.T) {
		other := testutil.NewUser(t, store, authz.RoleDriver)
		_, err := svc.CreateDriver(ctx, &CreateDriverRequest{UserID: other.ID, LicenseNumber: "X-4", PhoneNumber: "call me"})
		assert.True(t, appErrors.HasCode(err, appErrors.CodeValidation))
	})
}

func TestUpdateAndDeleteDriver(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)
	ctx := context.Background()

	_, driver := testutil.NewDriver(t, store)
	customer := testutil.NewUser(t, store, authz.RoleCustomer)
	_, sh := testutil.NewJob(t, store, customer.ID, domainJob.ServiceOfficeRelocation)
	testutil.Assign(t, store, sh, driver.ID, domainShipment.StatusAssigned)

	license := "VIC-9000"
	resp, err := svc.UpdateDriver(ctx, driver.ID, &UpdateDriverRequest{LicenseNumber: &license})
	require.NoError(t, err)
	assert.Equal(t, license, resp.LicenseNumber)
	assert.Equal(t, driver.PhoneNumber, resp.PhoneNumber)

	require.NoError(t, svc.DeleteDriver(ctx, driver.ID))

	_, err = svc.GetDriver(ctx, driver.ID)
	assert.Equal(t, http.StatusNotFound, appErrors.HTTPStatus(err))

	reloaded, err := store.Shipments().GetByID(ctx, sh.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.DriverID)
}

func TestVehicles(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)
	ctx := context.Background()

	van, err := svc.CreateVehicle(ctx, &CreateVehicleRequest{LicensePlate: "abc123", Make: "Ford", Model: "Transit", Year: 2021, CapacityKg: 1500})
	require.NoError(t, err)
	assert.Equal(t, "ABC123", van.LicensePlate)
	assert.Equal(t, "AVAILABLE", van.Status)

	maintenance := "MAINTENANCE"
	_, err = svc.CreateVehicle(ctx, &CreateVehicleRequest{LicensePlate: "XYZ789", Make: "Isuzu", Model: "NPR", Year: 2019, Status: &maintenance})
	require.NoError(t, err)

	_, err = svc.CreateVehicle(ctx, &CreateVehicleRequest{LicensePlate: "Abc123", Make: "Ford", Model: "Transit", Year: 2022})
	assert.ErrorIs(t, err, domainFleet.ErrDuplicatePlate)

	_, err = svc.CreateVehicle(ctx, &CreateVehicleRequest{LicensePlate: "OLD1", Make: "Ford", Model: "T", Year: 1908})
	assert.Equal(t, http.StatusBadRequest, appErrors.HTTPStatus(err))

	all, err := svc.ListVehicles(ctx, &ListVehiclesRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	inShop, err := svc.ListVehicles(ctx, &ListVehiclesRequest{Status: &maintenance})
	require.NoError(t, err)
	require.Len(t, inShop, 1)
	assert.Equal(t, "XYZ789", inShop[0].LicensePlate)

	bogus := "SCRAPPED"
	_, err = svc.ListVehicles(ctx, &ListVehiclesRequest{Status: &bogus})
	assert.Equal(t, http.StatusBadRequest, appErrors.HTTPStatus(err))

	inUse := "IN_USE"
	updated, err := svc.UpdateVehicle(ctx, van.ID, &UpdateVehicleRequest{Status: &inUse})
	require.NoError(t, err)
	assert.Equal(t, "IN_USE", updated.Status)
	assert.Equal(t, "Transit", updated.Model)

	require.NoError(t, svc.DeleteVehicle(ctx, van.ID))
	_, err = svc.GetVehicle(ctx, van.ID)
	assert.ErrorIs(t, err, domainFleet.ErrVehicleNotFound)
}
