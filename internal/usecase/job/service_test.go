package job

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"logipro/internal/authz"
	"logipro/internal/domain/invoice"
	domainJob "logipro/internal/domain/job"
	"logipro/internal/domain/shipment"
	"logipro/internal/domain/timeline"
	"logipro/internal/infrastructure/memory"
	"logipro/internal/mocks"
	"logipro/internal/testutil"
	appErrors "logipro/pkg/errors"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	publisher := mocks.NewMockPublisher(gomock.NewController(t))
	publisher.EXPECT().PublishStatus(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	svc := NewService(store, store.Jobs(), store.Shipments(), store.Timeline(), store.Drivers(), store.Users(), publisher)
	return svc, store
}

func residentialRequest() *CreateJobRequest {
	return &CreateJobRequest{
		JobType:          "RESIDENTIAL",
		ServiceType:      "RESIDENTIAL_MOVING",
		CargoDescription: "Two bedroom apartment",
		Pickup: StopRequest{
			Address: "12 Pitt St", City: "Sydney", Region: "nsw",
			ContactPerson: "Jo", ContactPhone: "+61 400 000 111",
		},
		Delivery: StopRequest{
			Address: "4 Collins St", City: "Melbourne", Region: "vic",
			ContactPerson: "Max", ContactPhone: "+61400000222",
		},
	}
}

func TestCreateJobCascade(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	customer := testutil.NewUser(t, store, authz.RoleCustomer)

	require.NoError(t, store.TaxRules().Create(ctx, &invoice.TaxRule{
		RegionCode: "VIC", TaxName: "GST", Rate: decimal.RequireFromString("0.10"), IsActive: true,
	}))

	resp, err := svc.CreateJob(ctx, testutil.Principal(customer), residentialRequest())
	require.NoError(t, err)
	assert.Equal(t, domainJob.FirstJobNumber, resp.JobNumber)
	assert.Equal(t, customer.ID, resp.CustomerID)
	assert.Equal(t, "VIC", resp.Delivery.Region)
	assert.Equal(t, "+61400000111", resp.Pickup.ContactPhone)

	sh, err := store.Shipments().GetByID(ctx, resp.ShipmentID)
	require.NoError(t, err)
	assert.Equal(t, shipment.StatusPending, sh.Status)

	inv, err := store.Invoices().GetByID(ctx, resp.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusDraft, inv.Status)
	assert.True(t, inv.Subtotal.Equal(decimal.NewFromInt(300)), inv.Subtotal.String())
	assert.True(t, inv.TaxAmount.Equal(decimal.NewFromInt(30)), inv.TaxAmount.String())
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(330)))
	require.NotNil(t, inv.TaxRuleApplied)
	assert.Equal(t, "GST", inv.TaxRuleApplied.TaxName)

	current, err := store.Timeline().Current(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, timeline.StatusOrderPlaced, current.Status)
}

func TestCreateJobWithoutTaxRule(t *testing.T) {
	svc, store := newTestService(t)
	customer := testutil.NewUser(t, store, authz.RoleCustomer)

	resp, err := svc.CreateJob(context.Background(), testutil.Principal(customer), residentialRequest())
	require.NoError(t, err)

	inv, err := store.Invoices().GetByID(context.Background(), resp.InvoiceID)
	require.NoError(t, err)
	assert.True(t, inv.TaxAmount.IsZero())
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(300)))
	assert.Nil(t, inv.TaxRuleApplied)
}

func TestCreateJobNumbersAreUniqueUnderConcurrency(t *testing.T) {
	svc, store := newTestService(t)
	customer := testutil.Principal(testutil.NewUser(t, store, authz.RoleCustomer))

	const n = 25
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers []int64
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := svc.CreateJob(context.Background(), customer, residentialRequest())
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			numbers = append(numbers, resp.JobNumber)
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, numbers, n)
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	for i, num := range numbers {
		assert.Equal(t, domainJob.FirstJobNumber+int64(i), num)
	}
}

func TestCreateJobRollsBackOnDuplicateBOL(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	staff := testutil.Principal(testutil.NewUser(t, store, authz.RoleManager))
	customer := testutil.NewUser(t, store, authz.RoleCustomer)

	bol := "BOL-7788"
	req := residentialRequest()
	req.JobType, req.ServiceType = "COMMERCIAL", "PALLET_DELIVERY"
	req.CustomerID = &customer.ID
	req.BOLNumber = &bol

	first, err := svc.CreateJob(ctx, staff, req)
	require.NoError(t, err)

	_, err = svc.CreateJob(ctx, staff, req)
	assert.Equal(t, http.StatusConflict, appErrors.HTTPStatus(err))

	_, shipments, err := store.Shipments().List(ctx, &shipment.Filter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, shipments)
	_, invoices, err := store.Invoices().List(ctx, &invoice.Filter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, invoices)

	// The aborted attempt still consumed a number.
	req.BOLNumber = nil
	next, err := svc.CreateJob(ctx, staff, req)
	require.NoError(t, err)
	assert.Equal(t, first.JobNumber+2, next.JobNumber)
}

func TestCreateJobCustomerResolution(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	staff := testutil.Principal(testutil.NewUser(t, store, authz.RoleAdmin))
	customer := testutil.NewUser(t, store, authz.RoleCustomer)
	driver, _ := testutil.NewDriver(t, store)

	_, err := svc.CreateJob(ctx, staff, residentialRequest())
	assert.ErrorIs(t, err, domainJob.ErrCustomerMissing)

	req := residentialRequest()
	req.CustomerID = &driver.ID
	_, err = svc.CreateJob(ctx, staff, req)
	assert.Equal(t, http.StatusBadRequest, appErrors.HTTPStatus(err))

	// A customer's own id always wins over the body.
	req = residentialRequest()
	other := uuid.New()
	req.CustomerID = &other
	resp, err := svc.CreateJob(ctx, testutil.Principal(customer), req)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, resp.CustomerID)

	_, err = svc.CreateJob(ctx, testutil.Principal(driver), residentialRequest())
	assert.ErrorIs(t, err, appErrors.ErrInsufficientPermissions)
}

func TestCreateJobValidation(t *testing.T) {
	svc, store := newTestService(t)
	customer := testutil.Principal(testutil.NewUser(t, store, authz.RoleCustomer))

	req := residentialRequest()
	req.Pickup.ContactPhone = ""
	_, err := svc.CreateJob(context.Background(), customer, req)
	assert.Equal(t, http.StatusBadRequest, appErrors.HTTPStatus(err))

	req = residentialRequest()
	req.ServiceType = "TELEPORT"
	_, err = svc.CreateJob(context.Background(), customer, req)
	assert.Equal(t, http.StatusBadRequest, appErrors.HTTPStatus(err))
}

func TestGetJobVisibility(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	owner := testutil.NewUser(t, store, authz.RoleCustomer)
	stranger := testutil.NewUser(t, store, authz.RoleCustomer)
	assignedUser, assigned := testutil.NewDriver(t, store)
	otherDriver, _ := testutil.NewDriver(t, store)
	manager := testutil.NewUser(t, store, authz.RoleManager)

	j, sh := testutil.NewJob(t, store, owner.ID, domainJob.ServiceSmallDeliveries)
	testutil.Assign(t, store, sh, assigned.ID, shipment.StatusAssigned)

	for _, u := range []authz.Principal{testutil.Principal(owner), testutil.Principal(assignedUser), testutil.Principal(manager)} {
		detail, err := svc.GetJob(ctx, u, j.ID)
		require.NoError(t, err, u.Role)
		require.NotNil(t, detail.CurrentStatus)
		assert.Equal(t, "ORDER_PLACED", *detail.CurrentStatus)
		assert.Len(t, detail.Timeline, 1)
	}

	for _, u := range []authz.Principal{testutil.Principal(stranger), testutil.Principal(otherDriver)} {
		_, err := svc.GetJob(ctx, u, j.ID)
		assert.Equal(t, http.StatusForbidden, appErrors.HTTPStatus(err), u.Role)
	}

	_, err := svc.GetJob(ctx, testutil.Principal(manager), uuid.New())
	assert.Equal(t, http.StatusNotFound, appErrors.HTTPStatus(err))

	ok, err := svc.CanView(ctx, testutil.Principal(stranger), j.ID.String())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListJobsScopesByRole(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	alice := testutil.NewUser(t, store, authz.RoleCustomer)
	bob := testutil.NewUser(t, store, authz.RoleCustomer)
	driverUser, driver := testutil.NewDriver(t, store)
	lonelyDriver := testutil.NewUser(t, store, authz.RoleDriver)
	admin := testutil.NewUser(t, store, authz.RoleAdmin)

	testutil.NewJob(t, store, alice.ID, domainJob.ServiceSmallDeliveries)
	testutil.NewJob(t, store, alice.ID, domainJob.ServicePalletDelivery)
	_, bobShipment := testutil.NewJob(t, store, bob.ID, domainJob.ServiceSmallDeliveries)
	testutil.Assign(t, store, bobShipment, driver.ID, shipment.StatusAssigned)

	page, err := svc.ListJobs(ctx, testutil.Principal(alice), &ListJobsRequest{CustomerID: &bob.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Meta.Total)

	page, err = svc.ListJobs(ctx, testutil.Principal(driverUser), &ListJobsRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Meta.Total)

	_, err = svc.ListJobs(ctx, testutil.Principal(lonelyDriver), &ListJobsRequest{})
	assert.Equal(t, http.StatusForbidden, appErrors.HTTPStatus(err))

	page, err = svc.ListJobs(ctx, testutil.Principal(admin), &ListJobsRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Meta.Total)

	pallet := "PALLET_DELIVERY"
	page, err = svc.ListJobs(ctx, testutil.Principal(admin), &ListJobsRequest{ServiceType: &pallet})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Meta.Total)

	placed := "ORDER_PLACED"
	page, err = svc.ListJobs(ctx, testutil.Principal(admin), &ListJobsRequest{Status: &placed})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Meta.Total)
}

func TestUpdateJobStaffOnly(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	customer := testutil.NewUser(t, store, authz.RoleCustomer)
	manager := testutil.NewUser(t, store, authz.RoleManager)
	j, _ := testutil.NewJob(t, store, customer.ID, domainJob.ServiceSmallDeliveries)

	cargo := "Fragile glassware"
	_, err := svc.UpdateJob(ctx, testutil.Principal(customer), j.ID, &UpdateJobRequest{CargoDescription: &cargo})
	assert.ErrorIs(t, err, appErrors.ErrInsufficientPermissions)

	updated, err := svc.UpdateJob(ctx, testutil.Principal(manager), j.ID, &UpdateJobRequest{CargoDescription: &cargo})
	require.NoError(t, err)
	assert.Equal(t, cargo, updated.CargoDescription)
	assert.Equal(t, j.JobNumber, updated.JobNumber)
}

func TestCustomerJobStats(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	customer := testutil.NewUser(t, store, authz.RoleCustomer)
	j, _ := testutil.NewJob(t, store, customer.ID, domainJob.ServiceSmallDeliveries)
	testutil.NewJob(t, store, customer.ID, domainJob.ServiceSmallDeliveries)

	require.NoError(t, store.Timeline().Append(ctx, &timeline.Entry{JobID: j.ID, Status: timeline.StatusOutForDelivery}))

	stats, err := svc.CustomerJobStats(ctx, testutil.Principal(customer))
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Total)
	assert.EqualValues(t, 1, stats.Active)
	assert.EqualValues(t, 0, stats.Delivered)
}
