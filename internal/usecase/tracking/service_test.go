package tracking

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logipro/internal/authz"
	domainJob "logipro/internal/domain/job"
	domainShipment "logipro/internal/domain/shipment"
	"logipro/internal/domain/timeline"
	"logipro/internal/domain/uow"
	"logipro/internal/infrastructure/memory"
	"logipro/internal/testutil"
	appErrors "logipro/pkg/errors"
)

func appendEntry(t *testing.T, store *memory.Store, e *timeline.Entry) {
	t.Helper()
	err := store.WithinTx(context.Background(), func(ctx context.Context, repos uow.Repositories) error {
		return repos.Timeline.Append(ctx, e)
	})
	require.NoError(t, err)
}

func TestTrack(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.Jobs(), store.Shipments(), store.Timeline(), store.Drivers())
	ctx := context.Background()

	customer := testutil.NewUser(t, store, authz.RoleCustomer)
	_, driver := testutil.NewDriver(t, store)
	j, sh := testutil.NewJob(t, store, customer.ID, domainJob.ServicePalletDelivery)

	resp, err := svc.Track(ctx, j.JobNumber)
	require.NoError(t, err)
	assert.Equal(t, "ORDER_PLACED", resp.CurrentStatus)
	assert.Equal(t, "Order Placed", resp.CurrentStatusLabel)
	assert.Equal(t, "PENDING", resp.ShipmentStatus)
	assert.Empty(t, resp.DriverName)
	assert.Len(t, resp.Timeline, 1)

	testutil.Assign(t, store, sh, driver.ID, domainShipment.StatusInTransit)
	time.Sleep(time.Millisecond)
	appendEntry(t, store, &timeline.Entry{JobID: j.ID, Status: timeline.StatusOutForDelivery, Location: "Brisbane"})

	resp, err = svc.Track(ctx, j.JobNumber)
	require.NoError(t, err)
	assert.Equal(t, "OUT_FOR_DELIVERY", resp.CurrentStatus)
	assert.Equal(t, "Brisbane", resp.CurrentLocation)
	assert.Equal(t, driver.FullName, resp.DriverName)
	assert.Nil(t, resp.ProofOfDeliveryURL)

	current := 0
	for _, e := range resp.Timeline {
		if e.IsCurrent {
			current++
		}
	}
	assert.Equal(t, 1, current)

	url := "/media/pod/x.png"
	now := time.Now()
	sh.Status = domainShipment.StatusDelivered
	sh.ProofOfDeliveryURL = &url
	sh.ActualArrival = &now
	require.NoError(t, store.Shipments().Update(ctx, sh))

	resp, err = svc.Track(ctx, j.JobNumber)
	require.NoError(t, err)
	require.NotNil(t, resp.ProofOfDeliveryURL)
	assert.Equal(t, url, *resp.ProofOfDeliveryURL)
	assert.NotNil(t, resp.DeliveredAt)
}

func TestTrackUnknownJob(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.Jobs(), store.Shipments(), store.Timeline(), store.Drivers())

	_, err := svc.Track(context.Background(), 999999)
	assert.Equal(t, http.StatusNotFound, appErrors.HTTPStatus(err))

	_, err = svc.Resolve(context.Background(), 999999)
	assert.ErrorIs(t, err, domainJob.ErrJobNotFound)
}

func TestPublicStats(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.Jobs(), store.Shipments(), store.Timeline(), store.Drivers())

	a := testutil.NewUser(t, store, authz.RoleCustomer)
	b := testutil.NewUser(t, store, authz.RoleCustomer)
	testutil.NewUser(t, store, authz.RoleManager)

	delivered, _ := testutil.NewJob(t, store, a.ID, domainJob.ServiceSmallDeliveries)
	moving, _ := testutil.NewJob(t, store, b.ID, domainJob.ServiceSmallDeliveries)
	testutil.NewJob(t, store, b.ID, domainJob.ServiceSmallDeliveries)

	time.Sleep(time.Millisecond)
	appendEntry(t, store, &timeline.Entry{JobID: delivered.ID, Status: timeline.StatusDelivered})
	appendEntry(t, store, &timeline.Entry{JobID: moving.ID, Status: timeline.StatusInTransit})

	stats, err := svc.PublicStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalCustomers)
	assert.Equal(t, int64(1), stats.CompletedDeliveries)
	assert.Equal(t, int64(1), stats.ActiveOrders)
}
