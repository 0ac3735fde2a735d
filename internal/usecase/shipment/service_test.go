package shipment

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"logipro/internal/authz"
	"logipro/internal/domain/fleet"
	domainJob "logipro/internal/domain/job"
	domainShipment "logipro/internal/domain/shipment"
	"logipro/internal/domain/timeline"
	"logipro/internal/domain/tracking"
	"logipro/internal/infrastructure/memory"
	infraStorage "logipro/internal/infrastructure/storage"
	"logipro/internal/mocks"
	"logipro/internal/testutil"
	appErrors "logipro/pkg/errors"
)

const podLimit = 5 << 20

var (
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)
	gifBytes = append([]byte("GIF89a"), make([]byte, 64)...)
	bmpBytes = append([]byte("BM"), make([]byte, 64)...)
)

type fixture struct {
	svc       *Service
	store     *memory.Store
	publisher *mocks.MockPublisher
	fs        afero.Fs

	manager    authz.Principal
	driver     authz.Principal
	driverInfo *fleet.Driver
	other      authz.Principal
	job        *domainJob.Job
	shipment   *domainShipment.Shipment
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	fs := afero.NewMemMapFs()
	blobs, err := infraStorage.NewFileStore(fs, "/media", "/media")
	require.NoError(t, err)
	publisher := mocks.NewMockPublisher(gomock.NewController(t))

	driverUser, driverInfo := testutil.NewDriver(t, store)
	otherUser, _ := testutil.NewDriver(t, store)
	customer := testutil.NewUser(t, store, authz.RoleCustomer)
	j, sh := testutil.NewJob(t, store, customer.ID, domainJob.ServiceSmallDeliveries)

	return &fixture{
		svc:        NewService(store, store.Shipments(), store.Drivers(), store.Vehicles(), blobs, publisher, podLimit),
		store:      store,
		publisher:  publisher,
		fs:         fs,
		manager:    testutil.Principal(testutil.NewUser(t, store, authz.RoleManager)),
		driver:     testutil.Principal(driverUser),
		driverInfo: driverInfo,
		other:      testutil.Principal(otherUser),
		job:        j,
		shipment:   sh,
	}
}

func (f *fixture) expectEvents(n int) {
	f.publisher.EXPECT().PublishStatus(gomock.Any(), gomock.Any()).Return(nil).Times(n)
}

func (f *fixture) assignAndStart(t *testing.T) {
	t.Helper()
	f.expectEvents(2)
	_, err := f.svc.Assign(context.Background(), f.manager, f.shipment.ID, &AssignRequest{DriverID: &f.driverInfo.ID})
	require.NoError(t, err)
	_, err = f.svc.StartTrip(context.Background(), f.driver, f.shipment.ID)
	require.NoError(t, err)
}

func upload(data []byte, contentType string) *ImageUpload {
	return &ImageUpload{Filename: "pod", ContentType: contentType, Size: int64(len(data)), Reader: bytes.NewReader(data)}
}

func TestHappyPathKeepsSingleCurrentTimelineEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.assignAndStart(t)

	f.expectEvents(2)
	_, err := f.svc.RecordCheckpoint(ctx, f.driver, f.shipment.ID, &CheckpointRequest{Status: "OUT_FOR_DELIVERY", Location: "Brisbane CBD"})
	require.NoError(t, err)

	resp, err := f.svc.UploadProofOfDelivery(ctx, f.driver, f.shipment.ID, upload(pngBytes, "image/png"))
	require.NoError(t, err)
	assert.Equal(t, "DELIVERED", resp.Status)
	assert.NotNil(t, resp.ActualArrival)
	assert.NotNil(t, resp.ActualDeparture)
	require.NotNil(t, resp.ProofOfDeliveryURL)
	assert.True(t, strings.HasPrefix(*resp.ProofOfDeliveryURL, "/media/pod/"+f.shipment.ID.String()))
	assert.True(t, strings.HasSuffix(*resp.ProofOfDeliveryURL, ".png"))

	stored, err := afero.ReadFile(f.fs, "/media"+strings.TrimPrefix(*resp.ProofOfDeliveryURL, "/media"))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)

	entries, err := f.store.Timeline().ListByJob(ctx, f.job.ID)
	require.NoError(t, err)
	var statuses []timeline.Status
	current := 0
	for _, e := range entries {
		statuses = append(statuses, e.Status)
		if e.IsCurrent {
			current++
			assert.Equal(t, timeline.StatusDelivered, e.Status)
		}
	}
	assert.Equal(t, 1, current)
	assert.Equal(t, []timeline.Status{
		timeline.StatusOrderPlaced,
		timeline.StatusDriverAssigned,
		timeline.StatusInTransit,
		timeline.StatusOutForDelivery,
		timeline.StatusDelivered,
	}, statuses)

	// Replacing the image on a delivered shipment adds no timeline entry.
	again, err := f.svc.UploadProofOfDelivery(ctx, f.driver, f.shipment.ID, upload(gifBytes, "image/gif"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(*again.ProofOfDeliveryURL, ".gif"))
	entries, err = f.store.Timeline().ListByJob(ctx, f.job.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestMarkDeliveredFromPendingIsInvalidTransition(t *testing.T) {
	f := newFixture(t)
	testutil.Assign(t, f.store, f.shipment, f.driverInfo.ID, domainShipment.StatusPending)

	_, err := f.svc.MarkDelivered(context.Background(), f.driver, f.shipment.ID, &MarkDeliveredRequest{}, nil)
	assert.True(t, appErrors.HasCode(err, appErrors.CodeInvalidTransition))
	assert.Equal(t, http.StatusConflict, appErrors.HTTPStatus(err))

	sh, err := f.store.Shipments().GetByID(context.Background(), f.shipment.ID)
	require.NoError(t, err)
	assert.Equal(t, domainShipment.StatusPending, sh.Status)
}

func TestOnlyAssignedDriverMayAct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.expectEvents(1)
	_, err := f.svc.Assign(ctx, f.manager, f.shipment.ID, &AssignRequest{DriverID: &f.driverInfo.ID})
	require.NoError(t, err)

	_, err = f.svc.StartTrip(ctx, f.other, f.shipment.ID)
	assert.ErrorIs(t, err, domainShipment.ErrNotAssignedToYou)
	assert.Equal(t, http.StatusForbidden, appErrors.HTTPStatus(err))

	_, err = f.svc.UploadProofOfDelivery(ctx, f.other, f.shipment.ID, upload(pngBytes, "image/png"))
	assert.Equal(t, http.StatusForbidden, appErrors.HTTPStatus(err))

	_, err = f.svc.StartTrip(ctx, f.manager, f.shipment.ID)
	assert.ErrorIs(t, err, appErrors.ErrInsufficientPermissions)

	noProfile := testutil.Principal(testutil.NewUser(t, f.store, authz.RoleDriver))
	_, err = f.svc.StartTrip(ctx, noProfile, f.shipment.ID)
	assert.ErrorIs(t, err, fleet.ErrNoDriverProfile)

	ok, err := f.svc.IsAssignedDriver(ctx, f.other, f.shipment.ID.String())
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = f.svc.IsAssignedDriver(ctx, f.driver, f.shipment.ID.String())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUploadValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.assignAndStart(t)

	tooBig := &ImageUpload{ContentType: "image/jpeg", Size: 6 << 20, Reader: bytes.NewReader(make([]byte, 6<<20))}
	_, err := f.svc.UploadProofOfDelivery(ctx, f.driver, f.shipment.ID, tooBig)
	assert.Equal(t, http.StatusBadRequest, appErrors.HTTPStatus(err))

	// A lying size header is caught by the read limit.
	lying := &ImageUpload{ContentType: "image/png", Size: 10, Reader: bytes.NewReader(append(pngBytes, make([]byte, podLimit)...))}
	_, err = f.svc.UploadProofOfDelivery(ctx, f.driver, f.shipment.ID, lying)
	assert.Equal(t, http.StatusBadRequest, appErrors.HTTPStatus(err))

	_, err = f.svc.UploadProofOfDelivery(ctx, f.driver, f.shipment.ID, upload(bmpBytes, "image/bmp"))
	assert.Equal(t, http.StatusBadRequest, appErrors.HTTPStatus(err))

	_, err = f.svc.UploadProofOfDelivery(ctx, f.driver, f.shipment.ID, upload(bmpBytes, "image/png"))
	assert.Equal(t, http.StatusBadRequest, appErrors.HTTPStatus(err))

	_, err = f.svc.UploadProofOfDelivery(ctx, f.driver, f.shipment.ID, upload(gifBytes, "image/png"))
	assert.Equal(t, http.StatusBadRequest, appErrors.HTTPStatus(err))

	sh, err := f.store.Shipments().GetByID(ctx, f.shipment.ID)
	require.NoError(t, err)
	assert.Equal(t, domainShipment.StatusInTransit, sh.Status)
	assert.Nil(t, sh.ProofOfDeliveryURL)
}

func TestUploadBeforeTripIsRejected(t *testing.T) {
	f := newFixture(t)
	testutil.Assign(t, f.store, f.shipment, f.driverInfo.ID, domainShipment.StatusAssigned)

	_, err := f.svc.UploadProofOfDelivery(context.Background(), f.driver, f.shipment.ID, upload(pngBytes, "image/png"))
	assert.True(t, appErrors.HasCode(err, appErrors.CodeInvalidTransition))

	// An unsupported image is a validation error whatever the shipment status.
	_, err = f.svc.UploadProofOfDelivery(context.Background(), f.driver, f.shipment.ID, upload(bmpBytes, "image/bmp"))
	assert.True(t, appErrors.HasCode(err, appErrors.CodeValidation))
	assert.Equal(t, http.StatusBadRequest, appErrors.HTTPStatus(err))

	files, err := afero.Glob(f.fs, "/media/pod/*")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestMarkDeliveredWithImage(t *testing.T) {
	f := newFixture(t)
	f.assignAndStart(t)
	f.expectEvents(1)

	signer := "R. Receiver"
	resp, err := f.svc.MarkDelivered(context.Background(), f.driver, f.shipment.ID, &MarkDeliveredRequest{SignatureName: &signer}, upload(pngBytes, "image/png"))
	require.NoError(t, err)
	assert.Equal(t, "DELIVERED", resp.Status)
	assert.Equal(t, signer, *resp.SignatureName)
	assert.NotNil(t, resp.ProofOfDeliveryURL)
	assert.Empty(t, resp.AllowedTransitions)
}

func TestAssignRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	missing := uuid.New()
	_, err := f.svc.Assign(ctx, f.manager, f.shipment.ID, &AssignRequest{DriverID: &missing})
	assert.Equal(t, http.StatusNotFound, appErrors.HTTPStatus(err))

	_, err = f.svc.Assign(ctx, f.manager, f.shipment.ID, &AssignRequest{})
	assert.ErrorIs(t, err, domainShipment.ErrDriverRequired)

	_, err = f.svc.Assign(ctx, f.driver, f.shipment.ID, &AssignRequest{DriverID: &f.driverInfo.ID})
	assert.ErrorIs(t, err, appErrors.ErrInsufficientPermissions)

	broken := &fleet.Vehicle{LicensePlate: "FIX-ME", Make: "Isuzu", Model: "NPR", Year: 2019, CapacityKg: 4000, Status: fleet.VehicleMaintenance}
	require.NoError(t, f.store.Vehicles().Create(ctx, broken))
	_, err = f.svc.Assign(ctx, f.manager, f.shipment.ID, &AssignRequest{VehicleID: &broken.ID})
	assert.ErrorIs(t, err, fleet.ErrVehicleUnavailable)

	van := &fleet.Vehicle{LicensePlate: "VAN-01", Make: "Ford", Model: "Transit", Year: 2022, CapacityKg: 1500, Status: fleet.VehicleAvailable}
	require.NoError(t, f.store.Vehicles().Create(ctx, van))
	resp, err := f.svc.Assign(ctx, f.manager, f.shipment.ID, &AssignRequest{VehicleID: &van.ID})
	require.NoError(t, err)
	assert.Equal(t, "PENDING", resp.Status, "vehicle-only assignment keeps status")

	f.assignAndStart(t)
	_, otherDriver := testutil.NewDriver(t, f.store)
	_, err = f.svc.Assign(ctx, f.manager, f.shipment.ID, &AssignRequest{DriverID: &otherDriver.ID})
	assert.True(t, appErrors.HasCode(err, appErrors.CodeInvalidTransition))
}

func TestReassignKeepsAssigned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, second := testutil.NewDriver(t, f.store)
	f.expectEvents(2)

	_, err := f.svc.Assign(ctx, f.manager, f.shipment.ID, &AssignRequest{DriverID: &f.driverInfo.ID})
	require.NoError(t, err)
	resp, err := f.svc.Assign(ctx, f.manager, f.shipment.ID, &AssignRequest{DriverID: &second.ID})
	require.NoError(t, err)
	assert.Equal(t, "ASSIGNED", resp.Status)
	assert.Equal(t, second.ID, *resp.DriverID)

	_, err = f.svc.StartTrip(ctx, f.driver, f.shipment.ID)
	assert.ErrorIs(t, err, domainShipment.ErrNotAssignedToYou)
}

func TestMarkFailedIsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.assignAndStart(t)
	f.expectEvents(1)

	_, err := f.svc.MarkFailed(ctx, f.driver, f.shipment.ID, &MarkFailedRequest{})
	assert.Equal(t, http.StatusBadRequest, appErrors.HTTPStatus(err))

	resp, err := f.svc.MarkFailed(ctx, f.driver, f.shipment.ID, &MarkFailedRequest{Reason: "Nobody home"})
	require.NoError(t, err)
	assert.Equal(t, "FAILED", resp.Status)
	assert.Equal(t, "Nobody home", *resp.FailureReason)

	_, err = f.svc.StartTrip(ctx, f.driver, f.shipment.ID)
	assert.True(t, appErrors.HasCode(err, appErrors.CodeInvalidTransition))

	_, err = f.svc.RecordCheckpoint(ctx, f.driver, f.shipment.ID, &CheckpointRequest{Status: "IN_TRANSIT"})
	assert.True(t, appErrors.HasCode(err, appErrors.CodeInvalidTransition))
}

func TestCheckpointValidation(t *testing.T) {
	f := newFixture(t)
	f.assignAndStart(t)

	_, err := f.svc.RecordCheckpoint(context.Background(), f.driver, f.shipment.ID, &CheckpointRequest{Status: "DELIVERED"})
	assert.Equal(t, http.StatusBadRequest, appErrors.HTTPStatus(err))
}

func TestUpdateRespectsRoleAndIgnoresStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.Assign(t, f.store, f.shipment, f.driverInfo.ID, domainShipment.StatusAssigned)

	delivered := "DELIVERED"
	eta := time.Now().Add(4 * time.Hour).UTC()
	departed := time.Now().Add(-time.Hour).UTC()
	signer := "Front desk"

	resp, err := f.svc.Update(ctx, f.driver, f.shipment.ID, &UpdateShipmentRequest{
		Status:           &delivered,
		EstimatedArrival: &eta,
		ActualDeparture:  &departed,
		SignatureName:    &signer,
	})
	require.NoError(t, err)
	assert.Equal(t, "ASSIGNED", resp.Status)
	assert.Equal(t, eta, *resp.EstimatedArrival)
	assert.Nil(t, resp.ActualDeparture)
	assert.Equal(t, signer, *resp.SignatureName)

	resp, err = f.svc.Update(ctx, f.manager, f.shipment.ID, &UpdateShipmentRequest{Status: &delivered, ActualDeparture: &departed})
	require.NoError(t, err)
	assert.Equal(t, "ASSIGNED", resp.Status)
	require.NotNil(t, resp.ActualDeparture)

	_, err = f.svc.Update(ctx, f.other, f.shipment.ID, &UpdateShipmentRequest{SignatureName: &signer})
	assert.Equal(t, http.StatusForbidden, appErrors.HTTPStatus(err))

	customer := authz.Principal{UserID: uuid.New(), Role: authz.RoleCustomer}
	_, err = f.svc.Update(ctx, customer, f.shipment.ID, &UpdateShipmentRequest{SignatureName: &signer})
	assert.Equal(t, http.StatusForbidden, appErrors.HTTPStatus(err))

	earlier := eta.Add(-48 * time.Hour)
	_, err = f.svc.Update(ctx, f.manager, f.shipment.ID, &UpdateShipmentRequest{EstimatedDeparture: &eta, EstimatedArrival: &earlier})
	assert.Equal(t, http.StatusBadRequest, appErrors.HTTPStatus(err))
}

func TestPublishFailureDoesNotFailTransition(t *testing.T) {
	f := newFixture(t)
	f.publisher.EXPECT().PublishStatus(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ev tracking.StatusEvent) error {
			assert.Equal(t, f.job.JobNumber, ev.JobNumber)
			assert.Equal(t, "DRIVER_ASSIGNED", ev.Status)
			assert.Equal(t, "ASSIGNED", ev.ShipmentStatus)
			return errors.New("broker down")
		})

	resp, err := f.svc.Assign(context.Background(), f.manager, f.shipment.ID, &AssignRequest{DriverID: &f.driverInfo.ID})
	require.NoError(t, err)
	assert.Equal(t, "ASSIGNED", resp.Status)
}

func TestListAndAssignments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := testutil.NewUser(t, f.store, authz.RoleCustomer)

	later := time.Now().Add(48 * time.Hour)
	sooner := time.Now().Add(2 * time.Hour)
	j2, sh2 := testutil.NewJob(t, f.store, customer.ID, domainJob.ServicePalletDelivery)
	j2.RequestedPickupAt = &sooner
	require.NoError(t, f.store.Jobs().Update(ctx, j2))
	f.job.RequestedPickupAt = &later
	require.NoError(t, f.store.Jobs().Update(ctx, f.job))

	testutil.Assign(t, f.store, f.shipment, f.driverInfo.ID, domainShipment.StatusAssigned)
	testutil.Assign(t, f.store, sh2, f.driverInfo.ID, domainShipment.StatusInTransit)

	assignments, err := f.svc.MyAssignments(ctx, f.driver)
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	assert.Equal(t, j2.JobNumber, assignments[0].JobNumber)
	assert.Equal(t, f.job.JobNumber, assignments[1].JobNumber)

	inTransit := "IN_TRANSIT"
	page, err := f.svc.List(ctx, &ListShipmentsRequest{Status: &inTransit})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Meta.Total)

	got, err := f.svc.Get(ctx, sh2.ID)
	require.NoError(t, err)
	assert.Equal(t, "IN_TRANSIT", got.Status)

	_, err = f.svc.Get(ctx, uuid.New())
	assert.Equal(t, http.StatusNotFound, appErrors.HTTPStatus(err))
}

func TestBlobStoreFailureLeavesShipmentInTransit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.assignAndStart(t)

	blobs := mocks.NewMockBlobStore(gomock.NewController(t))
	blobs.EXPECT().Put(gomock.Any(), gomock.Any(), "image/png", gomock.Any()).Return("", errors.New("disk full"))
	svc := NewService(f.store, f.store.Shipments(), f.store.Drivers(), f.store.Vehicles(), blobs, f.publisher, podLimit)

	_, err := svc.UploadProofOfDelivery(ctx, f.driver, f.shipment.ID, upload(pngBytes, "image/png"))
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, appErrors.HTTPStatus(err))

	sh, err := f.store.Shipments().GetByID(ctx, f.shipment.ID)
	require.NoError(t, err)
	assert.Equal(t, domainShipment.StatusInTransit, sh.Status)
}
