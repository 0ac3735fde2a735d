// Package testutil seeds a memory store with the records usecase and
// handler tests build on.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"logipro/internal/authz"
	"logipro/internal/domain/fleet"
	"logipro/internal/domain/invoice"
	"logipro/internal/domain/job"
	"logipro/internal/domain/shipment"
	"logipro/internal/domain/timeline"
	"logipro/internal/domain/uow"
	"logipro/internal/domain/user"
	"logipro/internal/infrastructure/memory"
)

func NewUser(t *testing.T, store *memory.Store, role authz.Role) *user.User {
	t.Helper()
	u := &user.User{
		Email:    fmt.Sprintf("%s-%s@logipro.test", role, uuid.NewString()[:8]),
		FullName: fmt.Sprintf("Test %s", role),
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

// NewDriver creates a driver-role user together with its driver profile.
func NewDriver(t *testing.T, store *memory.Store) (*user.User, *fleet.Driver) {
	t.Helper()
	u := NewUser(t, store, authz.RoleDriver)
	d := &fleet.Driver{UserID: u.ID, LicenseNumber: "DL-" + u.ID.String()[:6], PhoneNumber: "+15550100"}
	require.NoError(t, store.Drivers().Create(context.Background(), d))
	d.FullName = u.FullName
	return u, d
}

func Principal(u *user.User) authz.Principal {
	return authz.Principal{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// NewJob books a job through the same cascade the job service uses, leaving
// a PENDING shipment, a DRAFT invoice and an ORDER_PLACED timeline entry.
func NewJob(t *testing.T, store *memory.Store, customerID uuid.UUID, service job.ServiceType) (*job.Job, *shipment.Shipment) {
	t.Helper()
	j := &job.Job{
		CustomerID:       customerID,
		JobType:          job.JobTypeResidential,
		ServiceType:      service,
		CargoDescription: "Boxes",
		Pickup:           job.Stop{Address: "1 George St", City: "Sydney", ContactPerson: "Sam", ContactPhone: "+61400000001"},
		Delivery:         job.Stop{Address: "9 Queen St", City: "Brisbane", Region: "QLD", ContactPerson: "Alex", ContactPhone: "+61400000002"},
	}
	var sh *shipment.Shipment
	err := store.WithinTx(context.Background(), func(ctx context.Context, repos uow.Repositories) error {
		n, err := repos.Jobs.NextNumber(ctx)
		if err != nil {
			return err
		}
		j.JobNumber = n
		if err := repos.Jobs.Create(ctx, j); err != nil {
			return err
		}
		sh = &shipment.Shipment{JobID: j.ID, Status: shipment.StatusPending}
		if err := repos.Shipments.Create(ctx, sh); err != nil {
			return err
		}
		if err := repos.Invoices.Create(ctx, invoice.Draft(j, nil, time.Now())); err != nil {
			return err
		}
		return repos.Timeline.Append(ctx, &timeline.Entry{JobID: j.ID, Status: timeline.StatusOrderPlaced})
	})
	require.NoError(t, err)
	return j, sh
}

// Assign puts the shipment in status with driverID as its driver.
func Assign(t *testing.T, store *memory.Store, sh *shipment.Shipment, driverID uuid.UUID, status shipment.Status) {
	t.Helper()
	sh.DriverID = &driverID
	sh.Status = status
	require.NoError(t, store.Shipments().Update(context.Background(), sh))
}
