package invoice

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logipro/internal/authz"
	domainInvoice "logipro/internal/domain/invoice"
	domainJob "logipro/internal/domain/job"
	"logipro/internal/infrastructure/memory"
	"logipro/internal/testutil"
	appErrors "logipro/pkg/errors"
)

func setup(t *testing.T) (*Service, *memory.Store, authz.Principal, *domainInvoice.Invoice) {
	t.Helper()
	store := memory.NewStore()
	svc := NewService(store, store.Invoices(), store.TaxRules())
	manager := testutil.Principal(testutil.NewUser(t, store, authz.RoleManager))
	customer := testutil.NewUser(t, store, authz.RoleCustomer)
	j, _ := testutil.NewJob(t, store, customer.ID, domainJob.ServiceResidentialMoving)

	inv, err := store.Invoices().GetByJobID(context.Background(), j.ID)
	require.NoError(t, err)
	return svc, store, manager, inv
}

func TestRecordPayment(t *testing.T) {
	svc, _, manager, inv := setup(t)
	ctx := context.Background()
	assert.True(t, inv.Subtotal.Equal(decimal.NewFromInt(300)))

	_, err := svc.RecordPayment(ctx, manager, inv.ID, &RecordPaymentRequest{PaymentMethod: "NOT_PAID"})
	assert.Equal(t, http.StatusBadRequest, appErrors.HTTPStatus(err))

	intent := "pi_3Nx"
	notes := "Paid at depot"
	resp, err := svc.RecordPayment(ctx, manager, inv.ID, &RecordPaymentRequest{
		PaymentMethod:         "STRIPE",
		PaymentNotes:          &notes,
		StripePaymentIntentID: &intent,
	})
	require.NoError(t, err)
	assert.Equal(t, "PAID", resp.Status)
	assert.Equal(t, "STRIPE", resp.PaymentMethod)
	assert.Equal(t, intent, *resp.StripePaymentIntentID)
	assert.NotNil(t, resp.PaidAt)

	_, err = svc.RecordPayment(ctx, manager, inv.ID, &RecordPaymentRequest{PaymentMethod: "CARD"})
	assert.True(t, appErrors.HasCode(err, appErrors.CodeInvalidTransition))

	_, err = svc.Void(ctx, manager, inv.ID)
	assert.True(t, appErrors.HasCode(err, appErrors.CodeInvalidTransition))
}

func TestSendThenVoid(t *testing.T) {
	svc, _, manager, inv := setup(t)
	ctx := context.Background()

	resp, err := svc.Send(ctx, manager, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "SENT", resp.Status)

	_, err = svc.Send(ctx, manager, inv.ID)
	assert.Equal(t, http.StatusConflict, appErrors.HTTPStatus(err))

	resp, err = svc.Void(ctx, manager, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "VOID", resp.Status)
	assert.Equal(t, "NOT_PAID", resp.PaymentMethod)

	_, err = svc.Send(ctx, manager, uuid.New())
	assert.Equal(t, http.StatusNotFound, appErrors.HTTPStatus(err))
}

func TestListAndLookup(t *testing.T) {
	svc, store, manager, inv := setup(t)
	ctx := context.Background()
	customer := testutil.NewUser(t, store, authz.RoleCustomer)
	testutil.NewJob(t, store, customer.ID, domainJob.ServiceSmallDeliveries)

	_, err := svc.Send(ctx, manager, inv.ID)
	require.NoError(t, err)

	sent := "SENT"
	page, err := svc.List(ctx, &ListInvoicesRequest{Status: &sent})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Meta.Total)

	page, err = svc.List(ctx, &ListInvoicesRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Meta.Total)

	byJob, err := svc.GetByJob(ctx, inv.JobID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, byJob.ID)

	got, err := svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalAmount.Equal(got.Subtotal.Add(got.TaxAmount)))
}

func TestTaxRules(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	created, err := svc.CreateTaxRule(ctx, &CreateTaxRuleRequest{RegionCode: "qld", TaxName: "GST", Rate: decimal.RequireFromString("0.10")})
	require.NoError(t, err)
	assert.Equal(t, "QLD", created.RegionCode)
	assert.True(t, created.IsActive)

	_, err = svc.CreateTaxRule(ctx, &CreateTaxRuleRequest{RegionCode: "QLD", TaxName: "GST", Rate: decimal.RequireFromString("0.10")})
	assert.Equal(t, http.StatusConflict, appErrors.HTTPStatus(err))

	_, err = svc.CreateTaxRule(ctx, &CreateTaxRuleRequest{RegionCode: "NSW", TaxName: "GST", Rate: decimal.RequireFromString("1.5")})
	assert.Equal(t, http.StatusBadRequest, appErrors.HTTPStatus(err))

	_, err = svc.CreateTaxRule(ctx, &CreateTaxRuleRequest{RegionCode: "NSW", TaxName: "GST", Rate: decimal.RequireFromString("0.123456")})
	assert.Equal(t, http.StatusBadRequest, appErrors.HTTPStatus(err))

	rate := decimal.RequireFromString("0.0825")
	inactive := false
	updated, err := svc.UpdateTaxRule(ctx, created.ID, &UpdateTaxRuleRequest{Rate: &rate, IsActive: &inactive})
	require.NoError(t, err)
	assert.True(t, updated.Rate.Equal(rate))
	assert.False(t, updated.IsActive)

	rules, err := svc.ListTaxRules(ctx)
	require.NoError(t, err)
	assert.Len(t, rules, 1)

	_, err = svc.UpdateTaxRule(ctx, uuid.New(), &UpdateTaxRuleRequest{IsActive: &inactive})
	assert.Equal(t, http.StatusNotFound, appErrors.HTTPStatus(err))
}
