package invoice

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logipro/internal/domain/job"
	appErrors "logipro/pkg/errors"
)

func TestDraftWithoutTaxRule(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)
	j := &job.Job{ID: uuid.New(), ServiceType: job.ServiceResidentialMoving}

	inv := Draft(j, nil, now)

	assert.Equal(t, StatusDraft, inv.Status)
	assert.Equal(t, PaymentNotPaid, inv.PaymentMethod)
	assert.True(t, inv.Subtotal.Equal(decimal.NewFromInt(300)))
	assert.True(t, inv.TaxAmount.IsZero())
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(300)))
	assert.Nil(t, inv.TaxRuleApplied)
	assert.Equal(t, time.Date(2025, 3, 24, 0, 0, 0, 0, time.UTC), inv.DueDate)
}

func TestDraftDueDateAcrossDaylightSaving(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// US clocks fall back on 2025-11-02 and spring forward on 2025-03-09.
	cases := []struct {
		now  time.Time
		want time.Time
	}{
		{time.Date(2025, 10, 25, 10, 0, 0, 0, ny), time.Date(2025, 11, 8, 0, 0, 0, 0, ny)},
		{time.Date(2025, 3, 1, 23, 30, 0, 0, ny), time.Date(2025, 3, 15, 0, 0, 0, 0, ny)},
	}
	for _, tc := range cases {
		inv := Draft(&job.Job{ServiceType: job.ServicePalletDelivery}, nil, tc.now)
		assert.True(t, tc.want.Equal(inv.DueDate), "due %s, want %s", inv.DueDate, tc.want)
		assert.Equal(t, tc.want.Format(time.DateOnly), inv.DueDate.Format(time.DateOnly))
	}
}

func TestDraftAppliesTaxSnapshot(t *testing.T) {
	rule := &TaxRule{RegionCode: "ON", TaxName: "HST", Rate: decimal.RequireFromString("0.1300"), IsActive: true}
	j := &job.Job{ID: uuid.New(), ServiceType: job.ServiceOfficeRelocation}

	inv := Draft(j, rule, time.Now())

	assert.Equal(t, "450", inv.Subtotal.String())
	assert.Equal(t, "58.5", inv.TaxAmount.String())
	assert.Equal(t, "508.5", inv.TotalAmount.String())
	require.NotNil(t, inv.TaxRuleApplied)
	assert.Equal(t, "HST", inv.TaxRuleApplied.TaxName)
	assert.True(t, inv.TotalAmount.Equal(inv.Subtotal.Add(inv.TaxAmount)))
}

func TestDraftIgnoresInactiveRule(t *testing.T) {
	rule := &TaxRule{RegionCode: "ON", Rate: decimal.RequireFromString("0.13"), IsActive: false}
	inv := Draft(&job.Job{ServiceType: job.ServiceSmallDeliveries}, rule, time.Now())

	assert.Equal(t, "50", inv.TotalAmount.String())
	assert.Nil(t, inv.TaxRuleApplied)
}

func TestSurcharges(t *testing.T) {
	assert.Equal(t, "250", Surcharge(job.ServiceResidentialMoving).String())
	assert.Equal(t, "400", Surcharge(job.ServiceOfficeRelocation).String())
	assert.Equal(t, "100", Surcharge(job.ServicePalletDelivery).String())
	assert.True(t, Surcharge(job.ServiceSmallDeliveries).IsZero())
}

func TestInvoiceTransitions(t *testing.T) {
	assert.NoError(t, ValidateTransition(StatusDraft, StatusPaid))
	assert.NoError(t, ValidateTransition(StatusSent, StatusVoid))
	assert.True(t, appErrors.HasCode(ValidateTransition(StatusPaid, StatusVoid), appErrors.CodeInvalidTransition))
	assert.True(t, appErrors.HasCode(ValidateTransition(StatusVoid, StatusSent), appErrors.CodeInvalidTransition))
}
