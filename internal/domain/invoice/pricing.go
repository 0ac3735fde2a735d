package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	"logipro/internal/domain/job"
)

// PaymentTermDays is the number of calendar days between drafting an
// invoice and its due date.
const PaymentTermDays = 14

var (
	BaseFee = decimal.NewFromInt(50)

	surcharges = map[job.ServiceType]decimal.Decimal{
		job.ServiceResidentialMoving: decimal.NewFromInt(250),
		job.ServiceOfficeRelocation:  decimal.NewFromInt(400),
		job.ServicePalletDelivery:    decimal.NewFromInt(100),
		job.ServiceSmallDeliveries:   decimal.Zero,
	}
)

// Surcharge returns the service-type add-on. Unknown types carry none.
func Surcharge(service job.ServiceType) decimal.Decimal {
	if s, ok := surcharges[service]; ok {
		return s
	}
	return decimal.Zero
}

// Draft builds the DRAFT invoice for a job. rule may be nil when the
// delivery region has no active tax rule.
func Draft(j *job.Job, rule *TaxRule, now time.Time) *Invoice {
	subtotal := BaseFee.Add(Surcharge(j.ServiceType))
	tax := decimal.Zero

	var snapshot *TaxSnapshot
	if rule != nil && rule.IsActive {
		tax = subtotal.Mul(rule.Rate).Round(2)
		snapshot = &TaxSnapshot{
			RegionCode: rule.RegionCode,
			TaxName:    rule.TaxName,
			Rate:       rule.Rate,
		}
	}

	// Calendar arithmetic, so a DST change inside the term does not shift the date.
	due := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, PaymentTermDays)

	return &Invoice{
		JobID:          j.ID,
		Status:         StatusDraft,
		Subtotal:       subtotal,
		TaxAmount:      tax,
		TotalAmount:    subtotal.Add(tax),
		TaxRuleApplied: snapshot,
		DueDate:        due,
		PaymentMethod:  PaymentNotPaid,
	}
}
