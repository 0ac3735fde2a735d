package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentNotPaid      PaymentMethod = "NOT_PAID"
	PaymentStripe       PaymentMethod = "STRIPE"
	PaymentPayPal       PaymentMethod = "PAYPAL"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentCard         PaymentMethod = "CARD"
	PaymentCheque       PaymentMethod = "CHEQUE"
)

// IsSettlement reports whether m can be recorded as the way an invoice was paid.
func (m PaymentMethod) IsSettlement() bool {
	switch m {
	case PaymentStripe, PaymentPayPal, PaymentBankTransfer, PaymentCard, PaymentCheque:
		return true
	}
	return false
}

// TaxSnapshot freezes the rule that applied when the invoice was drafted so
// later rate changes never alter it.
type TaxSnapshot struct {
	RegionCode string          `json:"region_code"`
	TaxName    string          `json:"tax_name"`
	Rate       decimal.Decimal `json:"rate"`
}

type Invoice struct {
	ID     uuid.UUID
	JobID  uuid.UUID
	Status Status

	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
	TaxRuleApplied *TaxSnapshot

	DueDate time.Time

	PaymentMethod         PaymentMethod
	PaymentNotes          *string
	StripePaymentIntentID *string
	PaidAt                *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

type TaxRule struct {
	ID         uuid.UUID
	RegionCode string
	TaxName    string
	Rate       decimal.Decimal
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
