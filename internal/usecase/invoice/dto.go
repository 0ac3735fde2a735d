package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainInvoice "logipro/internal/domain/invoice"
)

type RecordPaymentRequest struct {
	PaymentMethod         string  `json:"payment_method" validate:"required,payment_method"`
	PaymentNotes          *string `json:"payment_notes" validate:"omitempty,max=1000"`
	StripePaymentIntentID *string `json:"stripe_payment_intent_id" validate:"omitempty,max=255"`
}

type ListInvoicesRequest struct {
	Status   *string    `form:"status" validate:"omitempty,oneof=DRAFT SENT PAID VOID"`
	JobID    *uuid.UUID `form:"-"`
	Page     int        `form:"page" validate:"omitempty,min=1"`
	PageSize int        `form:"page_size" validate:"omitempty,min=1,max=100"`
}

type CreateTaxRuleRequest struct {
	RegionCode string          `json:"region_code" validate:"required,region_code"`
	TaxName    string          `json:"tax_name" validate:"required,max=100"`
	Rate       decimal.Decimal `json:"rate"`
	IsActive   *bool           `json:"is_active"`
}

type UpdateTaxRuleRequest struct {
	TaxName  *string          `json:"tax_name" validate:"omitempty,max=100"`
	Rate     *decimal.Decimal `json:"rate"`
	IsActive *bool            `json:"is_active"`
}

type InvoiceResponse struct {
	ID                    uuid.UUID                  `json:"id"`
	JobID                 uuid.UUID                  `json:"job_id"`
	Status                string                     `json:"status"`
	Subtotal              decimal.Decimal            `json:"subtotal"`
	TaxAmount             decimal.Decimal            `json:"tax_amount"`
	TotalAmount           decimal.Decimal            `json:"total_amount"`
	TaxRuleApplied        *domainInvoice.TaxSnapshot `json:"tax_rule_applied"`
	DueDate               time.Time                  `json:"due_date"`
	PaymentMethod         string                     `json:"payment_method"`
	PaymentNotes          *string                    `json:"payment_notes,omitempty"`
	StripePaymentIntentID *string                    `json:"stripe_payment_intent_id,omitempty"`
	PaidAt                *time.Time                 `json:"paid_at,omitempty"`
	CreatedAt             time.Time                  `json:"created_at"`
	UpdatedAt             time.Time                  `json:"updated_at"`
}

type TaxRuleResponse struct {
	ID         uuid.UUID       `json:"id"`
	RegionCode string          `json:"region_code"`
	TaxName    string          `json:"tax_name"`
	Rate       decimal.Decimal `json:"rate"`
	IsActive   bool            `json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func ToInvoiceResponse(inv *domainInvoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		ID:                    inv.ID,
		JobID:                 inv.JobID,
		Status:                string(inv.Status),
		Subtotal:              inv.Subtotal,
		TaxAmount:             inv.TaxAmount,
		TotalAmount:           inv.TotalAmount,
		TaxRuleApplied:        inv.TaxRuleApplied,
		DueDate:               inv.DueDate,
		PaymentMethod:         string(inv.PaymentMethod),
		PaymentNotes:          inv.PaymentNotes,
		StripePaymentIntentID: inv.StripePaymentIntentID,
		PaidAt:                inv.PaidAt,
		CreatedAt:             inv.CreatedAt,
		UpdatedAt:             inv.UpdatedAt,
	}
}

func ToTaxRuleResponse(r *domainInvoice.TaxRule) *TaxRuleResponse {
	return &TaxRuleResponse{
		ID:         r.ID,
		RegionCode: r.RegionCode,
		TaxName:    r.TaxName,
		Rate:       r.Rate,
		IsActive:   r.IsActive,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}
