package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"logipro/internal/domain/invoice"
	appErrors "logipro/pkg/errors"
)

type InvoiceRepository struct {
	v view
}

func (r *InvoiceRepository) Create(_ context.Context, inv *invoice.Invoice) error {
	return r.v.do(func(st *state) error {
		for _, existing := range st.invoices {
			if existing.JobID == inv.JobID {
				return appErrors.Conflict("Job already has an invoice", nil)
			}
		}
		now := time.Now()
		inv.ID = uuid.New()
		inv.CreatedAt = now
		inv.UpdatedAt = now
		st.invoices[inv.ID] = *inv
		return nil
	})
}

func (r *InvoiceRepository) GetByID(_ context.Context, invoiceID uuid.UUID) (*invoice.Invoice, error) {
	var found *invoice.Invoice
	err := r.v.do(func(st *state) error {
		inv, ok := st.invoices[invoiceID]
		if !ok {
			return invoice.ErrInvoiceNotFound
		}
		found = &inv
		return nil
	})
	return found, err
}

func (r *InvoiceRepository) GetForUpdate(ctx context.Context, invoiceID uuid.UUID) (*invoice.Invoice, error) {
	return r.GetByID(ctx, invoiceID)
}

func (r *InvoiceRepository) GetByJobID(_ context.Context, jobID uuid.UUID) (*invoice.Invoice, error) {
	var found *invoice.Invoice
	err := r.v.do(func(st *state) error {
		for _, inv := range st.invoices {
			if inv.JobID == jobID {
				found = &inv
				return nil
			}
		}
		return invoice.ErrInvoiceNotFound
	})
	return found, err
}

// Update only touches status and payment fields, like the SQL repository.
func (r *InvoiceRepository) Update(_ context.Context, inv *invoice.Invoice) error {
	return r.v.do(func(st *state) error {
		existing, ok := st.invoices[inv.ID]
		if !ok {
			return invoice.ErrInvoiceNotFound
		}
		inv.UpdatedAt = time.Now()
		existing.Status = inv.Status
		existing.PaymentMethod = inv.PaymentMethod
		existing.PaymentNotes = inv.PaymentNotes
		existing.StripePaymentIntentID = inv.StripePaymentIntentID
		existing.PaidAt = inv.PaidAt
		existing.UpdatedAt = inv.UpdatedAt
		st.invoices[inv.ID] = existing
		return nil
	})
}

func (r *InvoiceRepository) List(_ context.Context, filter *invoice.Filter) ([]*invoice.Invoice, int64, error) {
	var matched []*invoice.Invoice
	err := r.v.do(func(st *state) error {
		for _, inv := range st.invoices {
			if filter.Status != nil && inv.Status != *filter.Status {
				continue
			}
			if filter.JobID != nil && inv.JobID != *filter.JobID {
				continue
			}
			matched = append(matched, &inv)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sortNewestFirst(matched, func(inv *invoice.Invoice) time.Time { return inv.CreatedAt })
	return paginate(matched, filter.Page, filter.PageSize), int64(len(matched)), nil
}

type TaxRuleRepository struct {
	v view
}

func (r *TaxRuleRepository) Create(_ context.Context, rule *invoice.TaxRule) error {
	return r.v.do(func(st *state) error {
		if st.regionTaken(rule.RegionCode, uuid.Nil) {
			return invoice.ErrDuplicateRegion
		}
		now := time.Now()
		rule.ID = uuid.New()
		rule.CreatedAt = now
		rule.UpdatedAt = now
		st.taxRules[rule.ID] = *rule
		return nil
	})
}

func (r *TaxRuleRepository) GetByID(_ context.Context, ruleID uuid.UUID) (*invoice.TaxRule, error) {
	var found *invoice.TaxRule
	err := r.v.do(func(st *state) error {
		rule, ok := st.taxRules[ruleID]
		if !ok {
			return invoice.ErrTaxRuleNotFound
		}
		found = &rule
		return nil
	})
	return found, err
}

func (r *TaxRuleRepository) FindActive(_ context.Context, regionCode string) (*invoice.TaxRule, error) {
	var found *invoice.TaxRule
	err := r.v.do(func(st *state) error {
		for _, rule := range st.taxRules {
			if rule.IsActive && regionCode != "" && rule.RegionCode == regionCode {
				found = &rule
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r *TaxRuleRepository) Update(_ context.Context, rule *invoice.TaxRule) error {
	return r.v.do(func(st *state) error {
		existing, ok := st.taxRules[rule.ID]
		if !ok {
			return invoice.ErrTaxRuleNotFound
		}
		if st.regionTaken(rule.RegionCode, rule.ID) {
			return invoice.ErrDuplicateRegion
		}
		rule.UpdatedAt = time.Now()
		rule.CreatedAt = existing.CreatedAt
		st.taxRules[rule.ID] = *rule
		return nil
	})
}

func (r *TaxRuleRepository) List(_ context.Context) ([]*invoice.TaxRule, error) {
	var rules []*invoice.TaxRule
	err := r.v.do(func(st *state) error {
		for _, rule := range st.taxRules {
			rules = append(rules, &rule)
		}
		return nil
	})
	slices.SortFunc(rules, func(a, b *invoice.TaxRule) int {
		return strings.Compare(a.RegionCode, b.RegionCode)
	})
	return rules, err
}

func (st *state) regionTaken(region string, except uuid.UUID) bool {
	for id, rule := range st.taxRules {
		if id != except && rule.RegionCode == region {
			return true
		}
	}
	return false
}
