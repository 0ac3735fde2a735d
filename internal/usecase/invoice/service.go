package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"logipro/internal/authz"
	domainInvoice "logipro/internal/domain/invoice"
	"logipro/internal/domain/uow"
	"logipro/internal/logger"
	appErrors "logipro/pkg/errors"
	"logipro/pkg/utils"
)

var maxTaxRate = decimal.NewFromInt(1)

type Service struct {
	tx          uow.Manager
	invoiceRepo domainInvoice.Repository
	taxRuleRepo domainInvoice.TaxRuleRepository
}

func NewService(tx uow.Manager, invoiceRepo domainInvoice.Repository, taxRuleRepo domainInvoice.TaxRuleRepository) *Service {
	return &Service{tx: tx, invoiceRepo: invoiceRepo, taxRuleRepo: taxRuleRepo}
}

// RecordPayment settles a DRAFT or SENT invoice.
func (s *Service) RecordPayment(ctx context.Context, actor authz.Principal, invoiceID uuid.UUID, req *RecordPaymentRequest) (*InvoiceResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}
	method := domainInvoice.PaymentMethod(req.PaymentMethod)
	if !method.IsSettlement() {
		return nil, domainInvoice.ErrInvalidPayMethod
	}

	inv, err := s.transition(ctx, invoiceID, domainInvoice.StatusPaid, func(inv *domainInvoice.Invoice) {
		now := time.Now()
		inv.PaymentMethod = method
		inv.PaymentNotes = utils.SanitizeOptional(req.PaymentNotes)
		if req.StripePaymentIntentID != nil {
			inv.StripePaymentIntentID = req.StripePaymentIntentID
		}
		inv.PaidAt = &now
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Payment recorded",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("method", string(method)),
		zap.String("amount", inv.TotalAmount.StringFixed(2)),
		zap.String("recorded_by", actor.UserID.String()),
		zap.String("event", "invoice_paid"),
	)
	return ToInvoiceResponse(inv), nil
}

func (s *Service) Send(ctx context.Context, actor authz.Principal, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.transition(ctx, invoiceID, domainInvoice.StatusSent, nil)
	if err != nil {
		return nil, err
	}
	logger.Info("Invoice sent",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("sent_by", actor.UserID.String()),
		zap.String("event", "invoice_sent"),
	)
	return ToInvoiceResponse(inv), nil
}

func (s *Service) Void(ctx context.Context, actor authz.Principal, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.transition(ctx, invoiceID, domainInvoice.StatusVoid, nil)
	if err != nil {
		return nil, err
	}
	logger.Info("Invoice voided",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("voided_by", actor.UserID.String()),
		zap.String("event", "invoice_voided"),
	)
	return ToInvoiceResponse(inv), nil
}

func (s *Service) transition(ctx context.Context, invoiceID uuid.UUID, to domainInvoice.Status, fn func(*domainInvoice.Invoice)) (*domainInvoice.Invoice, error) {
	var inv *domainInvoice.Invoice
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		if inv, err = repos.Invoices.GetForUpdate(ctx, invoiceID); err != nil {
			return err
		}
		if err := domainInvoice.ValidateTransition(inv.Status, to); err != nil {
			return err
		}
		inv.Status = to
		if fn != nil {
			fn(inv)
		}
		return repos.Invoices.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) Get(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return ToInvoiceResponse(inv), nil
}

func (s *Service) GetByJob(ctx context.Context, jobID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.GetByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return ToInvoiceResponse(inv), nil
}

func (s *Service) List(ctx context.Context, req *ListInvoicesRequest) (*utils.PagedData, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	filter := &domainInvoice.Filter{JobID: req.JobID, Page: req.Page, PageSize: req.PageSize}
	if req.Status != nil {
		status := domainInvoice.Status(*req.Status)
		filter.Status = &status
	}

	invoices, total, err := s.invoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		items[i] = ToInvoiceResponse(inv)
	}
	page, pageSize := utils.PageOrDefault(req.Page, req.PageSize)
	return &utils.PagedData{Items: items, Meta: utils.NewPageMeta(page, pageSize, total)}, nil
}

func (s *Service) CreateTaxRule(ctx context.Context, req *CreateTaxRuleRequest) (*TaxRuleResponse, error) {
	req.RegionCode = utils.NormalizeRegion(req.RegionCode)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}
	if err := validateRate(req.Rate); err != nil {
		return nil, err
	}

	rule := &domainInvoice.TaxRule{
		RegionCode: req.RegionCode,
		TaxName:    utils.SanitizeString(req.TaxName),
		Rate:       req.Rate,
		IsActive:   req.IsActive == nil || *req.IsActive,
	}
	if err := s.taxRuleRepo.Create(ctx, rule); err != nil {
		return nil, err
	}

	logger.Info("Tax rule created",
		zap.String("region", rule.RegionCode),
		zap.String("rate", rule.Rate.String()),
		zap.String("event", "tax_rule_created"),
	)
	return ToTaxRuleResponse(rule), nil
}

// UpdateTaxRule changes a rule for future invoices only; drafted invoices
// keep their snapshot.
func (s *Service) UpdateTaxRule(ctx context.Context, ruleID uuid.UUID, req *UpdateTaxRuleRequest) (*TaxRuleResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	rule, err := s.taxRuleRepo.GetByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	if req.TaxName != nil {
		rule.TaxName = utils.SanitizeString(*req.TaxName)
	}
	if req.Rate != nil {
		if err := validateRate(*req.Rate); err != nil {
			return nil, err
		}
		rule.Rate = *req.Rate
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	if err := s.taxRuleRepo.Update(ctx, rule); err != nil {
		return nil, err
	}
	return ToTaxRuleResponse(rule), nil
}

func (s *Service) ListTaxRules(ctx context.Context) ([]*TaxRuleResponse, error) {
	rules, err := s.taxRuleRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]*TaxRuleResponse, len(rules))
	for i, r := range rules {
		items[i] = ToTaxRuleResponse(r)
	}
	return items, nil
}

func validateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(maxTaxRate) {
		return appErrors.Validation("rate must be between 0 and 1", nil)
	}
	if !rate.Equal(rate.Round(4)) {
		return appErrors.Validation("rate supports at most 4 decimal places", nil)
	}
	return nil
}
