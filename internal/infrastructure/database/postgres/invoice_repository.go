package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"logipro/internal/domain/invoice"
	"logipro/internal/infrastructure/database/postgres/models"
)

type InvoiceRepository struct {
	db *DB
}

func NewInvoiceRepository(db *DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	now := time.Now()
	inv.ID = uuid.New()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	dbModel, err := toInvoiceModel(inv)
	if err != nil {
		return err
	}
	if err := r.db.conn(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	return nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, invoiceID uuid.UUID) (*invoice.Invoice, error) {
	return r.first(r.db.conn(ctx), "id = ?", invoiceID)
}

func (r *InvoiceRepository) GetForUpdate(ctx context.Context, invoiceID uuid.UUID) (*invoice.Invoice, error) {
	return r.first(r.db.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", invoiceID)
}

func (r *InvoiceRepository) GetByJobID(ctx context.Context, jobID uuid.UUID) (*invoice.Invoice, error) {
	return r.first(r.db.conn(ctx), "job_id = ?", jobID)
}

func (r *InvoiceRepository) first(db *gorm.DB, query string, args ...interface{}) (*invoice.Invoice, error) {
	var dbModel models.InvoiceModel
	err := db.Where(query, args...).First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invoice.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	return toInvoiceEntity(&dbModel)
}

// Update persists status and payment fields. Amounts and the tax snapshot
// are fixed at draft time.
func (r *InvoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	inv.UpdatedAt = time.Now()

	result := r.db.conn(ctx).Model(&models.InvoiceModel{}).
		Where("id = ?", inv.ID).
		Updates(map[string]interface{}{
			"status":                   string(inv.Status),
			"payment_method":           string(inv.PaymentMethod),
			"payment_notes":            inv.PaymentNotes,
			"stripe_payment_intent_id": inv.StripePaymentIntentID,
			"paid_at":                  inv.PaidAt,
			"updated_at":               inv.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update invoice: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return invoice.ErrInvoiceNotFound
	}

	return nil
}

func (r *InvoiceRepository) List(ctx context.Context, filter *invoice.Filter) ([]*invoice.Invoice, int64, error) {
	var dbModels []models.InvoiceModel
	var total int64

	db := r.db.conn(ctx).Model(&models.InvoiceModel{})
	if filter.Status != nil {
		db = db.Where("status = ?", string(*filter.Status))
	}
	if filter.JobID != nil {
		db = db.Where("job_id = ?", *filter.JobID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	err := db.Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&dbModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}

	invoices := make([]*invoice.Invoice, len(dbModels))
	for i := range dbModels {
		inv, err := toInvoiceEntity(&dbModels[i])
		if err != nil {
			return nil, 0, err
		}
		invoices[i] = inv
	}

	return invoices, total, nil
}

func toInvoiceModel(inv *invoice.Invoice) (*models.InvoiceModel, error) {
	m := &models.InvoiceModel{
		ID:                    inv.ID,
		JobID:                 inv.JobID,
		Status:                string(inv.Status),
		Subtotal:              inv.Subtotal,
		TaxAmount:             inv.TaxAmount,
		TotalAmount:           inv.TotalAmount,
		DueDate:               inv.DueDate,
		PaymentMethod:         string(inv.PaymentMethod),
		PaymentNotes:          inv.PaymentNotes,
		StripePaymentIntentID: inv.StripePaymentIntentID,
		PaidAt:                inv.PaidAt,
		CreatedAt:             inv.CreatedAt,
		UpdatedAt:             inv.UpdatedAt,
	}
	if inv.TaxRuleApplied != nil {
		raw, err := json.Marshal(inv.TaxRuleApplied)
		if err != nil {
			return nil, fmt.Errorf("failed to encode tax snapshot: %w", err)
		}
		m.TaxRuleApplied = datatypes.JSON(raw)
	}
	return m, nil
}

func toInvoiceEntity(m *models.InvoiceModel) (*invoice.Invoice, error) {
	inv := &invoice.Invoice{
		ID:                    m.ID,
		JobID:                 m.JobID,
		Status:                invoice.Status(m.Status),
		Subtotal:              m.Subtotal,
		TaxAmount:             m.TaxAmount,
		TotalAmount:           m.TotalAmount,
		DueDate:               m.DueDate,
		PaymentMethod:         invoice.PaymentMethod(m.PaymentMethod),
		PaymentNotes:          m.PaymentNotes,
		StripePaymentIntentID: m.StripePaymentIntentID,
		PaidAt:                m.PaidAt,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
	if len(m.TaxRuleApplied) > 0 && string(m.TaxRuleApplied) != "null" {
		var snapshot invoice.TaxSnapshot
		if err := json.Unmarshal(m.TaxRuleApplied, &snapshot); err != nil {
			return nil, fmt.Errorf("failed to decode tax snapshot: %w", err)
		}
		inv.TaxRuleApplied = &snapshot
	}
	return inv, nil
}

type TaxRuleRepository struct {
	db *DB
}

func NewTaxRuleRepository(db *DB) *TaxRuleRepository {
	return &TaxRuleRepository{db: db}
}

func (r *TaxRuleRepository) Create(ctx context.Context, rule *invoice.TaxRule) error {
	now := time.Now()
	rule.ID = uuid.New()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	if err := r.db.conn(ctx).Create(toTaxRuleModel(rule)).Error; err != nil {
		if isUniqueViolation(err, "region_code") {
			return invoice.ErrDuplicateRegion
		}
		return fmt.Errorf("failed to create tax rule: %w", err)
	}
	return nil
}

func (r *TaxRuleRepository) GetByID(ctx context.Context, ruleID uuid.UUID) (*invoice.TaxRule, error) {
	var dbModel models.TaxRuleModel
	err := r.db.conn(ctx).Where("id = ?", ruleID).First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invoice.ErrTaxRuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tax rule: %w", err)
	}
	return toTaxRuleEntity(&dbModel), nil
}

func (r *TaxRuleRepository) FindActive(ctx context.Context, regionCode string) (*invoice.TaxRule, error) {
	if regionCode == "" {
		return nil, nil
	}

	var dbModel models.TaxRuleModel
	err := r.db.conn(ctx).
		Where("region_code = ? AND is_active", regionCode).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tax rule: %w", err)
	}
	return toTaxRuleEntity(&dbModel), nil
}

func (r *TaxRuleRepository) Update(ctx context.Context, rule *invoice.TaxRule) error {
	rule.UpdatedAt = time.Now()

	result := r.db.conn(ctx).Model(&models.TaxRuleModel{}).
		Where("id = ?", rule.ID).
		Updates(map[string]interface{}{
			"region_code": rule.RegionCode,
			"tax_name":    rule.TaxName,
			"rate":        rule.Rate,
			"is_active":   rule.IsActive,
			"updated_at":  rule.UpdatedAt,
		})

	if result.Error != nil {
		if isUniqueViolation(result.Error, "region_code") {
			return invoice.ErrDuplicateRegion
		}
		return fmt.Errorf("failed to update tax rule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return invoice.ErrTaxRuleNotFound
	}
	return nil
}

func (r *TaxRuleRepository) List(ctx context.Context) ([]*invoice.TaxRule, error) {
	var dbModels []models.TaxRuleModel
	if err := r.db.conn(ctx).Order("region_code ASC").Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list tax rules: %w", err)
	}

	rules := make([]*invoice.TaxRule, len(dbModels))
	for i := range dbModels {
		rules[i] = toTaxRuleEntity(&dbModels[i])
	}
	return rules, nil
}

func toTaxRuleModel(rule *invoice.TaxRule) *models.TaxRuleModel {
	return &models.TaxRuleModel{
		ID:         rule.ID,
		RegionCode: rule.RegionCode,
		TaxName:    rule.TaxName,
		Rate:       rule.Rate,
		IsActive:   rule.IsActive,
		CreatedAt:  rule.CreatedAt,
		UpdatedAt:  rule.UpdatedAt,
	}
}

func toTaxRuleEntity(m *models.TaxRuleModel) *invoice.TaxRule {
	return &invoice.TaxRule{
		ID:         m.ID,
		RegionCode: m.RegionCode,
		TaxName:    m.TaxName,
		Rate:       m.Rate,
		IsActive:   m.IsActive,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
