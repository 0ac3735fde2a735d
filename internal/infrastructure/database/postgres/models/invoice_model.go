package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// InvoiceModel represents the database model for Invoices
type InvoiceModel struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	JobID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Status string    `gorm:"type:varchar(10);not null;default:'DRAFT';index"`

	Subtotal       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TaxAmount      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TaxRuleApplied datatypes.JSON  `gorm:"type:jsonb"`

	DueDate time.Time `gorm:"type:date;not null"`

	PaymentMethod         string     `gorm:"type:varchar(20);not null;default:'NOT_PAID'"`
	PaymentNotes          *string    `gorm:"type:text"`
	StripePaymentIntentID *string    `gorm:"type:varchar(255)"`
	PaidAt                *time.Time `gorm:"type:timestamptz"`

	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`

	Job *JobModel `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
}

func (InvoiceModel) TableName() string {
	return "invoices"
}

// TaxRuleModel represents the database model for region tax rules
type TaxRuleModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	RegionCode string          `gorm:"type:varchar(10);not null;uniqueIndex"`
	TaxName    string          `gorm:"type:varchar(50);not null"`
	Rate       decimal.Decimal `gorm:"type:numeric(5,4);not null"`
	IsActive   bool            `gorm:"default:true;not null"`
	CreatedAt  time.Time       `gorm:"not null"`
	UpdatedAt  time.Time       `gorm:"not null"`
}

func (TaxRuleModel) TableName() string {
	return "tax_rules"
}
