package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteRequestModel records each instant estimate for analytics.
type QuoteRequestModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Origin        string          `gorm:"type:varchar(255);not null"`
	Destination   string          `gorm:"type:varchar(255);not null"`
	PackageType   string          `gorm:"type:varchar(20);not null"`
	Weight        decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Price         decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	EstimatedDays string          `gorm:"type:varchar(10);not null"`
	Distance      int             `gorm:"type:integer;not null"`
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt     time.Time       `gorm:"not null;index"`
}

func (QuoteRequestModel) TableName() string {
	return "quote_requests"
}
