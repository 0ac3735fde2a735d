package models

import (
	"time"

	"github.com/google/uuid"
)

type CustomerAddressModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index"`
	Label      string    `gorm:"type:varchar(20);not null;default:'HOME'"`
	Name       string    `gorm:"type:varchar(100);not null"`
	Address1   string    `gorm:"column:address1;type:varchar(255);not null"`
	Address2   *string   `gorm:"column:address2;type:varchar(255)"`
	City       string    `gorm:"type:varchar(100);not null"`
	State      string    `gorm:"type:varchar(50);not null"`
	ZipCode    string    `gorm:"type:varchar(20);not null"`
	Phone      *string   `gorm:"type:varchar(20)"`
	IsDefault  bool      `gorm:"default:false;not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`

	Customer *UserModel `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
}

func (CustomerAddressModel) TableName() string {
	return "customer_addresses"
}
