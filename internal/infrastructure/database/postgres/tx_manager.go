package postgres

import (
	"context"

	"gorm.io/gorm"

	"logipro/internal/domain/uow"
)

// TxManager implements uow.Manager on a GORM transaction.
type TxManager struct {
	db *DB
}

func NewTxManager(db *DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, repos uow.Repositories) error) error {
	return m.db.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, repositoriesFor(&DB{DB: tx}))
	})
}

func repositoriesFor(db *DB) uow.Repositories {
	return uow.Repositories{
		Jobs:      NewJobRepository(db),
		Shipments: NewShipmentRepository(db),
		Invoices:  NewInvoiceRepository(db),
		TaxRules:  NewTaxRuleRepository(db),
		Timeline:  NewTimelineRepository(db),
		Addresses: NewAddressRepository(db),
	}
}
