// Package uow defines the transaction boundary used by multi-aggregate
// writes such as the job creation cascade.
package uow

import (
	"context"

	"logipro/internal/domain/address"
	"logipro/internal/domain/invoice"
	"logipro/internal/domain/job"
	"logipro/internal/domain/shipment"
	"logipro/internal/domain/timeline"
)

// Repositories are bound to one transaction.
type Repositories struct {
	Jobs      job.Repository
	Shipments shipment.Repository
	Invoices  invoice.Repository
	TaxRules  invoice.TaxRuleRepository
	Timeline  timeline.Repository
	Addresses address.Repository
}

// Manager runs fn inside a single transaction. A returned error rolls back
// every write made through repos.
type Manager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
