// Package app assembles repositories and services for one storage backend.
package app

import (
	"context"

	"logipro/internal/config"
	"logipro/internal/domain/address"
	"logipro/internal/domain/fleet"
	"logipro/internal/domain/identity"
	"logipro/internal/domain/invoice"
	"logipro/internal/domain/job"
	"logipro/internal/domain/quote"
	"logipro/internal/domain/shipment"
	"logipro/internal/domain/storage"
	"logipro/internal/domain/timeline"
	"logipro/internal/domain/tracking"
	"logipro/internal/domain/uow"
	"logipro/internal/domain/user"
	"logipro/internal/infrastructure/database/postgres"
	"logipro/internal/infrastructure/memory"
	addressUsecase "logipro/internal/usecase/address"
	fleetUsecase "logipro/internal/usecase/fleet"
	invoiceUsecase "logipro/internal/usecase/invoice"
	jobUsecase "logipro/internal/usecase/job"
	quoteUsecase "logipro/internal/usecase/quote"
	shipmentUsecase "logipro/internal/usecase/shipment"
	trackingUsecase "logipro/internal/usecase/tracking"
	userUsecase "logipro/internal/usecase/user"
)

// Backend is every repository the services need, plus the transaction
// manager and a readiness probe.
type Backend struct {
	Tx            uow.Manager
	Users         user.Repository
	RefreshTokens user.RefreshTokenRepository
	Jobs          job.Repository
	Shipments     shipment.Repository
	Invoices      invoice.Repository
	TaxRules      invoice.TaxRuleRepository
	Timeline      timeline.Repository
	Addresses     address.Repository
	Drivers       fleet.DriverRepository
	Vehicles      fleet.VehicleRepository
	QuoteRequests quote.RequestRepository
	Health        func(ctx context.Context) error
}

func NewPostgresBackend(db *postgres.DB) *Backend {
	return &Backend{
		Tx:            postgres.NewTxManager(db),
		Users:         postgres.NewUserRepository(db),
		RefreshTokens: postgres.NewRefreshTokenRepository(db),
		Jobs:          postgres.NewJobRepository(db),
		Shipments:     postgres.NewShipmentRepository(db),
		Invoices:      postgres.NewInvoiceRepository(db),
		TaxRules:      postgres.NewTaxRuleRepository(db),
		Timeline:      postgres.NewTimelineRepository(db),
		Addresses:     postgres.NewAddressRepository(db),
		Drivers:       postgres.NewDriverRepository(db),
		Vehicles:      postgres.NewVehicleRepository(db),
		QuoteRequests: postgres.NewQuoteRequestRepository(db),
		Health:        db.Health,
	}
}

// NewMemoryBackend runs the API without a database, for demos and tests.
func NewMemoryBackend(store *memory.Store) *Backend {
	return &Backend{
		Tx:            store,
		Users:         store.Users(),
		RefreshTokens: store.RefreshTokens(),
		Jobs:          store.Jobs(),
		Shipments:     store.Shipments(),
		Invoices:      store.Invoices(),
		TaxRules:      store.TaxRules(),
		Timeline:      store.Timeline(),
		Addresses:     store.Addresses(),
		Drivers:       store.Drivers(),
		Vehicles:      store.Vehicles(),
		QuoteRequests: store.QuoteRequests(),
		Health:        func(context.Context) error { return nil },
	}
}

type Services struct {
	Users     *userUsecase.Service
	Jobs      *jobUsecase.Service
	Shipments *shipmentUsecase.Service
	Invoices  *invoiceUsecase.Service
	Quotes    *quoteUsecase.Service
	Fleet     *fleetUsecase.Service
	Addresses *addressUsecase.Service
	Tracking  *trackingUsecase.Service
}

// Adapters are the outbound integrations shared by the services.
type Adapters struct {
	Verifier  identity.Verifier
	Blobs     storage.BlobStore
	Publisher tracking.Publisher
}

func NewServices(cfg *config.Config, b *Backend, a Adapters) *Services {
	return &Services{
		Users:     userUsecase.NewService(b.Users, b.RefreshTokens, a.Verifier, cfg),
		Jobs:      jobUsecase.NewService(b.Tx, b.Jobs, b.Shipments, b.Timeline, b.Drivers, b.Users, a.Publisher),
		Shipments: shipmentUsecase.NewService(b.Tx, b.Shipments, b.Drivers, b.Vehicles, a.Blobs, a.Publisher, cfg.Storage.PODMaxBytes),
		Invoices:  invoiceUsecase.NewService(b.Tx, b.Invoices, b.TaxRules),
		Quotes:    quoteUsecase.NewService(b.QuoteRequests),
		Fleet:     fleetUsecase.NewService(b.Drivers, b.Vehicles, b.Users),
		Addresses: addressUsecase.NewService(b.Tx, b.Addresses),
		Tracking:  trackingUsecase.NewService(b.Jobs, b.Shipments, b.Timeline, b.Drivers),
	}
}
