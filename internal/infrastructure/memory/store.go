// Package memory is a process-local implementation of every repository and
// of uow.Manager. It backs STORE_DRIVER=memory and the usecase tests.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"logipro/internal/domain/address"
	"logipro/internal/domain/fleet"
	"logipro/internal/domain/invoice"
	"logipro/internal/domain/job"
	"logipro/internal/domain/quote"
	"logipro/internal/domain/shipment"
	"logipro/internal/domain/timeline"
	"logipro/internal/domain/uow"
	"logipro/internal/domain/user"
	"logipro/pkg/utils"
)

type state struct {
	users     map[uuid.UUID]user.User
	tokens    map[uuid.UUID]user.RefreshToken
	jobs      map[uuid.UUID]job.Job
	shipments map[uuid.UUID]shipment.Shipment
	invoices  map[uuid.UUID]invoice.Invoice
	taxRules  map[uuid.UUID]invoice.TaxRule
	timeline  []timeline.Entry
	addresses map[uuid.UUID]address.Address
	drivers   map[uuid.UUID]fleet.Driver
	vehicles  map[uuid.UUID]fleet.Vehicle
	quotes    []quote.Request
}

func newState() *state {
	return &state{
		users:     map[uuid.UUID]user.User{},
		tokens:    map[uuid.UUID]user.RefreshToken{},
		jobs:      map[uuid.UUID]job.Job{},
		shipments: map[uuid.UUID]shipment.Shipment{},
		invoices:  map[uuid.UUID]invoice.Invoice{},
		taxRules:  map[uuid.UUID]invoice.TaxRule{},
		addresses: map[uuid.UUID]address.Address{},
		drivers:   map[uuid.UUID]fleet.Driver{},
		vehicles:  map[uuid.UUID]fleet.Vehicle{},
	}
}

func (s *state) clone() *state {
	return &state{
		users:     maps.Clone(s.users),
		tokens:    maps.Clone(s.tokens),
		jobs:      maps.Clone(s.jobs),
		shipments: maps.Clone(s.shipments),
		invoices:  maps.Clone(s.invoices),
		taxRules:  maps.Clone(s.taxRules),
		timeline:  slices.Clone(s.timeline),
		addresses: maps.Clone(s.addresses),
		drivers:   maps.Clone(s.drivers),
		vehicles:  maps.Clone(s.vehicles),
		quotes:    slices.Clone(s.quotes),
	}
}

// view gives a repository access to a state: the committed one under the
// store lock, or a transaction's private copy.
type view interface {
	do(fn func(st *state) error) error
}

// Store holds all data behind one mutex. Transactions run one at a time on
// a copy of the state that replaces the committed state only when fn
// succeeds. Repositories obtained from the Store must not be used inside a
// WithinTx callback; use the ones passed to it.
type Store struct {
	mu      sync.Mutex
	st      *state
	nextJob atomic.Int64
}

func NewStore() *Store {
	s := &Store{st: newState()}
	s.nextJob.Store(job.FirstJobNumber - 1)
	return s
}

func (s *Store) do(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// WithinTx implements uow.Manager.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos uow.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txView{st: s.st.clone()}
	if err := fn(ctx, s.repositories(tx)); err != nil {
		return err
	}
	s.st = tx.st
	return nil
}

type txView struct {
	st *state
}

func (t *txView) do(fn func(st *state) error) error {
	return fn(t.st)
}

func (s *Store) repositories(v view) uow.Repositories {
	return uow.Repositories{
		Jobs:      &JobRepository{v: v, seq: &s.nextJob},
		Shipments: &ShipmentRepository{v: v},
		Invoices:  &InvoiceRepository{v: v},
		TaxRules:  &TaxRuleRepository{v: v},
		Timeline:  &TimelineRepository{v: v},
		Addresses: &AddressRepository{v: v},
	}
}

func (s *Store) Users() *UserRepository                 { return &UserRepository{v: s} }
func (s *Store) RefreshTokens() *RefreshTokenRepository { return &RefreshTokenRepository{v: s} }
func (s *Store) Jobs() *JobRepository                   { return &JobRepository{v: s, seq: &s.nextJob} }
func (s *Store) Shipments() *ShipmentRepository         { return &ShipmentRepository{v: s} }
func (s *Store) Invoices() *InvoiceRepository           { return &InvoiceRepository{v: s} }
func (s *Store) TaxRules() *TaxRuleRepository           { return &TaxRuleRepository{v: s} }
func (s *Store) Timeline() *TimelineRepository          { return &TimelineRepository{v: s} }
func (s *Store) Addresses() *AddressRepository          { return &AddressRepository{v: s} }
func (s *Store) Drivers() *DriverRepository             { return &DriverRepository{v: s} }
func (s *Store) Vehicles() *VehicleRepository           { return &VehicleRepository{v: s} }
func (s *Store) QuoteRequests() *QuoteRequestRepository { return &QuoteRequestRepository{v: s} }

// paginate mirrors the SQL repositories: default page size 20, capped at 100.
func paginate[T any](items []T, page, pageSize int) []T {
	page, pageSize = utils.PageOrDefault(page, pageSize)
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := min(start+pageSize, len(items))
	return items[start:end]
}

func sortNewestFirst[T any](items []T, created func(T) time.Time) {
	slices.SortStableFunc(items, func(a, b T) int {
		return created(b).Compare(created(a))
	})
}
