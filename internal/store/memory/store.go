// Package memory is an in-process implementation of the domain
// repositories. It mirrors the Postgres store's semantics, including the
// conditional invoice settlement, and is used by tests and local runs.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/gosuda/leasedesk/internal/domain"
)

// Store holds every table behind one mutex. Records are copied on the way
// in and out so callers never share memory with the store.
type Store struct {
	mu sync.Mutex

	seq map[string]int64

	users      map[int64]*domain.User
	properties map[int64]*domain.Property
	units      map[int64]*domain.Unit
	leases     map[int64]*domain.Lease
	payments   map[int64]*domain.Payment
	invoices   map[int64]*domain.Invoice
	receipts   map[int64]*domain.Receipt
	audit      map[int64]*domain.AuditEntry

	integrations map[int64]*domain.Integration
}

func New() *Store {
	return &Store{
		seq:        make(map[string]int64),
		users:      make(map[int64]*domain.User),
		properties: make(map[int64]*domain.Property),
		units:      make(map[int64]*domain.Unit),
		leases:     make(map[int64]*domain.Lease),
		payments:   make(map[int64]*domain.Payment),
		invoices:   make(map[int64]*domain.Invoice),
		receipts:   make(map[int64]*domain.Receipt),
		audit:      make(map[int64]*domain.AuditEntry),

		integrations: make(map[int64]*domain.Integration),
	}
}

func (s *Store) Users() domain.UserRepository          { return &userRepo{s} }
func (s *Store) Properties() domain.PropertyRepository { return &propertyRepo{s} }
func (s *Store) Units() domain.UnitRepository          { return &unitRepo{s} }
func (s *Store) Leases() domain.LeaseRepository        { return &leaseRepo{s} }
func (s *Store) Payments() domain.PaymentRepository    { return &paymentRepo{s} }
func (s *Store) Invoices() domain.InvoiceRepository    { return &invoiceRepo{s} }
func (s *Store) Receipts() domain.ReceiptRepository    { return &receiptRepo{s} }
func (s *Store) Audit() domain.AuditRepository         { return &auditRepo{s} }
func (s *Store) Integrations() domain.IntegrationRepository {
	return &integrationRepo{s}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Stats reports row counts per table.
func (s *Store) Stats(context.Context) (*domain.StoreStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &domain.StoreStats{
		Driver: "memory",
		Counts: map[string]int64{
			"users":      int64(len(s.users)),
			"properties": int64(len(s.properties)),
			"units":      int64(len(s.units)),
			"leases":     int64(len(s.leases)),
			"payments":   int64(len(s.payments)),
			"invoices":   int64(len(s.invoices)),
			"receipts":   int64(len(s.receipts)),
			"audit_log":  int64(len(s.audit)),

			"integrations": int64(len(s.integrations)),
		},
	}, nil
}

// Close is a no-op.
func (s *Store) Close() {}

// nextID must be called with mu held.
func (s *Store) nextID(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

// tenantOf returns the tenant holding leaseID, or 0. Must be called with mu held.
func (s *Store) tenantOf(leaseID int64) int64 {
	if l, ok := s.leases[leaseID]; ok {
		return l.TenantID
	}
	return 0
}

// collect filters m, orders by id and slices out one page. Must be called
// with mu held.
func collect[T any](m map[int64]*T, keep func(*T) bool, page domain.Page) ([]*T, int64) {
	ids := make([]int64, 0, len(m))
	for id, v := range m {
		if keep(v) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	total := int64(len(ids))
	start := min(page.Offset(), len(ids))
	end := min(start+page.Limit(), len(ids))

	out := make([]*T, 0, end-start)
	for _, id := range ids[start:end] {
		v := *m[id]
		out = append(out, &v)
	}
	return out, total
}

func clone[T any](v *T) *T {
	c := *v
	return &c
}
