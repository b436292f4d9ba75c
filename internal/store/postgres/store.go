package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/leasedesk/internal/domain"
)

type Store struct {
	pool         *pgxpool.Pool
	users        *UserRepo
	properties   *PropertyRepo
	units        *UnitRepo
	leases       *LeaseRepo
	payments     *PaymentRepo
	invoices     *InvoiceRepo
	receipts     *ReceiptRepo
	audit        *AuditRepo
	integrations *IntegrationRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:       pool,
		users:      NewUserRepo(pool),
		properties: NewPropertyRepo(pool),
		units:      NewUnitRepo(pool),
		leases:     NewLeaseRepo(pool),
		payments:   NewPaymentRepo(pool),
		invoices:   NewInvoiceRepo(pool),
		receipts:   NewReceiptRepo(pool),
		audit:      NewAuditRepo(pool),

		integrations: NewIntegrationRepo(pool),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres.Ping: %w", err)
	}
	return nil
}

func (s *Store) Users() domain.UserRepository          { return s.users }
func (s *Store) Properties() domain.PropertyRepository { return s.properties }
func (s *Store) Units() domain.UnitRepository          { return s.units }
func (s *Store) Leases() domain.LeaseRepository        { return s.leases }
func (s *Store) Payments() domain.PaymentRepository    { return s.payments }
func (s *Store) Invoices() domain.InvoiceRepository    { return s.invoices }
func (s *Store) Receipts() domain.ReceiptRepository    { return s.receipts }
func (s *Store) Audit() domain.AuditRepository         { return s.audit }
func (s *Store) Integrations() domain.IntegrationRepository {
	return s.integrations
}

// statTables are the tables reported by Stats.
var statTables = []string{"users", "properties", "units", "leases", "payments", "invoices", "receipts", "audit_log", "integrations"}

// Stats reports applied migrations and row counts per table.
func (s *Store) Stats(ctx context.Context) (*domain.StoreStats, error) {
	stats := &domain.StoreStats{Driver: "postgres", Counts: make(map[string]int64, len(statTables))}

	applied, err := s.AppliedMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres.Stats: %w", err)
	}
	stats.Migrations = len(applied)

	for _, table := range statTables {
		// Table names come from the fixed list above.
		n, err := count(ctx, s.pool, table, &where{})
		if err != nil {
			return nil, fmt.Errorf("postgres.Stats: count %s: %w", table, err)
		}
		stats.Counts[table] = n
	}

	return stats, nil
}
