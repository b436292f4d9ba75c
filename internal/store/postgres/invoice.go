package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/leasedesk/internal/domain"
)

const invoiceColumns = `id, lease_id, period_start, period_end, amount_cents, status, created_at, updated_at`

type InvoiceRepo struct {
	pool *pgxpool.Pool
}

func NewInvoiceRepo(pool *pgxpool.Pool) *InvoiceRepo {
	return &InvoiceRepo{pool: pool}
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var inv domain.Invoice
	var start, end time.Time
	if err := row.Scan(&inv.ID, &inv.LeaseID, &start, &end, &inv.AmountCents, &inv.Status,
		&inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return nil, err
	}
	inv.PeriodStart = formatDate(start)
	inv.PeriodEnd = formatDate(end)
	return &inv, nil
}

func invoicePeriod(inv *domain.Invoice) (start, end time.Time, err error) {
	if start, err = dateArg("period_start", inv.PeriodStart); err != nil {
		return
	}
	end, err = dateArg("period_end", inv.PeriodEnd)
	return
}

func (r *InvoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	start, end, err := invoicePeriod(inv)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Create: %w", err)
	}

	err = r.pool.QueryRow(ctx,
		`INSERT INTO invoices (lease_id, period_start, period_end, amount_cents, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		inv.LeaseID, start, end, inv.AmountCents, inv.Status, inv.CreatedAt, inv.UpdatedAt,
	).Scan(&inv.ID)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Create: %w", mapError(err))
	}

	return nil
}

func (r *InvoiceRepo) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	inv, err := scanInvoice(r.pool.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", err)
	}

	return inv, nil
}

// Update never writes status; the stored value is returned into inv.
func (r *InvoiceRepo) Update(ctx context.Context, inv *domain.Invoice) error {
	start, end, err := invoicePeriod(inv)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Update: %w", err)
	}

	err = r.pool.QueryRow(ctx,
		`UPDATE invoices SET lease_id = $1, period_start = $2, period_end = $3, amount_cents = $4, updated_at = now()
		 WHERE id = $5 AND status = 'Unpaid'
		 RETURNING status, updated_at`,
		inv.LeaseID, start, end, inv.AmountCents, inv.ID,
	).Scan(&inv.Status, &inv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Settled invoices are frozen; tell them apart from missing ones.
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE id = $1)`, inv.ID).Scan(&exists); err != nil {
			return fmt.Errorf("invoiceRepo.Update: %w", err)
		}
		if exists {
			return fmt.Errorf("invoiceRepo.Update: %w", domain.ErrAlreadySettled)
		}
		return fmt.Errorf("invoiceRepo.Update: %w", domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("invoiceRepo.Update: %w", mapError(err))
	}

	return nil
}

func (r *InvoiceRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Delete: %w", mapDeleteError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invoiceRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *InvoiceRepo) List(ctx context.Context, f domain.InvoiceFilter, page domain.Page) ([]*domain.Invoice, int64, error) {
	var w where
	if f.Scope.Restricted() {
		w.add(scopedLeases, f.Scope.TenantID)
	}
	if f.LeaseID != 0 {
		w.add("lease_id = $%d", f.LeaseID)
	}
	if f.Status != "" {
		w.add("status = $%d", f.Status)
	}

	total, err := count(ctx, r.pool, "invoices", &w)
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List: count: %w", err)
	}

	limit, args := w.page(page)
	rows, err := r.pool.Query(ctx,
		`SELECT `+invoiceColumns+` FROM invoices`+w.String()+` ORDER BY id`+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List: %w", err)
	}
	defer rows.Close()

	invoices := make([]*domain.Invoice, 0, page.Limit())
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("invoiceRepo.List: scan: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List: rows: %w", err)
	}

	return invoices, total, nil
}
