package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/leasedesk/internal/domain"
)

const paymentColumns = `id, lease_id, amount, method, note, created_at`

// scopedLeases restricts a lease_id column to leases held by one tenant.
const scopedLeases = "lease_id IN (SELECT id FROM leases WHERE tenant_id = $%d)"

type PaymentRepo struct {
	pool *pgxpool.Pool
}

func NewPaymentRepo(pool *pgxpool.Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	if err := row.Scan(&p.ID, &p.LeaseID, &p.Amount, &p.Method, &p.Note, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO payments (lease_id, amount, method, note, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		p.LeaseID, p.Amount, p.Method, p.Note, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("paymentRepo.Create: %w", mapError(err))
	}

	return nil
}

func (r *PaymentRepo) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	p, err := scanPayment(r.pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("paymentRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("paymentRepo.GetByID: %w", err)
	}

	return p, nil
}

func (r *PaymentRepo) Update(ctx context.Context, p *domain.Payment) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payments SET lease_id = $1, amount = $2, method = $3, note = $4
		 WHERE id = $5`,
		p.LeaseID, p.Amount, p.Method, p.Note, p.ID,
	)
	if err != nil {
		return fmt.Errorf("paymentRepo.Update: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("paymentRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

// Delete fails with ErrConflict while a receipt references the payment
// (receipts.payment_id is ON DELETE RESTRICT).
func (r *PaymentRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("paymentRepo.Delete: %w", mapDeleteError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("paymentRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *PaymentRepo) List(ctx context.Context, f domain.PaymentFilter, page domain.Page) ([]*domain.Payment, int64, error) {
	var w where
	if f.Scope.Restricted() {
		w.add(scopedLeases, f.Scope.TenantID)
	}
	if f.LeaseID != 0 {
		w.add("lease_id = $%d", f.LeaseID)
	}

	total, err := count(ctx, r.pool, "payments", &w)
	if err != nil {
		return nil, 0, fmt.Errorf("paymentRepo.List: count: %w", err)
	}

	limit, args := w.page(page)
	rows, err := r.pool.Query(ctx,
		`SELECT `+paymentColumns+` FROM payments`+w.String()+` ORDER BY id`+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("paymentRepo.List: %w", err)
	}
	defer rows.Close()

	payments, err := collectPayments(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("paymentRepo.List: %w", err)
	}

	return payments, total, nil
}

func (r *PaymentRepo) ListByLease(ctx context.Context, leaseID int64) ([]*domain.Payment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE lease_id = $1 ORDER BY id`, leaseID)
	if err != nil {
		return nil, fmt.Errorf("paymentRepo.ListByLease: %w", err)
	}
	defer rows.Close()

	payments, err := collectPayments(rows)
	if err != nil {
		return nil, fmt.Errorf("paymentRepo.ListByLease: %w", err)
	}

	return payments, nil
}

func collectPayments(rows pgx.Rows) ([]*domain.Payment, error) {
	payments := []*domain.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return payments, nil
}
