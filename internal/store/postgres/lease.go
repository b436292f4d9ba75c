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

const leaseColumns = `id, tenant_id, property_id, unit_id, start_date, end_date, rent_amount, status, created_at, updated_at`

type LeaseRepo struct {
	pool *pgxpool.Pool
}

func NewLeaseRepo(pool *pgxpool.Pool) *LeaseRepo {
	return &LeaseRepo{pool: pool}
}

func scanLease(row pgx.Row) (*domain.Lease, error) {
	var l domain.Lease
	var start, end time.Time
	if err := row.Scan(&l.ID, &l.TenantID, &l.PropertyID, &l.UnitID, &start, &end,
		&l.RentAmount, &l.Status, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.StartDate = formatDate(start)
	l.EndDate = formatDate(end)
	return &l, nil
}

func leaseDates(l *domain.Lease) (start, end time.Time, err error) {
	if start, err = dateArg("start_date", l.StartDate); err != nil {
		return
	}
	end, err = dateArg("end_date", l.EndDate)
	return
}

func (r *LeaseRepo) Create(ctx context.Context, l *domain.Lease) error {
	start, end, err := leaseDates(l)
	if err != nil {
		return fmt.Errorf("leaseRepo.Create: %w", err)
	}

	err = r.pool.QueryRow(ctx,
		`INSERT INTO leases (tenant_id, property_id, unit_id, start_date, end_date, rent_amount, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		l.TenantID, l.PropertyID, l.UnitID, start, end, l.RentAmount, l.Status, l.CreatedAt, l.UpdatedAt,
	).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("leaseRepo.Create: %w", mapError(err))
	}

	return nil
}

func (r *LeaseRepo) GetByID(ctx context.Context, id int64) (*domain.Lease, error) {
	l, err := scanLease(r.pool.QueryRow(ctx,
		`SELECT `+leaseColumns+` FROM leases WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("leaseRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("leaseRepo.GetByID: %w", err)
	}

	return l, nil
}

func (r *LeaseRepo) Update(ctx context.Context, l *domain.Lease) error {
	start, end, err := leaseDates(l)
	if err != nil {
		return fmt.Errorf("leaseRepo.Update: %w", err)
	}

	err = r.pool.QueryRow(ctx,
		`UPDATE leases SET tenant_id = $1, property_id = $2, unit_id = $3, start_date = $4, end_date = $5,
		        rent_amount = $6, status = $7, updated_at = now()
		 WHERE id = $8
		 RETURNING updated_at`,
		l.TenantID, l.PropertyID, l.UnitID, start, end, l.RentAmount, l.Status, l.ID,
	).Scan(&l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("leaseRepo.Update: %w", domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("leaseRepo.Update: %w", mapError(err))
	}

	return nil
}

func (r *LeaseRepo) List(ctx context.Context, f domain.LeaseFilter, page domain.Page) ([]*domain.Lease, int64, error) {
	var w where
	if f.Scope.Restricted() {
		w.add("tenant_id = $%d", f.Scope.TenantID)
	}
	if f.TenantID != 0 {
		w.add("tenant_id = $%d", f.TenantID)
	}
	if f.PropertyID != 0 {
		w.add("property_id = $%d", f.PropertyID)
	}
	if f.Status != "" {
		w.add("status = $%d", f.Status)
	}

	total, err := count(ctx, r.pool, "leases", &w)
	if err != nil {
		return nil, 0, fmt.Errorf("leaseRepo.List: count: %w", err)
	}

	limit, args := w.page(page)
	rows, err := r.pool.Query(ctx,
		`SELECT `+leaseColumns+` FROM leases`+w.String()+` ORDER BY id`+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("leaseRepo.List: %w", err)
	}
	defer rows.Close()

	leases := make([]*domain.Lease, 0, page.Limit())
	for rows.Next() {
		l, err := scanLease(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("leaseRepo.List: scan: %w", err)
		}
		leases = append(leases, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("leaseRepo.List: rows: %w", err)
	}

	return leases, total, nil
}

// DeleteCascade locks the lease row, removes receipts, invoices and payments
// hanging off it, then the lease itself, and writes the audit entry. All of
// it commits or none of it does.
func (r *LeaseRepo) DeleteCascade(ctx context.Context, id int64, audit *domain.AuditEntry) (*domain.LeaseDeletion, error) {
	del := &domain.LeaseDeletion{LeaseID: id}

	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var locked int64
		err := tx.QueryRow(ctx, `SELECT id FROM leases WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock lease: %w", err)
		}

		tag, err := tx.Exec(ctx,
			`DELETE FROM receipts
			 WHERE invoice_id IN (SELECT id FROM invoices WHERE lease_id = $1)
			    OR payment_id IN (SELECT id FROM payments WHERE lease_id = $1)`, id)
		if err != nil {
			return fmt.Errorf("delete receipts: %w", err)
		}
		del.Receipts = tag.RowsAffected()

		if tag, err = tx.Exec(ctx, `DELETE FROM invoices WHERE lease_id = $1`, id); err != nil {
			return fmt.Errorf("delete invoices: %w", err)
		}
		del.Invoices = tag.RowsAffected()

		if tag, err = tx.Exec(ctx, `DELETE FROM payments WHERE lease_id = $1`, id); err != nil {
			return fmt.Errorf("delete payments: %w", err)
		}
		del.Payments = tag.RowsAffected()

		if _, err = tx.Exec(ctx, `DELETE FROM leases WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete lease: %w", mapDeleteError(err))
		}

		if audit != nil {
			if audit.Details == nil {
				audit.Details = map[string]any{}
			}
			audit.Details["payments"] = del.Payments
			audit.Details["invoices"] = del.Invoices
			audit.Details["receipts"] = del.Receipts
			if err := insertAudit(ctx, tx, audit); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("leaseRepo.DeleteCascade: %w", err)
	}

	return del, nil
}
