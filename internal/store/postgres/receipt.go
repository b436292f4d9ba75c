package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/leasedesk/internal/domain"
)

const receiptColumns = `id, invoice_id, payment_id, amount_cents, receipt_number, created_at`

type ReceiptRepo struct {
	pool *pgxpool.Pool
}

func NewReceiptRepo(pool *pgxpool.Pool) *ReceiptRepo {
	return &ReceiptRepo{pool: pool}
}

func scanReceipt(row pgx.Row) (*domain.Receipt, error) {
	var rc domain.Receipt
	if err := row.Scan(&rc.ID, &rc.InvoiceID, &rc.PaymentID, &rc.AmountCents, &rc.ReceiptNumber, &rc.CreatedAt); err != nil {
		return nil, err
	}
	return &rc, nil
}

// Settle performs the guarded Unpaid->Paid transition and the receipt insert
// in one transaction. A concurrent settlement of the same invoice blocks on
// the row lock taken by the UPDATE and then matches zero rows.
func (r *ReceiptRepo) Settle(ctx context.Context, rc *domain.Receipt) error {
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE invoices SET status = 'Paid', updated_at = now()
			 WHERE id = $1 AND status = 'Unpaid'`, rc.InvoiceID)
		if err != nil {
			return fmt.Errorf("settle invoice: %w", err)
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM invoices WHERE id = $1)`, rc.InvoiceID,
			).Scan(&exists); err != nil {
				return fmt.Errorf("check invoice: %w", err)
			}
			if !exists {
				return fmt.Errorf("invoice: %w", domain.ErrNotFound)
			}
			return domain.ErrAlreadySettled
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO receipts (invoice_id, payment_id, amount_cents, receipt_number, created_at)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			rc.InvoiceID, rc.PaymentID, rc.AmountCents, rc.ReceiptNumber, rc.CreatedAt,
		).Scan(&rc.ID)
		if err != nil {
			return fmt.Errorf("insert receipt: %w", mapError(err))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("receiptRepo.Settle: %w", err)
	}

	return nil
}

func (r *ReceiptRepo) Void(ctx context.Context, id int64, audit *domain.AuditEntry) (*domain.Receipt, error) {
	var voided *domain.Receipt

	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		rc, err := scanReceipt(tx.QueryRow(ctx,
			`DELETE FROM receipts WHERE id = $1 RETURNING `+receiptColumns, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("delete receipt: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE invoices SET status = 'Unpaid', updated_at = now() WHERE id = $1`, rc.InvoiceID,
		); err != nil {
			return fmt.Errorf("reopen invoice: %w", err)
		}

		if audit != nil {
			if err := insertAudit(ctx, tx, audit); err != nil {
				return err
			}
		}

		voided = rc
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("receiptRepo.Void: %w", err)
	}

	return voided, nil
}

func (r *ReceiptRepo) GetByID(ctx context.Context, id int64) (*domain.Receipt, error) {
	rc, err := scanReceipt(r.pool.QueryRow(ctx,
		`SELECT `+receiptColumns+` FROM receipts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("receiptRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("receiptRepo.GetByID: %w", err)
	}

	return rc, nil
}

func (r *ReceiptRepo) List(ctx context.Context, f domain.ReceiptFilter, page domain.Page) ([]*domain.Receipt, int64, error) {
	var w where
	if f.Scope.Restricted() {
		w.add(`invoice_id IN (SELECT i.id FROM invoices i JOIN leases l ON l.id = i.lease_id WHERE l.tenant_id = $%d)`,
			f.Scope.TenantID)
	}
	if f.InvoiceID != 0 {
		w.add("invoice_id = $%d", f.InvoiceID)
	}
	if f.PaymentID != 0 {
		w.add("payment_id = $%d", f.PaymentID)
	}

	total, err := count(ctx, r.pool, "receipts", &w)
	if err != nil {
		return nil, 0, fmt.Errorf("receiptRepo.List: count: %w", err)
	}

	limit, args := w.page(page)
	rows, err := r.pool.Query(ctx,
		`SELECT `+receiptColumns+` FROM receipts`+w.String()+` ORDER BY id`+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("receiptRepo.List: %w", err)
	}
	defer rows.Close()

	receipts := make([]*domain.Receipt, 0, page.Limit())
	for rows.Next() {
		rc, err := scanReceipt(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("receiptRepo.List: scan: %w", err)
		}
		receipts = append(receipts, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("receiptRepo.List: rows: %w", err)
	}

	return receipts, total, nil
}
