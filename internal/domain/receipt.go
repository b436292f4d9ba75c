package domain

import (
	"context"
	"time"
)

type Receipt struct {
	ID            int64     `json:"id"`
	InvoiceID     int64     `json:"invoice_id"`
	PaymentID     int64     `json:"payment_id"`
	AmountCents   int64     `json:"amount_cents"`
	ReceiptNumber string    `json:"receipt_number"`
	CreatedAt     time.Time `json:"created_at"`
}

type ReceiptFilter struct {
	Scope     Scope
	InvoiceID int64
	PaymentID int64
}

type ReceiptRepository interface {
	// Settle marks the receipt's invoice Paid and inserts the receipt as one
	// transaction. The invoice update is conditional on status Unpaid; when
	// it matches no row the call fails with ErrAlreadySettled (or ErrNotFound
	// for a missing invoice) and nothing is written.
	Settle(ctx context.Context, r *Receipt) error
	// Void deletes the receipt, returns its invoice to Unpaid and records
	// audit, all in one transaction.
	Void(ctx context.Context, id int64, audit *AuditEntry) (*Receipt, error)
	GetByID(ctx context.Context, id int64) (*Receipt, error)
	List(ctx context.Context, f ReceiptFilter, page Page) ([]*Receipt, int64, error)
}
