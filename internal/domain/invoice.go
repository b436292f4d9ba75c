package domain

import (
	"context"
	"time"
)

type InvoiceStatus string

const (
	InvoiceStatusUnpaid InvoiceStatus = "Unpaid"
	InvoiceStatusPaid   InvoiceStatus = "Paid"
)

type Invoice struct {
	ID          int64         `json:"id"`
	LeaseID     int64         `json:"lease_id"`
	PeriodStart string        `json:"period_start"`
	PeriodEnd   string        `json:"period_end"`
	AmountCents int64         `json:"amount_cents"`
	Status      InvoiceStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewInvoice creates an Unpaid invoice for a billing period.
func NewInvoice(leaseID int64, periodStart, periodEnd string, amountCents int64) (*Invoice, error) {
	now := time.Now()
	inv := &Invoice{
		LeaseID:     leaseID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		AmountCents: amountCents,
		Status:      InvoiceStatusUnpaid,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	return inv, nil
}

func (i *Invoice) Validate() error {
	if i.LeaseID <= 0 {
		return Invalid("lease_id", "is required")
	}
	if i.AmountCents <= 0 {
		return Invalid("amount_cents", "must be positive")
	}
	return ValidatePeriod("period_start", i.PeriodStart, "period_end", i.PeriodEnd)
}

type InvoiceFilter struct {
	Scope   Scope
	LeaseID int64
	Status  InvoiceStatus
}

type InvoiceRepository interface {
	Create(ctx context.Context, i *Invoice) error
	GetByID(ctx context.Context, id int64) (*Invoice, error)
	// Update writes period and amount. Status is only changed by settlement.
	Update(ctx context.Context, i *Invoice) error
	// Delete fails with ErrConflict while a receipt references the invoice.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f InvoiceFilter, page Page) ([]*Invoice, int64, error)
}
