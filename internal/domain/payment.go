package domain

import (
	"context"
	"strings"
	"time"
)

const DefaultPaymentMethod = "cash"

type Payment struct {
	ID        int64     `json:"id"`
	LeaseID   int64     `json:"lease_id"`
	Amount    int64     `json:"amount"` // cents
	Method    string    `json:"method"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// NewPayment creates a Payment. Amount must be positive.
func NewPayment(leaseID, amount int64, method, note string) (*Payment, error) {
	method = strings.TrimSpace(method)
	if method == "" {
		method = DefaultPaymentMethod
	}
	p := &Payment{
		LeaseID:   leaseID,
		Amount:    amount,
		Method:    method,
		Note:      strings.TrimSpace(note),
		CreatedAt: time.Now(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Payment) Validate() error {
	if p.LeaseID <= 0 {
		return Invalid("lease_id", "is required")
	}
	if p.Amount <= 0 {
		return Invalid("amount", "must be positive")
	}
	return nil
}

type PaymentFilter struct {
	Scope   Scope
	LeaseID int64
}

type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id int64) (*Payment, error)
	Update(ctx context.Context, p *Payment) error
	// Delete fails with ErrConflict while a receipt references the payment.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f PaymentFilter, page Page) ([]*Payment, int64, error)
	// ListByLease returns every payment ever recorded for the lease.
	ListByLease(ctx context.Context, leaseID int64) ([]*Payment, error)
}
