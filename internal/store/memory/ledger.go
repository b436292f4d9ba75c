package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/gosuda/leasedesk/internal/domain"
)

type paymentRepo struct{ s *Store }

func (r *paymentRepo) Create(_ context.Context, p *domain.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.leases[p.LeaseID]; !ok {
		return fmt.Errorf("paymentRepo.Create: lease: %w", domain.ErrInvalidReference)
	}

	p.ID = r.s.nextID("payments")
	r.s.payments[p.ID] = clone(p)
	return nil
}

func (r *paymentRepo) GetByID(_ context.Context, id int64) (*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.payments[id]
	if !ok {
		return nil, fmt.Errorf("paymentRepo.GetByID: %w", domain.ErrNotFound)
	}
	return clone(p), nil
}

func (r *paymentRepo) Update(_ context.Context, p *domain.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.payments[p.ID]; !ok {
		return fmt.Errorf("paymentRepo.Update: %w", domain.ErrNotFound)
	}
	if _, ok := r.s.leases[p.LeaseID]; !ok {
		return fmt.Errorf("paymentRepo.Update: lease: %w", domain.ErrInvalidReference)
	}

	r.s.payments[p.ID] = clone(p)
	return nil
}

func (r *paymentRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.payments[id]; !ok {
		return fmt.Errorf("paymentRepo.Delete: %w", domain.ErrNotFound)
	}
	for _, rc := range r.s.receipts {
		if rc.PaymentID == id {
			return fmt.Errorf("paymentRepo.Delete: receipt exists: %w", domain.ErrConflict)
		}
	}

	delete(r.s.payments, id)
	return nil
}

func (r *paymentRepo) List(_ context.Context, f domain.PaymentFilter, page domain.Page) ([]*domain.Payment, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	payments, total := collect(r.s.payments, func(p *domain.Payment) bool {
		if f.LeaseID != 0 && p.LeaseID != f.LeaseID {
			return false
		}
		return f.Scope.Allows(r.s.tenantOf(p.LeaseID))
	}, page)
	return payments, total, nil
}

func (r *paymentRepo) ListByLease(_ context.Context, leaseID int64) ([]*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	payments, _ := collect(r.s.payments, func(p *domain.Payment) bool {
		return p.LeaseID == leaseID
	}, domain.Page{Number: 1, Per: len(r.s.payments)})
	return payments, nil
}

type invoiceRepo struct{ s *Store }

func (r *invoiceRepo) Create(_ context.Context, inv *domain.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.leases[inv.LeaseID]; !ok {
		return fmt.Errorf("invoiceRepo.Create: lease: %w", domain.ErrInvalidReference)
	}

	inv.ID = r.s.nextID("invoices")
	r.s.invoices[inv.ID] = clone(inv)
	return nil
}

func (r *invoiceRepo) GetByID(_ context.Context, id int64) (*domain.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", domain.ErrNotFound)
	}
	return clone(inv), nil
}

// Update writes everything except status, which the stored row keeps.
func (r *invoiceRepo) Update(_ context.Context, inv *domain.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.invoices[inv.ID]
	if !ok {
		return fmt.Errorf("invoiceRepo.Update: %w", domain.ErrNotFound)
	}
	if stored.Status == domain.InvoiceStatusPaid {
		return fmt.Errorf("invoiceRepo.Update: %w", domain.ErrAlreadySettled)
	}
	if _, ok := r.s.leases[inv.LeaseID]; !ok {
		return fmt.Errorf("invoiceRepo.Update: lease: %w", domain.ErrInvalidReference)
	}

	inv.Status = stored.Status
	inv.UpdatedAt = time.Now()
	r.s.invoices[inv.ID] = clone(inv)
	return nil
}

func (r *invoiceRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.invoices[id]; !ok {
		return fmt.Errorf("invoiceRepo.Delete: %w", domain.ErrNotFound)
	}
	for _, rc := range r.s.receipts {
		if rc.InvoiceID == id {
			return fmt.Errorf("invoiceRepo.Delete: receipt exists: %w", domain.ErrConflict)
		}
	}

	delete(r.s.invoices, id)
	return nil
}

func (r *invoiceRepo) List(_ context.Context, f domain.InvoiceFilter, page domain.Page) ([]*domain.Invoice, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	invoices, total := collect(r.s.invoices, func(inv *domain.Invoice) bool {
		switch {
		case f.LeaseID != 0 && inv.LeaseID != f.LeaseID:
			return false
		case f.Status != "" && inv.Status != f.Status:
			return false
		}
		return f.Scope.Allows(r.s.tenantOf(inv.LeaseID))
	}, page)
	return invoices, total, nil
}

type receiptRepo struct{ s *Store }

// Settle flips the invoice to Paid and inserts the receipt under one lock
// acquisition, so concurrent calls for the same invoice settle it once.
func (r *receiptRepo) Settle(_ context.Context, rc *domain.Receipt) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	inv, ok := r.s.invoices[rc.InvoiceID]
	if !ok {
		return fmt.Errorf("receiptRepo.Settle: invoice: %w", domain.ErrNotFound)
	}
	if inv.Status != domain.InvoiceStatusUnpaid {
		return fmt.Errorf("receiptRepo.Settle: %w", domain.ErrAlreadySettled)
	}
	if _, ok := r.s.payments[rc.PaymentID]; !ok {
		return fmt.Errorf("receiptRepo.Settle: payment: %w", domain.ErrInvalidReference)
	}
	for _, other := range r.s.receipts {
		if other.ReceiptNumber == rc.ReceiptNumber {
			return fmt.Errorf("receiptRepo.Settle: receipt number: %w", domain.ErrConflict)
		}
	}

	inv.Status = domain.InvoiceStatusPaid
	inv.UpdatedAt = time.Now()

	rc.ID = r.s.nextID("receipts")
	r.s.receipts[rc.ID] = clone(rc)
	return nil
}

func (r *receiptRepo) Void(_ context.Context, id int64, audit *domain.AuditEntry) (*domain.Receipt, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rc, ok := r.s.receipts[id]
	if !ok {
		return nil, fmt.Errorf("receiptRepo.Void: %w", domain.ErrNotFound)
	}

	if inv, ok := r.s.invoices[rc.InvoiceID]; ok {
		inv.Status = domain.InvoiceStatusUnpaid
		inv.UpdatedAt = time.Now()
	}
	delete(r.s.receipts, id)

	if audit != nil {
		r.s.record(audit)
	}

	return clone(rc), nil
}

func (r *receiptRepo) GetByID(_ context.Context, id int64) (*domain.Receipt, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rc, ok := r.s.receipts[id]
	if !ok {
		return nil, fmt.Errorf("receiptRepo.GetByID: %w", domain.ErrNotFound)
	}
	return clone(rc), nil
}

func (r *receiptRepo) List(_ context.Context, f domain.ReceiptFilter, page domain.Page) ([]*domain.Receipt, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	receipts, total := collect(r.s.receipts, func(rc *domain.Receipt) bool {
		switch {
		case f.InvoiceID != 0 && rc.InvoiceID != f.InvoiceID:
			return false
		case f.PaymentID != 0 && rc.PaymentID != f.PaymentID:
			return false
		}
		if !f.Scope.Restricted() {
			return true
		}
		inv, ok := r.s.invoices[rc.InvoiceID]
		return ok && f.Scope.Allows(r.s.tenantOf(inv.LeaseID))
	}, page)
	return receipts, total, nil
}
