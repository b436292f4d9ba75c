package memory

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/gosuda/leasedesk/internal/domain"
)

type leaseRepo struct{ s *Store }

func cloneLease(l *domain.Lease) *domain.Lease {
	c := *l
	if l.UnitID != nil {
		id := *l.UnitID
		c.UnitID = &id
	}
	return &c
}

// check enforces the lease foreign keys. Must be called with mu held.
func (r *leaseRepo) check(l *domain.Lease) error {
	if _, ok := r.s.users[l.TenantID]; !ok {
		return fmt.Errorf("tenant: %w", domain.ErrInvalidReference)
	}
	if _, ok := r.s.properties[l.PropertyID]; !ok {
		return fmt.Errorf("property: %w", domain.ErrInvalidReference)
	}
	if l.UnitID != nil {
		if _, ok := r.s.units[*l.UnitID]; !ok {
			return fmt.Errorf("unit: %w", domain.ErrInvalidReference)
		}
	}
	return nil
}

func (r *leaseRepo) Create(_ context.Context, l *domain.Lease) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.check(l); err != nil {
		return fmt.Errorf("leaseRepo.Create: %w", err)
	}

	l.ID = r.s.nextID("leases")
	r.s.leases[l.ID] = cloneLease(l)
	return nil
}

func (r *leaseRepo) GetByID(_ context.Context, id int64) (*domain.Lease, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.leases[id]
	if !ok {
		return nil, fmt.Errorf("leaseRepo.GetByID: %w", domain.ErrNotFound)
	}
	return cloneLease(l), nil
}

func (r *leaseRepo) Update(_ context.Context, l *domain.Lease) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.leases[l.ID]; !ok {
		return fmt.Errorf("leaseRepo.Update: %w", domain.ErrNotFound)
	}
	if err := r.check(l); err != nil {
		return fmt.Errorf("leaseRepo.Update: %w", err)
	}

	l.UpdatedAt = time.Now()
	r.s.leases[l.ID] = cloneLease(l)
	return nil
}

func (r *leaseRepo) List(_ context.Context, f domain.LeaseFilter, page domain.Page) ([]*domain.Lease, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	leases, total := collect(r.s.leases, func(l *domain.Lease) bool {
		switch {
		case !f.Scope.Allows(l.TenantID):
			return false
		case f.TenantID != 0 && l.TenantID != f.TenantID:
			return false
		case f.PropertyID != 0 && l.PropertyID != f.PropertyID:
			return false
		case f.Status != "" && l.Status != f.Status:
			return false
		}
		return true
	}, page)
	for i, l := range leases {
		leases[i] = cloneLease(l)
	}
	return leases, total, nil
}

func (r *leaseRepo) DeleteCascade(_ context.Context, id int64, audit *domain.AuditEntry) (*domain.LeaseDeletion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.leases[id]; !ok {
		return nil, fmt.Errorf("leaseRepo.DeleteCascade: %w", domain.ErrNotFound)
	}

	del := &domain.LeaseDeletion{LeaseID: id}

	invoices := make(map[int64]bool)
	for iid, inv := range r.s.invoices {
		if inv.LeaseID == id {
			invoices[iid] = true
		}
	}
	payments := make(map[int64]bool)
	for pid, p := range r.s.payments {
		if p.LeaseID == id {
			payments[pid] = true
		}
	}

	for rid, rc := range r.s.receipts {
		if invoices[rc.InvoiceID] || payments[rc.PaymentID] {
			delete(r.s.receipts, rid)
			del.Receipts++
		}
	}
	for iid := range invoices {
		delete(r.s.invoices, iid)
		del.Invoices++
	}
	for pid := range payments {
		delete(r.s.payments, pid)
		del.Payments++
	}
	delete(r.s.leases, id)

	if audit != nil {
		r.s.record(withCounts(audit, del))
	}

	return del, nil
}

// withCounts merges the removal counts into the audit details.
func withCounts(audit *domain.AuditEntry, del *domain.LeaseDeletion) *domain.AuditEntry {
	details := make(map[string]any, len(audit.Details)+3)
	maps.Copy(details, audit.Details)
	details["payments"] = del.Payments
	details["invoices"] = del.Invoices
	details["receipts"] = del.Receipts
	audit.Details = details
	return audit
}
