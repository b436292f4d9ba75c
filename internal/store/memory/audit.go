package memory

import (
	"context"
	"maps"

	"github.com/gosuda/leasedesk/internal/domain"
)

type auditRepo struct{ s *Store }

// record stores a copy of entry and sets its id. Must be called with mu held.
func (s *Store) record(entry *domain.AuditEntry) {
	entry.ID = s.nextID("audit_log")
	c := *entry
	c.Details = maps.Clone(entry.Details)
	s.audit[entry.ID] = &c
}

func (r *auditRepo) Record(_ context.Context, entry *domain.AuditEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.record(entry)
	return nil
}

func (r *auditRepo) ListByResource(_ context.Context, resource string, resourceID int64) ([]*domain.AuditEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	entries, _ := collect(r.s.audit, func(e *domain.AuditEntry) bool {
		return e.Resource == resource && e.ResourceID == resourceID
	}, domain.Page{Number: 1, Per: len(r.s.audit)})
	for _, e := range entries {
		e.Details = maps.Clone(e.Details)
	}
	return entries, nil
}
