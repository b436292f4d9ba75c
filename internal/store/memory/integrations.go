package memory

import (
	"context"
	"fmt"

	"github.com/gosuda/leasedesk/internal/domain"
)

type integrationRepo struct{ s *Store }

func (r *integrationRepo) Create(_ context.Context, i *domain.Integration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.integrations {
		if existing.Provider == i.Provider && existing.Type == i.Type {
			return fmt.Errorf("integrationRepo.Create: %w", domain.ErrConflict)
		}
	}

	i.ID = r.s.nextID("integrations")
	i.HasAPIKey = i.APIKey != ""
	r.s.integrations[i.ID] = clone(i)
	return nil
}

func (r *integrationRepo) List(_ context.Context, f domain.IntegrationFilter, page domain.Page) ([]*domain.Integration, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out, total := collect(r.s.integrations, func(i *domain.Integration) bool {
		return (f.Type == "" || i.Type == f.Type) && (f.Status == "" || i.Status == f.Status)
	}, page)
	return out, total, nil
}
