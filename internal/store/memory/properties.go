package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/gosuda/leasedesk/internal/domain"
)

type propertyRepo struct{ s *Store }

func (r *propertyRepo) Create(_ context.Context, p *domain.Property) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[p.OwnerID]; !ok {
		return fmt.Errorf("propertyRepo.Create: owner: %w", domain.ErrInvalidReference)
	}

	p.ID = r.s.nextID("properties")
	r.s.properties[p.ID] = clone(p)
	return nil
}

func (r *propertyRepo) GetByID(_ context.Context, id int64) (*domain.Property, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.properties[id]
	if !ok {
		return nil, fmt.Errorf("propertyRepo.GetByID: %w", domain.ErrNotFound)
	}
	return clone(p), nil
}

func (r *propertyRepo) Update(_ context.Context, p *domain.Property) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.properties[p.ID]; !ok {
		return fmt.Errorf("propertyRepo.Update: %w", domain.ErrNotFound)
	}
	if _, ok := r.s.users[p.OwnerID]; !ok {
		return fmt.Errorf("propertyRepo.Update: owner: %w", domain.ErrInvalidReference)
	}

	p.UpdatedAt = time.Now()
	r.s.properties[p.ID] = clone(p)
	return nil
}

func (r *propertyRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.properties[id]; !ok {
		return fmt.Errorf("propertyRepo.Delete: %w", domain.ErrNotFound)
	}
	for _, l := range r.s.leases {
		if l.PropertyID == id {
			return fmt.Errorf("propertyRepo.Delete: leases exist: %w", domain.ErrConflict)
		}
	}

	for uid, u := range r.s.units {
		if u.PropertyID == id {
			delete(r.s.units, uid)
		}
	}
	delete(r.s.properties, id)
	return nil
}

func (r *propertyRepo) List(_ context.Context, f domain.PropertyFilter, page domain.Page) ([]*domain.Property, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	props, total := collect(r.s.properties, func(p *domain.Property) bool {
		return f.OwnerID == 0 || p.OwnerID == f.OwnerID
	}, page)
	return props, total, nil
}

type unitRepo struct{ s *Store }

func (r *unitRepo) Create(_ context.Context, u *domain.Unit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.check(u); err != nil {
		return fmt.Errorf("unitRepo.Create: %w", err)
	}

	u.ID = r.s.nextID("units")
	r.s.units[u.ID] = clone(u)
	return nil
}

// check enforces the foreign key and the (property_id, unit_number) unique key.
func (r *unitRepo) check(u *domain.Unit) error {
	if _, ok := r.s.properties[u.PropertyID]; !ok {
		return fmt.Errorf("property: %w", domain.ErrInvalidReference)
	}
	for _, other := range r.s.units {
		if other.ID != u.ID && other.PropertyID == u.PropertyID && other.UnitNumber == u.UnitNumber {
			return fmt.Errorf("unit number: %w", domain.ErrConflict)
		}
	}
	return nil
}

func (r *unitRepo) GetByID(_ context.Context, id int64) (*domain.Unit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.units[id]
	if !ok {
		return nil, fmt.Errorf("unitRepo.GetByID: %w", domain.ErrNotFound)
	}
	return clone(u), nil
}

func (r *unitRepo) Update(_ context.Context, u *domain.Unit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.units[u.ID]; !ok {
		return fmt.Errorf("unitRepo.Update: %w", domain.ErrNotFound)
	}
	if err := r.check(u); err != nil {
		return fmt.Errorf("unitRepo.Update: %w", err)
	}

	u.UpdatedAt = time.Now()
	r.s.units[u.ID] = clone(u)
	return nil
}

// Delete detaches leases from the unit, matching ON DELETE SET NULL.
func (r *unitRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.units[id]; !ok {
		return fmt.Errorf("unitRepo.Delete: %w", domain.ErrNotFound)
	}
	for _, l := range r.s.leases {
		if l.UnitID != nil && *l.UnitID == id {
			l.UnitID = nil
		}
	}
	delete(r.s.units, id)
	return nil
}

func (r *unitRepo) List(_ context.Context, f domain.UnitFilter, page domain.Page) ([]*domain.Unit, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	units, total := collect(r.s.units, func(u *domain.Unit) bool {
		if f.PropertyID != 0 && u.PropertyID != f.PropertyID {
			return false
		}
		return f.Status == "" || u.Status == f.Status
	}, page)
	return units, total, nil
}
