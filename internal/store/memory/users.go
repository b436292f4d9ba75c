package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/gosuda/leasedesk/internal/domain"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return fmt.Errorf("userRepo.Create: %w", domain.ErrConflict)
		}
	}

	u.ID = r.s.nextID("users")
	r.s.users[u.ID] = clone(u)
	return nil
}

func (r *userRepo) CreateIfEmpty(_ context.Context, u *domain.User) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if len(r.s.users) > 0 {
		return false, nil
	}

	u.ID = r.s.nextID("users")
	r.s.users[u.ID] = clone(u)
	return true, nil
}

func (r *userRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("userRepo.GetByID: %w", domain.ErrNotFound)
	}
	return clone(u), nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, fmt.Errorf("userRepo.GetByEmail: %w", domain.ErrNotFound)
}

func (r *userRepo) Update(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[u.ID]; !ok {
		return fmt.Errorf("userRepo.Update: %w", domain.ErrNotFound)
	}
	for _, other := range r.s.users {
		if other.ID != u.ID && other.Email == u.Email {
			return fmt.Errorf("userRepo.Update: %w", domain.ErrConflict)
		}
	}

	u.UpdatedAt = time.Now()
	r.s.users[u.ID] = clone(u)
	return nil
}

func (r *userRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return fmt.Errorf("userRepo.Delete: %w", domain.ErrNotFound)
	}
	for _, p := range r.s.properties {
		if p.OwnerID == id {
			return fmt.Errorf("userRepo.Delete: owns properties: %w", domain.ErrConflict)
		}
	}
	for _, l := range r.s.leases {
		if l.TenantID == id {
			return fmt.Errorf("userRepo.Delete: holds leases: %w", domain.ErrConflict)
		}
	}

	delete(r.s.users, id)
	return nil
}

func (r *userRepo) List(_ context.Context, f domain.UserFilter, page domain.Page) ([]*domain.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	users, total := collect(r.s.users, func(u *domain.User) bool {
		return f.Role == "" || u.Role == f.Role
	}, page)
	return users, total, nil
}

func (r *userRepo) Count(context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return int64(len(r.s.users)), nil
}
