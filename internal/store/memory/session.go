package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gosuda/leasedesk/internal/domain"
)

type session struct {
	principal domain.Principal
	expires   time.Time
}

// SessionStore keeps sessions in process memory. Expired entries are
// dropped on lookup and swept on every Save.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]session
	byUser   map[int64]map[string]struct{}
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]session),
		byUser:   make(map[int64]map[string]struct{}),
		now:      time.Now,
	}
}

func (s *SessionStore) Save(_ context.Context, id string, p *domain.Principal, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for sid, sess := range s.sessions {
		if !now.Before(sess.expires) {
			s.remove(sid)
		}
	}

	s.remove(id)
	s.sessions[id] = session{principal: *p, expires: now.Add(ttl)}
	ids, ok := s.byUser[p.ID]
	if !ok {
		ids = make(map[string]struct{})
		s.byUser[p.ID] = ids
	}
	ids[id] = struct{}{}
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*domain.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("memory.SessionStore.Get: %w", domain.ErrNotFound)
	}
	if !s.now().Before(sess.expires) {
		s.remove(id)
		return nil, fmt.Errorf("memory.SessionStore.Get: expired: %w", domain.ErrNotFound)
	}

	p := sess.principal
	return &p, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remove(id)
	return nil
}

func (s *SessionStore) DeleteByUser(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.byUser[userID] {
		delete(s.sessions, id)
	}
	delete(s.byUser, userID)
	return nil
}

// remove must be called with mu held.
func (s *SessionStore) remove(id string) {
	sess, ok := s.sessions[id]
	if !ok {
		return
	}
	delete(s.sessions, id)
	if ids := s.byUser[sess.principal.ID]; ids != nil {
		delete(ids, id)
		if len(ids) == 0 {
			delete(s.byUser, sess.principal.ID)
		}
	}
}
