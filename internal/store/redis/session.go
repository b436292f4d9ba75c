package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gosuda/leasedesk/internal/domain"
)

const (
	sessionKeyPrefix      = "session:"
	userSessionsKeyPrefix = "user_sessions:"
)

// SessionKey returns the Redis key holding a session.
func SessionKey(id string) string {
	return sessionKeyPrefix + id
}

// UserSessionsKey returns the Redis set indexing a user's session ids.
func UserSessionsKey(userID int64) string {
	return userSessionsKeyPrefix + strconv.FormatInt(userID, 10)
}

// SessionStore keeps login sessions as JSON values with a Redis TTL.
type SessionStore struct {
	client *redis.Client
}

// Sessions returns a session store sharing the store's client.
func (s *Store) Sessions() *SessionStore {
	return &SessionStore{client: s.client}
}

func (s *SessionStore) Save(ctx context.Context, id string, p *domain.Principal, ttl time.Duration) error {
	payload, err := encodePrincipal(p)
	if err != nil {
		return fmt.Errorf("redis.SessionStore.Save: %w", err)
	}

	// Sessions share one lifetime, so the index expires with the newest.
	index := UserSessionsKey(p.ID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, SessionKey(id), payload, ttl)
		pipe.SAdd(ctx, index, id)
		pipe.Expire(ctx, index, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis.SessionStore.Save: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Principal, error) {
	payload, err := s.client.Get(ctx, SessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis.SessionStore.Get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis.SessionStore.Get: %w", err)
	}

	p, err := decodePrincipal(payload)
	if err != nil {
		return nil, fmt.Errorf("redis.SessionStore.Get: %w", err)
	}
	return p, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	p, err := s.Get(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("redis.SessionStore.Delete: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, SessionKey(id))
		if p != nil {
			pipe.SRem(ctx, UserSessionsKey(p.ID), id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis.SessionStore.Delete: %w", err)
	}
	return nil
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userID int64) error {
	index := UserSessionsKey(userID)
	ids, err := s.client.SMembers(ctx, index).Result()
	if err != nil {
		return fmt.Errorf("redis.SessionStore.DeleteByUser: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, SessionKey(id))
	}
	keys = append(keys, index)

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis.SessionStore.DeleteByUser: %w", err)
	}
	return nil
}

func encodePrincipal(p *domain.Principal) ([]byte, error) {
	if p == nil {
		return nil, errors.New("nil principal")
	}
	return json.Marshal(p)
}

func decodePrincipal(payload []byte) (*domain.Principal, error) {
	var p domain.Principal
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if p.ID == 0 || !p.Role.Valid() {
		return nil, errors.New("decode session: incomplete principal")
	}
	return &p, nil
}
