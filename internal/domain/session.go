package domain

import (
	"context"
	"time"
)

// SessionStore keeps server-side login sessions keyed by an opaque id.
type SessionStore interface {
	Save(ctx context.Context, id string, p *Principal, ttl time.Duration) error
	// Get returns ErrNotFound for unknown or expired sessions.
	Get(ctx context.Context, id string) (*Principal, error)
	Delete(ctx context.Context, id string) error
	// DeleteByUser ends every session held by the user.
	DeleteByUser(ctx context.Context, userID int64) error
}
