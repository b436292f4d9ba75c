package domain

import (
	"context"
	"time"
)

type AuditEntry struct {
	ID         int64          `json:"id"`
	ActorID    int64          `json:"actor_id"`
	Action     string         `json:"action"`   // "lease.deleted", "receipt.voided", ...
	Resource   string         `json:"resource"` // "lease", "receipt", ...
	ResourceID int64          `json:"resource_id"`
	Details    map[string]any `json:"details"`
	CreatedAt  time.Time      `json:"created_at"`
}

// NewAuditEntry returns an entry stamped with the current time.
func NewAuditEntry(actorID int64, action, resource string, resourceID int64) *AuditEntry {
	return &AuditEntry{
		ActorID:    actorID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    map[string]any{},
		CreatedAt:  time.Now(),
	}
}

type AuditRepository interface {
	Record(ctx context.Context, entry *AuditEntry) error
	ListByResource(ctx context.Context, resource string, resourceID int64) ([]*AuditEntry, error)
}
