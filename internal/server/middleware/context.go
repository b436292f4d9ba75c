package middleware

import (
	"context"

	"github.com/gosuda/leasedesk/internal/domain"
)

type contextKey string

const (
	ContextKeyPrincipal contextKey = "principal"
	ContextKeySessionID contextKey = "session_id"
)

// WithPrincipal returns ctx carrying p.
func WithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, ContextKeyPrincipal, p)
}

// PrincipalFromContext returns the principal attached by Identity, if any.
func PrincipalFromContext(ctx context.Context) (*domain.Principal, bool) {
	v, ok := ctx.Value(ContextKeyPrincipal).(*domain.Principal)
	return v, ok && v != nil
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeySessionID).(string)
	return v, ok && v != ""
}
