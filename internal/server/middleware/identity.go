package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gosuda/leasedesk/internal/domain"
)

// SessionCookie is the name of the cookie carrying the session id.
const SessionCookie = "leasedesk_session"

// Resolver identifies a caller from a session id and a bearer token.
type Resolver interface {
	Resolve(ctx context.Context, sessionID, bearer string) *domain.Principal
}

// Identity attaches the resolved principal, when there is one, to the
// request context. It never rejects a request; gating is left to
// RequireRole and the handlers.
func Identity(resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var sessionID string
			if c, err := r.Cookie(SessionCookie); err == nil {
				sessionID = c.Value
				ctx = context.WithValue(ctx, ContextKeySessionID, sessionID)
			}

			if p := resolver.Resolve(ctx, sessionID, extractBearer(r)); p != nil {
				ctx = WithPrincipal(ctx, p)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearer(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
