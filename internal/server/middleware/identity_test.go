package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/leasedesk/internal/domain"
	"github.com/gosuda/leasedesk/internal/server/middleware"
)

// mockResolver records what Identity passed and returns a fixed principal.
type mockResolver struct {
	resolveFunc func(ctx context.Context, sessionID, bearer string) *domain.Principal
}

func (m *mockResolver) Resolve(ctx context.Context, sessionID, bearer string) *domain.Principal {
	return m.resolveFunc(ctx, sessionID, bearer)
}

func TestIdentity(t *testing.T) {
	t.Parallel()

	lord := &domain.Principal{ID: 5, Role: domain.RoleLandlord}

	tests := []struct {
		name        string
		cookie      string
		header      string
		wantSession string
		wantBearer  string
		principal   *domain.Principal
	}{
		{name: "anonymous", principal: nil},
		{name: "session cookie", cookie: "sid-1", wantSession: "sid-1", principal: lord},
		{name: "bearer header", header: "Bearer tok-1", wantBearer: "tok-1", principal: lord},
		{name: "lowercase scheme", header: "bearer tok-2", wantBearer: "tok-2", principal: lord},
		{name: "basic auth ignored", header: "Basic dXNlcjpwYXNz", principal: nil},
		{name: "both", cookie: "sid-2", header: "Bearer tok-3", wantSession: "sid-2", wantBearer: "tok-3", principal: lord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotSession, gotBearer string
			resolver := &mockResolver{resolveFunc: func(_ context.Context, sessionID, bearer string) *domain.Principal {
				gotSession, gotBearer = sessionID, bearer
				return tt.principal
			}}

			var seen *domain.Principal
			var seenOK bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, seenOK = middleware.PrincipalFromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/leases", http.NoBody)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			middleware.Identity(resolver)(next).ServeHTTP(rec, req)

			require.Equal(t, http.StatusNoContent, rec.Code, "identity never rejects")
			assert.Equal(t, tt.wantSession, gotSession)
			assert.Equal(t, tt.wantBearer, gotBearer)
			assert.Equal(t, tt.principal != nil, seenOK)
			assert.Equal(t, tt.principal, seen)
		})
	}
}

func TestSessionIDFromContext(t *testing.T) {
	t.Parallel()

	resolver := &mockResolver{resolveFunc: func(context.Context, string, string) *domain.Principal { return nil }}

	var sid string
	var ok bool
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		sid, ok = middleware.SessionIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "abc"})
	middleware.Identity(resolver)(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, ok)
	assert.Equal(t, "abc", sid)
}
