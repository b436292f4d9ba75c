package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/leasedesk/internal/api/v1"
	"github.com/gosuda/leasedesk/internal/auth"
	"github.com/gosuda/leasedesk/internal/domain"
)

func TestSignup(t *testing.T) {
	t.Parallel()

	t.Run("anonymous signup starts a session", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		resp := h.api.Post("/signup", map[string]any{
			"name":     "New Tenant",
			"email":    "new@example.com",
			"password": "secret123",
		})

		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		assert.Contains(t, resp.Header().Get("Set-Cookie"), "leasedesk_session=")

		var body struct {
			Success bool         `json:"success"`
			User    *domain.User `json:"user"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, "new@example.com", body.User.Email)
		assert.Equal(t, domain.RoleTenant, body.User.Role)
		assert.NotContains(t, resp.Body.String(), "password")
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		payload := map[string]any{
			"name":     "Dana",
			"email":    "dana@example.com",
			"password": "secret123",
			"role":     "landlord",
		}

		first := h.api.Post("/signup", payload)
		require.Equal(t, http.StatusOK, first.Code, first.Body.String())
		before, err := h.store.Users().Count(context.Background())
		require.NoError(t, err)

		second := h.api.Post("/signup", payload)

		assert.Equal(t, http.StatusBadRequest, second.Code)
		assert.JSONEq(t, `{"success":false,"error":"Email already exists"}`, second.Body.String())
		after, err := h.store.Users().Count(context.Background())
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("duplicate admin email", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		resp := h.api.Post("/signup", map[string]any{
			"name": "Imposter", "email": "admin@example.com", "password": "secret123", "role": "admin",
		})

		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.JSONEq(t, `{"success":false,"error":"Email already exists"}`, resp.Body.String())
	})

	t.Run("first user may bootstrap admin", func(t *testing.T) {
		t.Parallel()
		h := newBareHarness(t)

		first := h.api.Post("/signup", map[string]any{
			"name": "Root", "email": "root@example.com", "password": "secret123", "role": "admin",
		})
		require.Equal(t, http.StatusOK, first.Code, first.Body.String())

		second := h.api.Post("/signup", map[string]any{
			"name": "Mallory", "email": "mallory@example.com", "password": "secret123", "role": "admin",
		})
		assert.Equal(t, http.StatusForbidden, second.Code)
	})

	t.Run("admin caller creates admin without a session", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		resp := h.api.PostCtx(as(h.admin), "/signup", map[string]any{
			"name": "Second Admin", "email": "admin2@example.com", "password": "secret123", "role": "admin",
		})

		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		assert.Empty(t, resp.Header().Get("Set-Cookie"))
	})

	t.Run("short password", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		resp := h.api.Post("/signup", map[string]any{
			"name": "Shorty", "email": "short@example.com", "password": "123",
		})

		assert.Equal(t, http.StatusBadRequest, resp.Code)
		env := decode(t, resp)
		assert.False(t, env.Success)
		assert.NotEmpty(t, env.Error)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		resp := h.api.Post("/login", map[string]any{
			"email":    "TOM@example.com",
			"password": "secret123",
		})

		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		assert.Contains(t, resp.Header().Get("Set-Cookie"), "leasedesk_session=")
		assert.Contains(t, resp.Header().Get("Set-Cookie"), "HttpOnly")

		var body struct {
			Success bool         `json:"success"`
			User    *domain.User `json:"user"`
			Token   string       `json:"token"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, h.tenant.ID, body.User.ID)
		assert.NotEmpty(t, body.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		resp := h.api.Post("/login", map[string]any{
			"email":    "tom@example.com",
			"password": "nope-nope",
		})

		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.JSONEq(t, `{"success":false,"error":"Invalid email or password"}`, resp.Body.String())
	})

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		resp := h.api.Post("/login", map[string]any{
			"email":    "ghost@example.com",
			"password": "secret123",
		})

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestWhoami(t *testing.T) {
	t.Parallel()

	t.Run("anonymous", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		resp := h.api.Get("/_whoami")

		require.Equal(t, http.StatusOK, resp.Code)
		assert.JSONEq(t, `{"success":false,"user":null}`, resp.Body.String())
	})

	t.Run("authenticated", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		resp := h.api.GetCtx(as(h.landlord), "/_whoami")

		require.Equal(t, http.StatusOK, resp.Code)
		var body struct {
			Success bool              `json:"success"`
			User    *domain.Principal `json:"user"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, h.landlord, body.User)
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	sid, err := h.auth.StartSession(ctx, h.tenant)
	require.NoError(t, err)
	require.NotNil(t, h.auth.Resolve(ctx, sid, ""))

	resp := h.api.PostCtx(withSession(as(h.tenant), sid), "/logout")

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.JSONEq(t, `{"success":true}`, resp.Body.String())
	assert.Contains(t, resp.Header().Get("Set-Cookie"), "Max-Age=0")
	assert.Nil(t, h.auth.Resolve(ctx, sid, ""))
}

// mockAuthService overrides Login and Logout; other methods are unused.
type mockAuthService struct {
	v1.AuthService
	loginFunc  func(ctx context.Context, email, password string) (*auth.LoginResult, error)
	logoutFunc func(ctx context.Context, sessionID string) error
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*auth.LoginResult, error) {
	return m.loginFunc(ctx, email, password)
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	return m.logoutFunc(ctx, sessionID)
}

func TestLogin_FailureWithBrokenSessionStore(t *testing.T) {
	t.Parallel()

	var ended string
	svc := &mockAuthService{
		loginFunc: func(context.Context, string, string) (*auth.LoginResult, error) {
			return nil, auth.ErrInvalidCredentials
		},
		logoutFunc: func(_ context.Context, sessionID string) error {
			ended = sessionID
			return errors.New("redis: connection refused")
		},
	}
	_, api := humatest.New(t, v1.Config("test"))
	v1.RegisterAuthRoutes(api, svc, v1.CookieOptions{})

	resp := api.PostCtx(withSession(context.Background(), "old-session"), "/login", map[string]any{
		"email": "tom@example.com", "password": "wrong-password",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.JSONEq(t, `{"success":false,"error":"Invalid email or password"}`, resp.Body.String())
	assert.Equal(t, "old-session", ended)
}
