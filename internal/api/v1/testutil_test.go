package v1_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/leasedesk/internal/api/v1"
	"github.com/gosuda/leasedesk/internal/auth"
	"github.com/gosuda/leasedesk/internal/domain"
	"github.com/gosuda/leasedesk/internal/ledger"
	"github.com/gosuda/leasedesk/internal/notify"
	"github.com/gosuda/leasedesk/internal/server/middleware"
	"github.com/gosuda/leasedesk/internal/store/memory"
)

const testSecret = "test-secret-that-is-at-least-32-chars!!"

// ---------------------------------------------------------------------------
// Context helpers: inject the caller into context for DoCtx
// ---------------------------------------------------------------------------

func as(p *domain.Principal) context.Context {
	return middleware.WithPrincipal(context.Background(), p)
}

func withSession(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, middleware.ContextKeySessionID, sid)
}

// ---------------------------------------------------------------------------
// Harness: every route registered over the memory store
// ---------------------------------------------------------------------------

type harness struct {
	api      humatest.TestAPI
	store    *memory.Store
	auth     *auth.Service
	admin    *domain.Principal
	landlord *domain.Principal
	tenant   *domain.Principal
	tenant2  *domain.Principal
}

func newAPI(t *testing.T, store v1.DataStore, authSvc *auth.Service) humatest.TestAPI {
	t.Helper()

	_, api := humatest.New(t, v1.Config("test"))
	ledgerSvc := ledger.NewService(store, nil)
	v1.RegisterAuthRoutes(api, authSvc, v1.CookieOptions{})
	v1.RegisterUserRoutes(api, store, authSvc)
	v1.RegisterPropertyRoutes(api, store)
	v1.RegisterUnitRoutes(api, store)
	v1.RegisterLeaseRoutes(api, store, ledgerSvc)
	v1.RegisterPaymentRoutes(api, store, ledgerSvc)
	v1.RegisterInvoiceRoutes(api, store, ledgerSvc)
	v1.RegisterReceiptRoutes(api, store, ledgerSvc)
	v1.RegisterIntegrationRoutes(api, store)
	v1.RegisterAuditRoutes(api, store)
	v1.RegisterHookRoutes(api, notify.New(notify.NewRegistry(), store.Integrations()))
	return api
}

// newBareHarness has no users.
func newBareHarness(t *testing.T) *harness {
	t.Helper()

	store := memory.New()
	authSvc := auth.NewService(store.Users(), memory.NewSessionStore(), testSecret, time.Hour, time.Hour)
	return &harness{
		api:   newAPI(t, store, authSvc),
		store: store,
		auth:  authSvc,
	}
}

// newHarness seeds an admin, a landlord and two tenants.
func newHarness(t *testing.T) *harness {
	t.Helper()

	h := newBareHarness(t)
	h.admin = h.signup(t, nil, "Admin", "admin@example.com", domain.RoleAdmin)
	h.landlord = h.signup(t, h.admin, "Lana Landlord", "lana@example.com", domain.RoleLandlord)
	h.tenant = h.signup(t, h.admin, "Tom Tenant", "tom@example.com", domain.RoleTenant)
	h.tenant2 = h.signup(t, h.admin, "Tia Tenant", "tia@example.com", domain.RoleTenant)
	return h
}

func (h *harness) signup(t *testing.T, caller *domain.Principal, name, email string, role domain.Role) *domain.Principal {
	t.Helper()

	u, err := h.auth.Signup(context.Background(), caller, auth.SignupRequest{
		Name:     name,
		Email:    email,
		Password: "secret123",
		Role:     role,
	})
	require.NoError(t, err)
	return u.Principal()
}

func (h *harness) property(t *testing.T, owner *domain.Principal) *domain.Property {
	t.Helper()

	p, err := domain.NewProperty(owner.ID, "Maple Court", "1 Maple St")
	require.NoError(t, err)
	require.NoError(t, h.store.Properties().Create(context.Background(), p))
	return p
}

func (h *harness) lease(t *testing.T, tenant *domain.Principal, rent int64) *domain.Lease {
	t.Helper()

	prop := h.property(t, h.landlord)
	l, err := domain.NewLease(tenant.ID, prop.ID, nil, "2024-01-01", "2024-12-31", rent, "")
	require.NoError(t, err)
	require.NoError(t, h.store.Leases().Create(context.Background(), l))
	return l
}

// ---------------------------------------------------------------------------
// Response decoding
// ---------------------------------------------------------------------------

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Page    int             `json:"page"`
	Per     int             `json:"per"`
	Total   int64           `json:"total"`
}

func decode(t *testing.T, resp *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	return env
}

func decodeData[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	env := decode(t, resp)
	require.True(t, env.Success, resp.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}
