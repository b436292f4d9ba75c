package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/leasedesk/internal/api/v1"
	"github.com/gosuda/leasedesk/internal/domain"
)

func TestIntegrations(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	t.Run("admin creates without echoing the key", func(t *testing.T) {
		resp := h.api.PostCtx(as(h.admin), "/integrations", map[string]any{
			"provider": "Stripe",
			"type":     "billing",
			"status":   "active",
			"api_key":  "sk_live_123",
		})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		assert.NotContains(t, resp.Body.String(), "sk_live_123")

		got := decodeData[domain.Integration](t, resp)
		assert.NotZero(t, got.ID)
		assert.Equal(t, "stripe", got.Provider)
		assert.Equal(t, domain.IntegrationStatusActive, got.Status)
		assert.True(t, got.HasAPIKey)
		assert.Empty(t, got.APIKey)
	})

	t.Run("status defaults to inactive", func(t *testing.T) {
		resp := h.api.PostCtx(as(h.admin), "/integrations", map[string]any{
			"provider": "sms_gateway",
			"type":     "notification",
		})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		got := decodeData[domain.Integration](t, resp)
		assert.Equal(t, domain.IntegrationStatusInactive, got.Status)
		assert.False(t, got.HasAPIKey)
	})

	t.Run("duplicate provider and type", func(t *testing.T) {
		resp := h.api.PostCtx(as(h.admin), "/integrations", map[string]any{
			"provider": "stripe",
			"type":     "billing",
		})
		assert.Equal(t, http.StatusConflict, resp.Code, resp.Body.String())
	})

	t.Run("invalid type", func(t *testing.T) {
		resp := h.api.PostCtx(as(h.admin), "/integrations", map[string]any{
			"provider": "fax",
			"type":     "carrier-pigeon",
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
	})

	t.Run("list filters by type", func(t *testing.T) {
		resp := h.api.GetCtx(as(h.admin), "/integrations?type=notification")
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		got := decodeData[[]domain.Integration](t, resp)
		require.Len(t, got, 1)
		assert.Equal(t, "sms_gateway", got[0].Provider)
	})

	for _, caller := range []struct {
		name string
		p    func() *domain.Principal
	}{
		{"landlord", func() *domain.Principal { return h.landlord }},
		{"tenant", func() *domain.Principal { return h.tenant }},
	} {
		t.Run(caller.name+" forbidden", func(t *testing.T) {
			resp := h.api.GetCtx(as(caller.p()), "/integrations")
			assert.Equal(t, http.StatusForbidden, resp.Code)

			resp = h.api.PostCtx(as(caller.p()), "/integrations", map[string]any{
				"provider": "mailer",
				"type":     "notification",
			})
			assert.Equal(t, http.StatusForbidden, resp.Code)
		})
	}
}

func TestIntegrations_CreateIsAudited(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	resp := h.api.PostCtx(as(h.admin), "/integrations", map[string]any{
		"provider": "twilio",
		"type":     "notification",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	created := decodeData[domain.Integration](t, resp)

	resp = h.api.GetCtx(as(h.admin), fmt.Sprintf("/audit?resource=integration&resource_id=%d", created.ID))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	entries := decodeData[[]domain.AuditEntry](t, resp)
	require.Len(t, entries, 1)
	assert.Equal(t, "integration.created", entries[0].Action)
	assert.Equal(t, h.admin.ID, entries[0].ActorID)
	assert.Equal(t, "twilio", entries[0].Details["provider"])
}

func TestAudit_RoleChange(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	resp := h.api.PutCtx(as(h.admin), fmt.Sprintf("/users/%d", h.landlord.ID), map[string]any{
		"role": "tenant",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	path := fmt.Sprintf("/audit?resource=user&resource_id=%d", h.landlord.ID)
	resp = h.api.GetCtx(as(h.admin), path)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	entries := decodeData[[]domain.AuditEntry](t, resp)
	require.Len(t, entries, 1)
	assert.Equal(t, "user.role_changed", entries[0].Action)
	assert.Equal(t, "landlord", entries[0].Details["from"])
	assert.Equal(t, "tenant", entries[0].Details["to"])

	resp = h.api.GetCtx(as(h.tenant), path)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestAudit_EmptyIsArray(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	resp := h.api.GetCtx(as(h.admin), fmt.Sprintf("/audit?resource=user&resource_id=%d", h.tenant.ID))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.JSONEq(t, `{"success":true,"data":[]}`, resp.Body.String())
}

// ---------------------------------------------------------------------------
// Hooks
// ---------------------------------------------------------------------------

type notifyResponse struct {
	Success bool                `json:"success"`
	Logged  domain.Notification `json:"logged"`
}

func TestHooks_Notify(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	t.Run("defaults filled", func(t *testing.T) {
		resp := h.api.PostCtx(as(h.landlord), "/hooks/notify", map[string]any{})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		var got notifyResponse
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
		assert.True(t, got.Success)
		assert.Equal(t, "generic", got.Logged.Kind)
		assert.Equal(t, "unknown", got.Logged.To)
		assert.Equal(t, "No message", got.Logged.Message)
		assert.False(t, got.Logged.Timestamp.IsZero())
	})

	t.Run("active integration without a sink falls back to the log", func(t *testing.T) {
		i, err := domain.NewIntegration("pager", domain.IntegrationTypeNotification, domain.IntegrationStatusActive, "")
		require.NoError(t, err)
		require.NoError(t, h.store.Integrations().Create(context.Background(), i))

		resp := h.api.PostCtx(as(h.admin), "/hooks/notify", map[string]any{
			"kind":    "rent_due",
			"to":      "tom@example.com",
			"message": "Rent is due",
		})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	})

	t.Run("tenant forbidden", func(t *testing.T) {
		resp := h.api.PostCtx(as(h.tenant), "/hooks/notify", map[string]any{"message": "hi"})
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})
}

type mockNotifier struct {
	notifyFunc func(ctx context.Context, n *domain.Notification) error
}

func (m *mockNotifier) Notify(ctx context.Context, n *domain.Notification) error {
	return m.notifyFunc(ctx, n)
}

func TestHooks_NotifyDeliveryFailure(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t, v1.Config("test"))
	v1.RegisterHookRoutes(api, &mockNotifier{
		notifyFunc: func(context.Context, *domain.Notification) error {
			return errors.New("smtp: connection refused")
		},
	})

	resp := api.PostCtx(as(&domain.Principal{ID: 1, Role: domain.RoleAdmin}), "/hooks/notify", map[string]any{
		"message": "hello",
	})

	assert.Equal(t, http.StatusBadGateway, resp.Code)
	assert.NotContains(t, resp.Body.String(), "smtp")
}
