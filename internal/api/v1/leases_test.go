package v1_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/leasedesk/internal/api/v1"
	"github.com/gosuda/leasedesk/internal/domain"
)

func TestListLeases_TenantScoping(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	mine := h.lease(t, h.tenant, 100000)
	h.lease(t, h.tenant2, 90000)
	h.lease(t, h.tenant2, 80000)

	t.Run("tenant sees only own leases", func(t *testing.T) {
		t.Parallel()

		resp := h.api.GetCtx(as(h.tenant), "/leases")

		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		env := decode(t, resp)
		assert.Equal(t, int64(1), env.Total)
		leases := decodeData[[]domain.Lease](t, resp)
		require.Len(t, leases, 1)
		assert.Equal(t, mine.ID, leases[0].ID)
	})

	t.Run("tenant filter cannot widen scope", func(t *testing.T) {
		t.Parallel()

		resp := h.api.GetCtx(as(h.tenant), fmt.Sprintf("/leases?tenant_id=%d", h.tenant2.ID))

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Empty(t, decodeData[[]domain.Lease](t, resp))
	})

	t.Run("landlord sees all", func(t *testing.T) {
		t.Parallel()

		resp := h.api.GetCtx(as(h.landlord), "/leases?per=2")

		require.Equal(t, http.StatusOK, resp.Code)
		env := decode(t, resp)
		assert.Equal(t, int64(3), env.Total)
		assert.Equal(t, 1, env.Page)
		assert.Equal(t, 2, env.Per)
		assert.Len(t, decodeData[[]domain.Lease](t, resp), 2)
	})

	t.Run("anonymous", func(t *testing.T) {
		t.Parallel()

		resp := h.api.Get("/leases")

		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.False(t, decode(t, resp).Success)
	})
}

func TestGetLease_ForeignTenantForbidden(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	theirs := h.lease(t, h.tenant2, 90000)

	resp := h.api.GetCtx(as(h.tenant), fmt.Sprintf("/leases/%d", theirs.ID))

	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.JSONEq(t, `{"success":false,"error":"forbidden"}`, resp.Body.String())
}

func TestLease_CreateThenGet(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	prop := h.property(t, h.landlord)

	created := h.api.PostCtx(as(h.landlord), "/leases", map[string]any{
		"tenant_id":   h.tenant.ID,
		"property_id": prop.ID,
		"start_date":  "2024-03-01",
		"end_date":    "2025-02-28",
		"rent_amount": 150000,
	})
	require.Equal(t, http.StatusOK, created.Code, created.Body.String())
	lease := decodeData[domain.Lease](t, created)
	assert.Equal(t, domain.LeaseStatusActive, lease.Status)

	got := h.api.GetCtx(as(h.tenant), fmt.Sprintf("/leases/%d", lease.ID))
	require.Equal(t, http.StatusOK, got.Code, got.Body.String())
	detail := decodeData[v1.LeaseDetail](t, got)

	assert.Equal(t, lease.ID, detail.ID)
	assert.Equal(t, h.tenant.ID, detail.TenantID)
	assert.Equal(t, prop.ID, detail.PropertyID)
	assert.Equal(t, "2024-03-01", detail.StartDate)
	assert.Equal(t, "2025-02-28", detail.EndDate)
	assert.Equal(t, int64(150000), detail.RentAmount)
	assert.Equal(t, domain.LeaseStatusActive, detail.Status)
	assert.Empty(t, detail.Payments)
	assert.Equal(t, int64(150000), detail.BalanceDue)
}

func TestLease_CreateValidation(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	prop := h.property(t, h.landlord)

	tests := []struct {
		name string
		body map[string]any
	}{
		{
			name: "end before start",
			body: map[string]any{
				"tenant_id": h.tenant.ID, "property_id": prop.ID,
				"start_date": "2024-06-01", "end_date": "2024-05-31", "rent_amount": 1000,
			},
		},
		{
			name: "negative rent",
			body: map[string]any{
				"tenant_id": h.tenant.ID, "property_id": prop.ID,
				"start_date": "2024-01-01", "end_date": "2024-12-31", "rent_amount": -1,
			},
		},
		{
			name: "bad date",
			body: map[string]any{
				"tenant_id": h.tenant.ID, "property_id": prop.ID,
				"start_date": "01/01/2024", "end_date": "2024-12-31", "rent_amount": 1000,
			},
		},
		{
			name: "tenant is a landlord",
			body: map[string]any{
				"tenant_id": h.landlord.ID, "property_id": prop.ID,
				"start_date": "2024-01-01", "end_date": "2024-12-31", "rent_amount": 1000,
			},
		},
		{
			name: "unknown property",
			body: map[string]any{
				"tenant_id": h.tenant.ID, "property_id": 9999,
				"start_date": "2024-01-01", "end_date": "2024-12-31", "rent_amount": 1000,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp := h.api.PostCtx(as(h.admin), "/leases", tt.body)

			assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
			env := decode(t, resp)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestLease_TenantCannotCreate(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	prop := h.property(t, h.landlord)

	resp := h.api.PostCtx(as(h.tenant), "/leases", map[string]any{
		"tenant_id": h.tenant.ID, "property_id": prop.ID,
		"start_date": "2024-01-01", "end_date": "2024-12-31", "rent_amount": 1,
	})

	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestLease_Balance(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	lease := h.lease(t, h.tenant, 120000)

	for _, amount := range []int64{50000, 30000} {
		resp := h.api.PostCtx(as(h.landlord), "/payments", map[string]any{
			"lease_id": lease.ID,
			"amount":   amount,
		})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	}

	resp := h.api.GetCtx(as(h.tenant), fmt.Sprintf("/leases/%d", lease.ID))

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	detail := decodeData[v1.LeaseDetail](t, resp)
	assert.Equal(t, int64(120000), detail.TotalRent)
	assert.Equal(t, int64(80000), detail.TotalPaid)
	assert.Equal(t, int64(40000), detail.BalanceDue)
	assert.Len(t, detail.Payments, 2)
}

func TestLease_Update(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	lease := h.lease(t, h.tenant, 100000)

	resp := h.api.PutCtx(as(h.landlord), fmt.Sprintf("/leases/%d", lease.ID), map[string]any{
		"status":      "ended",
		"rent_amount": 110000,
	})

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decodeData[domain.Lease](t, resp)
	assert.Equal(t, domain.LeaseStatusEnded, updated.Status)
	assert.Equal(t, int64(110000), updated.RentAmount)
	assert.Equal(t, lease.StartDate, updated.StartDate)
}

func TestLease_DeleteCascades(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	lease := h.lease(t, h.tenant, 100000)

	pay := h.api.PostCtx(as(h.admin), "/payments", map[string]any{"lease_id": lease.ID, "amount": 100000})
	require.Equal(t, http.StatusOK, pay.Code, pay.Body.String())
	inv := h.api.PostCtx(as(h.admin), "/invoices", map[string]any{
		"lease_id": lease.ID, "period_start": "2024-01-01", "period_end": "2024-01-31", "amount_cents": 100000,
	})
	require.Equal(t, http.StatusOK, inv.Code, inv.Body.String())

	t.Run("landlord forbidden", func(t *testing.T) {
		resp := h.api.DeleteCtx(as(h.landlord), fmt.Sprintf("/leases/%d", lease.ID))
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("admin deletes", func(t *testing.T) {
		resp := h.api.DeleteCtx(as(h.admin), fmt.Sprintf("/leases/%d", lease.ID))

		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		deleted := decodeData[domain.LeaseDeletion](t, resp)
		assert.Equal(t, lease.ID, deleted.LeaseID)
		assert.Equal(t, int64(1), deleted.Payments)
		assert.Equal(t, int64(1), deleted.Invoices)

		_, err := h.store.Leases().GetByID(ctx, lease.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		entries, err := h.store.Audit().ListByResource(ctx, "lease", lease.ID)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}
