package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/leasedesk/internal/auth"
	"github.com/gosuda/leasedesk/internal/domain"
	"github.com/gosuda/leasedesk/internal/ledger"
)

type ListLeasesInput struct {
	PageParams
	TenantID   int64              `query:"tenant_id" doc:"Filter by tenant"`
	PropertyID int64              `query:"property_id" doc:"Filter by property"`
	Status     domain.LeaseStatus `query:"status" enum:"active,ended,terminated" doc:"Filter by status"`
}

type LeaseBody struct {
	TenantID   int64              `json:"tenant_id" minimum:"1" doc:"Tenant user ID"`
	PropertyID int64              `json:"property_id" minimum:"1" doc:"Property ID"`
	UnitID     *int64             `json:"unit_id,omitempty" minimum:"1" doc:"Unit ID"`
	StartDate  string             `json:"start_date" format:"date" doc:"First day (YYYY-MM-DD)"`
	EndDate    string             `json:"end_date" format:"date" doc:"Last day (YYYY-MM-DD)"`
	RentAmount int64              `json:"rent_amount" minimum:"0" doc:"Rent in cents"`
	Status     domain.LeaseStatus `json:"status,omitempty" enum:"active,ended,terminated"`
}

type CreateLeaseInput struct {
	Body LeaseBody
}

type UpdateLeaseInput struct {
	ID   int64 `path:"id" minimum:"1"`
	Body struct {
		TenantID   *int64              `json:"tenant_id,omitempty" minimum:"1"`
		PropertyID *int64              `json:"property_id,omitempty" minimum:"1"`
		UnitID     *int64              `json:"unit_id,omitempty" minimum:"1"`
		StartDate  *string             `json:"start_date,omitempty" format:"date"`
		EndDate    *string             `json:"end_date,omitempty" format:"date"`
		RentAmount *int64              `json:"rent_amount,omitempty" minimum:"0"`
		Status     *domain.LeaseStatus `json:"status,omitempty" enum:"active,ended,terminated"`
	}
}

// LeaseDetail is a lease with every payment recorded against it and the
// derived balance.
type LeaseDetail struct {
	domain.Lease
	Payments []*domain.Payment `json:"payments"`
	ledger.Balance
}

func RegisterLeaseRoutes(api huma.API, store DataStore, ledgerSvc Ledger) {
	huma.Register(api, huma.Operation{
		OperationID: "list-leases",
		Method:      http.MethodGet,
		Path:        "/leases",
		Summary:     "List leases",
		Description: "Tenants only see their own leases.",
		Tags:        []string{"Leases"},
	}, func(ctx context.Context, input *ListLeasesInput) (*ListOutput[*domain.Lease], error) {
		caller, err := require(ctx)
		if err != nil {
			return nil, err
		}

		page := input.page()
		leases, total, err := store.Leases().List(ctx, domain.LeaseFilter{
			Scope:      auth.ScopeFor(caller),
			TenantID:   input.TenantID,
			PropertyID: input.PropertyID,
			Status:     input.Status,
		}, page)
		if err != nil {
			return nil, toHTTPError(err, "lease")
		}
		return listOutput(leases, page, total), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-lease",
		Method:      http.MethodGet,
		Path:        "/leases/{id}",
		Summary:     "Get a lease with payments and balance",
		Tags:        []string{"Leases"},
	}, func(ctx context.Context, input *IDInput) (*DataOutput[*LeaseDetail], error) {
		caller, err := require(ctx)
		if err != nil {
			return nil, err
		}

		st, err := ledgerSvc.Statement(ctx, input.ID)
		if err != nil {
			return nil, toHTTPError(err, "lease")
		}
		if err := auth.CanSee(caller, st.Lease.TenantID); err != nil {
			return nil, toHTTPError(err, "lease")
		}

		payments := st.Payments
		if payments == nil {
			payments = []*domain.Payment{}
		}
		return dataOutput(&LeaseDetail{Lease: *st.Lease, Payments: payments, Balance: st.Balance}), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-lease",
		Method:      http.MethodPost,
		Path:        "/leases",
		Summary:     "Create a lease",
		Tags:        []string{"Leases"},
	}, func(ctx context.Context, input *CreateLeaseInput) (*DataOutput[*domain.Lease], error) {
		if _, err := require(ctx, staff...); err != nil {
			return nil, err
		}

		b := input.Body
		lease, err := domain.NewLease(b.TenantID, b.PropertyID, b.UnitID, b.StartDate, b.EndDate, b.RentAmount, b.Status)
		if err != nil {
			return nil, toHTTPError(err, "lease")
		}
		if err := checkLeaseTenant(ctx, store, lease.TenantID); err != nil {
			return nil, err
		}
		if err := store.Leases().Create(ctx, lease); err != nil {
			return nil, toHTTPError(err, "lease")
		}
		return dataOutput(lease), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-lease",
		Method:      http.MethodPut,
		Path:        "/leases/{id}",
		Summary:     "Update a lease",
		Tags:        []string{"Leases"},
	}, func(ctx context.Context, input *UpdateLeaseInput) (*DataOutput[*domain.Lease], error) {
		if _, err := require(ctx, staff...); err != nil {
			return nil, err
		}

		lease, err := store.Leases().GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHTTPError(err, "lease")
		}

		b := input.Body
		if b.TenantID != nil {
			if err := checkLeaseTenant(ctx, store, *b.TenantID); err != nil {
				return nil, err
			}
			lease.TenantID = *b.TenantID
		}
		if b.PropertyID != nil {
			lease.PropertyID = *b.PropertyID
		}
		if b.UnitID != nil {
			lease.UnitID = b.UnitID
		}
		if b.StartDate != nil {
			lease.StartDate = *b.StartDate
		}
		if b.EndDate != nil {
			lease.EndDate = *b.EndDate
		}
		if b.RentAmount != nil {
			lease.RentAmount = *b.RentAmount
		}
		if b.Status != nil {
			lease.Status = *b.Status
		}
		if err := lease.Validate(); err != nil {
			return nil, toHTTPError(err, "lease")
		}
		lease.UpdatedAt = time.Now()

		if err := store.Leases().Update(ctx, lease); err != nil {
			return nil, toHTTPError(err, "lease")
		}
		return dataOutput(lease), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-lease",
		Method:      http.MethodDelete,
		Path:        "/leases/{id}",
		Summary:     "Delete a lease with its ledger",
		Description: "Removes the lease together with its payments, invoices and receipts and records an audit entry.",
		Tags:        []string{"Leases"},
	}, func(ctx context.Context, input *IDInput) (*DataOutput[*domain.LeaseDeletion], error) {
		caller, err := require(ctx, domain.RoleAdmin)
		if err != nil {
			return nil, err
		}

		deleted, err := ledgerSvc.DeleteLease(ctx, caller, input.ID)
		if err != nil {
			return nil, toHTTPError(err, "lease")
		}
		return dataOutput(deleted), nil
	})
}

// checkLeaseTenant verifies that id names a user holding the tenant role.
func checkLeaseTenant(ctx context.Context, store DataStore, id int64) error {
	user, err := store.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return huma.Error400BadRequest("tenant_id must reference an existing user")
		}
		return toHTTPError(err, "user")
	}
	if user.Role != domain.RoleTenant {
		return huma.Error400BadRequest("tenant_id must reference a tenant")
	}
	return nil
}
