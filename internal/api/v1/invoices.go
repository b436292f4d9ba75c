package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/leasedesk/internal/auth"
	"github.com/gosuda/leasedesk/internal/domain"
)

type ListInvoicesInput struct {
	PageParams
	LeaseID int64                `query:"lease_id" doc:"Filter by lease"`
	Status  domain.InvoiceStatus `query:"status" enum:"Unpaid,Paid" doc:"Filter by status"`
}

type CreateInvoiceInput struct {
	Body struct {
		LeaseID     int64  `json:"lease_id" minimum:"1" doc:"Lease ID"`
		PeriodStart string `json:"period_start" format:"date" doc:"First billed day (YYYY-MM-DD)"`
		PeriodEnd   string `json:"period_end" format:"date" doc:"Last billed day (YYYY-MM-DD)"`
		AmountCents int64  `json:"amount_cents" minimum:"1" doc:"Amount in cents"`
	}
}

// UpdateInvoiceInput has no status field; status only changes through
// receipts.
type UpdateInvoiceInput struct {
	ID   int64 `path:"id" minimum:"1"`
	Body struct {
		PeriodStart *string `json:"period_start,omitempty" format:"date"`
		PeriodEnd   *string `json:"period_end,omitempty" format:"date"`
		AmountCents *int64  `json:"amount_cents,omitempty" minimum:"1"`
	}
}

func RegisterInvoiceRoutes(api huma.API, store DataStore, ledgerSvc Ledger) {
	huma.Register(api, huma.Operation{
		OperationID: "list-invoices",
		Method:      http.MethodGet,
		Path:        "/invoices",
		Summary:     "List invoices",
		Tags:        []string{"Invoices"},
	}, func(ctx context.Context, input *ListInvoicesInput) (*ListOutput[*domain.Invoice], error) {
		caller, err := require(ctx)
		if err != nil {
			return nil, err
		}

		page := input.page()
		invoices, total, err := store.Invoices().List(ctx, domain.InvoiceFilter{
			Scope:   auth.ScopeFor(caller),
			LeaseID: input.LeaseID,
			Status:  input.Status,
		}, page)
		if err != nil {
			return nil, toHTTPError(err, "invoice")
		}
		return listOutput(invoices, page, total), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-invoice",
		Method:      http.MethodGet,
		Path:        "/invoices/{id}",
		Summary:     "Get an invoice",
		Tags:        []string{"Invoices"},
	}, func(ctx context.Context, input *IDInput) (*DataOutput[*domain.Invoice], error) {
		caller, err := require(ctx)
		if err != nil {
			return nil, err
		}

		invoice, err := store.Invoices().GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHTTPError(err, "invoice")
		}
		if _, err := visibleLease(ctx, store, caller, invoice.LeaseID); err != nil {
			return nil, err
		}
		return dataOutput(invoice), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-invoice",
		Method:      http.MethodPost,
		Path:        "/invoices",
		Summary:     "Issue an invoice",
		Tags:        []string{"Invoices"},
	}, func(ctx context.Context, input *CreateInvoiceInput) (*DataOutput[*domain.Invoice], error) {
		if _, err := require(ctx, staff...); err != nil {
			return nil, err
		}

		b := input.Body
		invoice, err := ledgerSvc.IssueInvoice(ctx, b.LeaseID, b.PeriodStart, b.PeriodEnd, b.AmountCents)
		if err != nil {
			return nil, toHTTPError(err, "lease")
		}
		return dataOutput(invoice), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-invoice",
		Method:      http.MethodPut,
		Path:        "/invoices/{id}",
		Summary:     "Update an invoice",
		Tags:        []string{"Invoices"},
	}, func(ctx context.Context, input *UpdateInvoiceInput) (*DataOutput[*domain.Invoice], error) {
		if _, err := require(ctx, staff...); err != nil {
			return nil, err
		}

		invoice, err := store.Invoices().GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHTTPError(err, "invoice")
		}
		if invoice.Status == domain.InvoiceStatusPaid {
			return nil, toHTTPError(domain.ErrAlreadySettled, "invoice")
		}
		if input.Body.PeriodStart != nil {
			invoice.PeriodStart = *input.Body.PeriodStart
		}
		if input.Body.PeriodEnd != nil {
			invoice.PeriodEnd = *input.Body.PeriodEnd
		}
		if input.Body.AmountCents != nil {
			invoice.AmountCents = *input.Body.AmountCents
		}
		if err := invoice.Validate(); err != nil {
			return nil, toHTTPError(err, "invoice")
		}
		invoice.UpdatedAt = time.Now()

		if err := store.Invoices().Update(ctx, invoice); err != nil {
			return nil, toHTTPError(err, "invoice")
		}
		return dataOutput(invoice), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-invoice",
		Method:      http.MethodDelete,
		Path:        "/invoices/{id}",
		Summary:     "Delete an invoice",
		Description: "Fails with 409 while a receipt settles the invoice.",
		Tags:        []string{"Invoices"},
	}, func(ctx context.Context, input *IDInput) (*DataOutput[*domain.Invoice], error) {
		if _, err := require(ctx, domain.RoleAdmin); err != nil {
			return nil, err
		}

		invoice, err := store.Invoices().GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHTTPError(err, "invoice")
		}
		if err := store.Invoices().Delete(ctx, input.ID); err != nil {
			return nil, toHTTPError(err, "invoice")
		}
		return dataOutput(invoice), nil
	})
}
