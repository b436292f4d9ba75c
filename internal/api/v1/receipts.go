package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/leasedesk/internal/auth"
	"github.com/gosuda/leasedesk/internal/domain"
)

type ListReceiptsInput struct {
	PageParams
	InvoiceID int64 `query:"invoice_id" doc:"Filter by invoice"`
	PaymentID int64 `query:"payment_id" doc:"Filter by payment"`
}

type CreateReceiptInput struct {
	Body struct {
		InvoiceID   int64 `json:"invoice_id" minimum:"1" doc:"Invoice to settle"`
		PaymentID   int64 `json:"payment_id" minimum:"1" doc:"Payment from the same lease"`
		AmountCents int64 `json:"amount_cents,omitempty" minimum:"0" doc:"Defaults to the invoice amount"`
	}
}

func RegisterReceiptRoutes(api huma.API, store DataStore, ledgerSvc Ledger) {
	huma.Register(api, huma.Operation{
		OperationID: "list-receipts",
		Method:      http.MethodGet,
		Path:        "/receipts",
		Summary:     "List receipts",
		Tags:        []string{"Receipts"},
	}, func(ctx context.Context, input *ListReceiptsInput) (*ListOutput[*domain.Receipt], error) {
		caller, err := require(ctx)
		if err != nil {
			return nil, err
		}

		page := input.page()
		receipts, total, err := store.Receipts().List(ctx, domain.ReceiptFilter{
			Scope:     auth.ScopeFor(caller),
			InvoiceID: input.InvoiceID,
			PaymentID: input.PaymentID,
		}, page)
		if err != nil {
			return nil, toHTTPError(err, "receipt")
		}
		return listOutput(receipts, page, total), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-receipt",
		Method:      http.MethodGet,
		Path:        "/receipts/{id}",
		Summary:     "Get a receipt",
		Tags:        []string{"Receipts"},
	}, func(ctx context.Context, input *IDInput) (*DataOutput[*domain.Receipt], error) {
		caller, err := require(ctx)
		if err != nil {
			return nil, err
		}

		receipt, err := store.Receipts().GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHTTPError(err, "receipt")
		}
		invoice, err := store.Invoices().GetByID(ctx, receipt.InvoiceID)
		if err != nil {
			return nil, toHTTPError(err, "invoice")
		}
		if _, err := visibleLease(ctx, store, caller, invoice.LeaseID); err != nil {
			return nil, err
		}
		return dataOutput(receipt), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-receipt",
		Method:      http.MethodPost,
		Path:        "/receipts",
		Summary:     "Settle an invoice with a payment",
		Description: "Marks the invoice Paid and issues a receipt atomically. A second receipt for the same invoice fails with 409.",
		Tags:        []string{"Receipts"},
	}, func(ctx context.Context, input *CreateReceiptInput) (*DataOutput[*domain.Receipt], error) {
		if _, err := require(ctx, staff...); err != nil {
			return nil, err
		}

		b := input.Body
		receipt, err := ledgerSvc.IssueReceipt(ctx, b.InvoiceID, b.PaymentID, b.AmountCents)
		if err != nil {
			return nil, toHTTPError(err, "invoice")
		}
		return dataOutput(receipt), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "void-receipt",
		Method:      http.MethodDelete,
		Path:        "/receipts/{id}",
		Summary:     "Void a receipt",
		Description: "Deletes the receipt and returns its invoice to Unpaid.",
		Tags:        []string{"Receipts"},
	}, func(ctx context.Context, input *IDInput) (*DataOutput[*domain.Receipt], error) {
		caller, err := require(ctx, domain.RoleAdmin)
		if err != nil {
			return nil, err
		}

		receipt, err := ledgerSvc.VoidReceipt(ctx, caller, input.ID)
		if err != nil {
			return nil, toHTTPError(err, "receipt")
		}
		return dataOutput(receipt), nil
	})
}
