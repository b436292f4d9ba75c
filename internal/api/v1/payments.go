package v1

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/leasedesk/internal/auth"
	"github.com/gosuda/leasedesk/internal/domain"
)

type ListPaymentsInput struct {
	PageParams
	LeaseID int64 `query:"lease_id" doc:"Filter by lease"`
}

type CreatePaymentInput struct {
	Body struct {
		LeaseID int64  `json:"lease_id" minimum:"1" doc:"Lease ID"`
		Amount  int64  `json:"amount" minimum:"1" doc:"Amount in cents"`
		Method  string `json:"method,omitempty" maxLength:"50" doc:"Payment method, defaults to cash"`
		Note    string `json:"note,omitempty" maxLength:"1000"`
	}
}

type UpdatePaymentInput struct {
	ID   int64 `path:"id" minimum:"1"`
	Body struct {
		Amount *int64  `json:"amount,omitempty" minimum:"1"`
		Method *string `json:"method,omitempty" minLength:"1" maxLength:"50"`
		Note   *string `json:"note,omitempty" maxLength:"1000"`
	}
}

func RegisterPaymentRoutes(api huma.API, store DataStore, ledgerSvc Ledger) {
	huma.Register(api, huma.Operation{
		OperationID: "list-payments",
		Method:      http.MethodGet,
		Path:        "/payments",
		Summary:     "List payments",
		Tags:        []string{"Payments"},
	}, func(ctx context.Context, input *ListPaymentsInput) (*ListOutput[*domain.Payment], error) {
		caller, err := require(ctx)
		if err != nil {
			return nil, err
		}

		page := input.page()
		payments, total, err := store.Payments().List(ctx, domain.PaymentFilter{
			Scope:   auth.ScopeFor(caller),
			LeaseID: input.LeaseID,
		}, page)
		if err != nil {
			return nil, toHTTPError(err, "payment")
		}
		return listOutput(payments, page, total), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-payment",
		Method:      http.MethodGet,
		Path:        "/payments/{id}",
		Summary:     "Get a payment",
		Tags:        []string{"Payments"},
	}, func(ctx context.Context, input *IDInput) (*DataOutput[*domain.Payment], error) {
		caller, err := require(ctx)
		if err != nil {
			return nil, err
		}

		payment, err := store.Payments().GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHTTPError(err, "payment")
		}
		if _, err := visibleLease(ctx, store, caller, payment.LeaseID); err != nil {
			return nil, err
		}
		return dataOutput(payment), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-payment",
		Method:      http.MethodPost,
		Path:        "/payments",
		Summary:     "Record a payment against a lease",
		Tags:        []string{"Payments"},
	}, func(ctx context.Context, input *CreatePaymentInput) (*DataOutput[*domain.Payment], error) {
		if _, err := require(ctx, staff...); err != nil {
			return nil, err
		}

		b := input.Body
		payment, err := ledgerSvc.RecordPayment(ctx, b.LeaseID, b.Amount, b.Method, b.Note)
		if err != nil {
			return nil, toHTTPError(err, "lease")
		}
		return dataOutput(payment), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-payment",
		Method:      http.MethodPut,
		Path:        "/payments/{id}",
		Summary:     "Update a payment",
		Tags:        []string{"Payments"},
	}, func(ctx context.Context, input *UpdatePaymentInput) (*DataOutput[*domain.Payment], error) {
		if _, err := require(ctx, staff...); err != nil {
			return nil, err
		}

		payment, err := store.Payments().GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHTTPError(err, "payment")
		}
		if input.Body.Amount != nil {
			payment.Amount = *input.Body.Amount
		}
		if input.Body.Method != nil {
			payment.Method = strings.TrimSpace(*input.Body.Method)
		}
		if input.Body.Note != nil {
			payment.Note = strings.TrimSpace(*input.Body.Note)
		}
		if err := payment.Validate(); err != nil {
			return nil, toHTTPError(err, "payment")
		}

		if err := store.Payments().Update(ctx, payment); err != nil {
			return nil, toHTTPError(err, "payment")
		}
		return dataOutput(payment), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-payment",
		Method:      http.MethodDelete,
		Path:        "/payments/{id}",
		Summary:     "Delete a payment",
		Description: "Fails with 409 while a receipt references the payment.",
		Tags:        []string{"Payments"},
	}, func(ctx context.Context, input *IDInput) (*DataOutput[*domain.Payment], error) {
		if _, err := require(ctx, domain.RoleAdmin); err != nil {
			return nil, err
		}

		payment, err := store.Payments().GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHTTPError(err, "payment")
		}
		if err := store.Payments().Delete(ctx, input.ID); err != nil {
			return nil, toHTTPError(err, "payment")
		}
		return dataOutput(payment), nil
	})
}
