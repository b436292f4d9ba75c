package v1

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/leasedesk/internal/domain"
)

type ListUnitsInput struct {
	PageParams
	PropertyID int64             `query:"property_id" doc:"Filter by property"`
	Status     domain.UnitStatus `query:"status" enum:"available,occupied,maintenance" doc:"Filter by status"`
}

type CreateUnitInput struct {
	Body struct {
		PropertyID int64             `json:"property_id" minimum:"1" doc:"Property ID"`
		UnitNumber string            `json:"unit_number" minLength:"1" maxLength:"50" doc:"Unit number"`
		RentAmount int64             `json:"rent_amount" minimum:"0" doc:"Monthly rent in cents"`
		Status     domain.UnitStatus `json:"status,omitempty" enum:"available,occupied,maintenance"`
	}
}

type UpdateUnitInput struct {
	ID   int64 `path:"id" minimum:"1"`
	Body struct {
		UnitNumber *string            `json:"unit_number,omitempty" minLength:"1" maxLength:"50"`
		RentAmount *int64             `json:"rent_amount,omitempty" minimum:"0"`
		Status     *domain.UnitStatus `json:"status,omitempty" enum:"available,occupied,maintenance"`
	}
}

func RegisterUnitRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-units",
		Method:      http.MethodGet,
		Path:        "/units",
		Summary:     "List units",
		Tags:        []string{"Units"},
	}, func(ctx context.Context, input *ListUnitsInput) (*ListOutput[*domain.Unit], error) {
		if _, err := require(ctx); err != nil {
			return nil, err
		}

		page := input.page()
		units, total, err := store.Units().List(ctx, domain.UnitFilter{
			PropertyID: input.PropertyID,
			Status:     input.Status,
		}, page)
		if err != nil {
			return nil, toHTTPError(err, "unit")
		}
		return listOutput(units, page, total), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-unit",
		Method:      http.MethodGet,
		Path:        "/units/{id}",
		Summary:     "Get a unit",
		Tags:        []string{"Units"},
	}, func(ctx context.Context, input *IDInput) (*DataOutput[*domain.Unit], error) {
		if _, err := require(ctx); err != nil {
			return nil, err
		}

		unit, err := store.Units().GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHTTPError(err, "unit")
		}
		return dataOutput(unit), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-unit",
		Method:      http.MethodPost,
		Path:        "/units",
		Summary:     "Create a unit",
		Tags:        []string{"Units"},
	}, func(ctx context.Context, input *CreateUnitInput) (*DataOutput[*domain.Unit], error) {
		if _, err := require(ctx, staff...); err != nil {
			return nil, err
		}

		unit, err := domain.NewUnit(input.Body.PropertyID, input.Body.UnitNumber, input.Body.RentAmount, input.Body.Status)
		if err != nil {
			return nil, toHTTPError(err, "unit")
		}
		if err := store.Units().Create(ctx, unit); err != nil {
			return nil, toHTTPError(err, "unit")
		}
		return dataOutput(unit), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-unit",
		Method:      http.MethodPut,
		Path:        "/units/{id}",
		Summary:     "Update a unit",
		Tags:        []string{"Units"},
	}, func(ctx context.Context, input *UpdateUnitInput) (*DataOutput[*domain.Unit], error) {
		if _, err := require(ctx, staff...); err != nil {
			return nil, err
		}

		unit, err := store.Units().GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHTTPError(err, "unit")
		}
		if input.Body.UnitNumber != nil {
			unit.UnitNumber = strings.TrimSpace(*input.Body.UnitNumber)
		}
		if input.Body.RentAmount != nil {
			unit.RentAmount = *input.Body.RentAmount
		}
		if input.Body.Status != nil {
			unit.Status = *input.Body.Status
		}
		if err := unit.Validate(); err != nil {
			return nil, toHTTPError(err, "unit")
		}
		unit.UpdatedAt = time.Now()

		if err := store.Units().Update(ctx, unit); err != nil {
			return nil, toHTTPError(err, "unit")
		}
		return dataOutput(unit), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-unit",
		Method:      http.MethodDelete,
		Path:        "/units/{id}",
		Summary:     "Delete a unit",
		Tags:        []string{"Units"},
	}, func(ctx context.Context, input *IDInput) (*DataOutput[*domain.Unit], error) {
		if _, err := require(ctx, domain.RoleAdmin); err != nil {
			return nil, err
		}

		unit, err := store.Units().GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHTTPError(err, "unit")
		}
		if err := store.Units().Delete(ctx, input.ID); err != nil {
			return nil, toHTTPError(err, "unit")
		}
		return dataOutput(unit), nil
	})
}
