package v1

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/leasedesk/internal/domain"
)

type ListPropertiesInput struct {
	PageParams
	OwnerID int64 `query:"owner_id" doc:"Filter by owner"`
}

type CreatePropertyInput struct {
	Body struct {
		Name    string `json:"name" minLength:"1" maxLength:"200" doc:"Property name"`
		Address string `json:"address" minLength:"1" maxLength:"500" doc:"Street address"`
		OwnerID int64  `json:"owner_id,omitempty" doc:"Owner user ID (admin only, defaults to the caller)"`
	}
}

type UpdatePropertyInput struct {
	ID   int64 `path:"id" minimum:"1"`
	Body struct {
		Name    *string `json:"name,omitempty" minLength:"1" maxLength:"200"`
		Address *string `json:"address,omitempty" minLength:"1" maxLength:"500"`
		OwnerID *int64  `json:"owner_id,omitempty" doc:"Admin only"`
	}
}

// PropertyDetail is a property with its units.
type PropertyDetail struct {
	domain.Property
	Units []*domain.Unit `json:"units"`
}

func RegisterPropertyRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-properties",
		Method:      http.MethodGet,
		Path:        "/properties",
		Summary:     "List properties",
		Tags:        []string{"Properties"},
	}, func(ctx context.Context, input *ListPropertiesInput) (*ListOutput[*domain.Property], error) {
		if _, err := require(ctx); err != nil {
			return nil, err
		}

		page := input.page()
		props, total, err := store.Properties().List(ctx, domain.PropertyFilter{OwnerID: input.OwnerID}, page)
		if err != nil {
			return nil, toHTTPError(err, "property")
		}
		return listOutput(props, page, total), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-property",
		Method:      http.MethodGet,
		Path:        "/properties/{id}",
		Summary:     "Get a property with its units",
		Tags:        []string{"Properties"},
	}, func(ctx context.Context, input *IDInput) (*DataOutput[*PropertyDetail], error) {
		if _, err := require(ctx); err != nil {
			return nil, err
		}

		prop, err := store.Properties().GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHTTPError(err, "property")
		}

		units, _, err := store.Units().List(ctx, domain.UnitFilter{PropertyID: prop.ID}, domain.NewPage(1, domain.MaxPerPage))
		if err != nil {
			return nil, toHTTPError(err, "unit")
		}
		if units == nil {
			units = []*domain.Unit{}
		}
		return dataOutput(&PropertyDetail{Property: *prop, Units: units}), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-property",
		Method:      http.MethodPost,
		Path:        "/properties",
		Summary:     "Create a property",
		Tags:        []string{"Properties"},
	}, func(ctx context.Context, input *CreatePropertyInput) (*DataOutput[*domain.Property], error) {
		caller, err := require(ctx, staff...)
		if err != nil {
			return nil, err
		}

		ownerID := caller.ID
		if input.Body.OwnerID != 0 && input.Body.OwnerID != caller.ID {
			if caller.Role != domain.RoleAdmin {
				return nil, huma.Error403Forbidden("only admins may assign another owner")
			}
			ownerID = input.Body.OwnerID
		}

		prop, err := domain.NewProperty(ownerID, input.Body.Name, input.Body.Address)
		if err != nil {
			return nil, toHTTPError(err, "property")
		}
		if err := store.Properties().Create(ctx, prop); err != nil {
			return nil, toHTTPError(err, "property")
		}
		return dataOutput(prop), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-property",
		Method:      http.MethodPut,
		Path:        "/properties/{id}",
		Summary:     "Update a property",
		Tags:        []string{"Properties"},
	}, func(ctx context.Context, input *UpdatePropertyInput) (*DataOutput[*domain.Property], error) {
		caller, err := require(ctx, staff...)
		if err != nil {
			return nil, err
		}

		prop, err := store.Properties().GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHTTPError(err, "property")
		}
		isAdmin := caller.Role == domain.RoleAdmin
		if !isAdmin && prop.OwnerID != caller.ID {
			return nil, huma.Error403Forbidden("only the owner may update this property")
		}
		if input.Body.OwnerID != nil && !isAdmin {
			return nil, huma.Error403Forbidden("only admins may change the owner")
		}

		if input.Body.Name != nil {
			prop.Name = strings.TrimSpace(*input.Body.Name)
		}
		if input.Body.Address != nil {
			prop.Address = strings.TrimSpace(*input.Body.Address)
		}
		if input.Body.OwnerID != nil {
			prop.OwnerID = *input.Body.OwnerID
		}
		if err := prop.Validate(); err != nil {
			return nil, toHTTPError(err, "property")
		}
		prop.UpdatedAt = time.Now()

		if err := store.Properties().Update(ctx, prop); err != nil {
			return nil, toHTTPError(err, "property")
		}
		return dataOutput(prop), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-property",
		Method:      http.MethodDelete,
		Path:        "/properties/{id}",
		Summary:     "Delete a property and its units",
		Description: "Fails with 409 while leases reference the property.",
		Tags:        []string{"Properties"},
	}, func(ctx context.Context, input *IDInput) (*DataOutput[*domain.Property], error) {
		if _, err := require(ctx, domain.RoleAdmin); err != nil {
			return nil, err
		}

		prop, err := store.Properties().GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHTTPError(err, "property")
		}
		if err := store.Properties().Delete(ctx, input.ID); err != nil {
			return nil, toHTTPError(err, "property")
		}
		return dataOutput(prop), nil
	})
}
