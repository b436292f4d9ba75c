package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/leasedesk/internal/auth"
	"github.com/gosuda/leasedesk/internal/domain"
)

type ListUsersInput struct {
	PageParams
	Role domain.Role `query:"role" enum:"tenant,landlord,admin" doc:"Filter by role"`
}

type CreateUserInput struct {
	Body struct {
		Name     string      `json:"name" minLength:"2" maxLength:"100" doc:"Display name"`
		Email    string      `json:"email" minLength:"3" maxLength:"255" doc:"User email"`
		Password string      `json:"password" minLength:"6" maxLength:"128" doc:"Password"` //nolint:gosec // G117: credential DTO
		Role     domain.Role `json:"role,omitempty" enum:"tenant,landlord,admin" doc:"Role, defaults to tenant"`
	}
}

type UpdateUserInput struct {
	ID   int64 `path:"id" minimum:"1"`
	Body struct {
		Name     *string      `json:"name,omitempty" minLength:"2" maxLength:"100"`
		Email    *string      `json:"email,omitempty" minLength:"3" maxLength:"255"`
		Password *string      `json:"password,omitempty" minLength:"6" maxLength:"128"` //nolint:gosec // G117: credential DTO
		Role     *domain.Role `json:"role,omitempty" enum:"tenant,landlord,admin" doc:"Admin only"`
	}
}

func RegisterUserRoutes(api huma.API, store DataStore, authSvc AuthService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-users",
		Method:      http.MethodGet,
		Path:        "/users",
		Summary:     "List users",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *ListUsersInput) (*ListOutput[*domain.User], error) {
		if _, err := require(ctx, domain.RoleAdmin); err != nil {
			return nil, err
		}

		page := input.page()
		users, total, err := store.Users().List(ctx, domain.UserFilter{Role: input.Role}, page)
		if err != nil {
			return nil, toHTTPError(err, "user")
		}
		return listOutput(users, page, total), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-user",
		Method:      http.MethodPost,
		Path:        "/users",
		Summary:     "Create a user",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *CreateUserInput) (*DataOutput[*domain.User], error) {
		caller, err := require(ctx, domain.RoleAdmin)
		if err != nil {
			return nil, err
		}

		user, err := authSvc.Signup(ctx, caller, auth.SignupRequest{
			Name:     input.Body.Name,
			Email:    input.Body.Email,
			Password: input.Body.Password,
			Role:     input.Body.Role,
		})
		if err != nil {
			return nil, toHTTPError(err, "user")
		}
		return dataOutput(user), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-user",
		Method:      http.MethodGet,
		Path:        "/users/{id}",
		Summary:     "Get a user",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *IDInput) (*DataOutput[*domain.User], error) {
		caller, err := require(ctx)
		if err != nil {
			return nil, err
		}
		if caller.ID != input.ID && caller.Role != domain.RoleAdmin {
			return nil, huma.Error403Forbidden("forbidden")
		}

		user, err := store.Users().GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHTTPError(err, "user")
		}
		return dataOutput(user), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-user",
		Method:      http.MethodPut,
		Path:        "/users/{id}",
		Summary:     "Update a user",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *UpdateUserInput) (*DataOutput[*domain.User], error) {
		caller, err := require(ctx)
		if err != nil {
			return nil, err
		}
		isAdmin := caller.Role == domain.RoleAdmin
		if caller.ID != input.ID && !isAdmin {
			return nil, huma.Error403Forbidden("forbidden")
		}
		if input.Body.Role != nil && !isAdmin {
			return nil, huma.Error403Forbidden("only admins may change roles")
		}

		user, err := store.Users().GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHTTPError(err, "user")
		}

		name, email, role := user.Name, user.Email, user.Role
		if input.Body.Name != nil {
			name = *input.Body.Name
		}
		if input.Body.Email != nil {
			email = *input.Body.Email
		}
		if input.Body.Role != nil {
			role = *input.Body.Role
		}
		checked, err := domain.NewUser(name, email, role)
		if err != nil {
			return nil, toHTTPError(err, "user")
		}
		previousRole := user.Role
		staleSessions := checked.Role != user.Role || checked.Email != user.Email
		user.Name, user.Email, user.Role = checked.Name, checked.Email, checked.Role

		if input.Body.Password != nil {
			hash, err := auth.HashPassword(*input.Body.Password)
			if err != nil {
				return nil, toHTTPError(err, "user")
			}
			user.PasswordHash = hash
		}
		user.UpdatedAt = time.Now()

		if err := store.Users().Update(ctx, user); err != nil {
			return nil, toHTTPError(err, "user")
		}
		if staleSessions {
			if err := authSvc.EndUserSessions(ctx, user.ID); err != nil {
				return nil, toHTTPError(err, "user")
			}
		}
		if user.Role != previousRole {
			entry := domain.NewAuditEntry(caller.ID, "user.role_changed", "user", user.ID)
			entry.Details["from"] = string(previousRole)
			entry.Details["to"] = string(user.Role)
			recordAudit(ctx, store, entry)
		}
		return dataOutput(user), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-user",
		Method:      http.MethodDelete,
		Path:        "/users/{id}",
		Summary:     "Delete a user",
		Description: "Fails with 409 while the user owns properties or holds leases.",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *IDInput) (*DataOutput[*domain.User], error) {
		caller, err := require(ctx, domain.RoleAdmin)
		if err != nil {
			return nil, err
		}
		if caller.ID == input.ID {
			return nil, huma.Error400BadRequest("cannot delete your own account")
		}

		user, err := store.Users().GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHTTPError(err, "user")
		}
		if err := store.Users().Delete(ctx, input.ID); err != nil {
			return nil, toHTTPError(err, "user")
		}
		if err := authSvc.EndUserSessions(ctx, input.ID); err != nil {
			return nil, toHTTPError(err, "user")
		}

		entry := domain.NewAuditEntry(caller.ID, "user.deleted", "user", user.ID)
		entry.Details["email"] = user.Email
		entry.Details["role"] = string(user.Role)
		recordAudit(ctx, store, entry)

		return dataOutput(user), nil
	})
}
