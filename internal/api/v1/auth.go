package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/leasedesk/internal/auth"
	"github.com/gosuda/leasedesk/internal/domain"
	"github.com/gosuda/leasedesk/internal/server/middleware"
)

type SignupInput struct {
	Body struct {
		Name     string      `json:"name" minLength:"2" maxLength:"100" doc:"Display name"`
		Email    string      `json:"email" minLength:"3" maxLength:"255" doc:"User email"`
		Password string      `json:"password" minLength:"6" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
		Role     domain.Role `json:"role,omitempty" enum:"tenant,landlord,admin" doc:"Role, defaults to tenant"`
	}
}

type SignupOutput struct {
	SetCookie []http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Success bool         `json:"success"`
		User    *domain.User `json:"user"`
	}
}

type LoginInput struct {
	Body struct {
		Email    string `json:"email" minLength:"1" maxLength:"255" doc:"User email"`
		Password string `json:"password" minLength:"1" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
	}
}

type LoginOutput struct {
	SetCookie []http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Success bool         `json:"success"`
		User    *domain.User `json:"user"`
		Token   string       `json:"token"` //nolint:gosec // G117: auth response DTO
	}
}

type WhoamiOutput struct {
	Body struct {
		Success bool              `json:"success"`
		User    *domain.Principal `json:"user"`
	}
}

type LogoutOutput struct {
	SetCookie []http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Success bool `json:"success"`
	}
}

// CookieOptions controls the session cookie written by the auth routes.
type CookieOptions struct {
	Secure bool
}

func sessionCookie(id string, ttl time.Duration, opts CookieOptions) http.Cookie {
	return http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func clearedCookie(opts CookieOptions) http.Cookie {
	return http.Cookie{
		Name:     middleware.SessionCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func RegisterAuthRoutes(api huma.API, authSvc AuthService, opts CookieOptions) {
	huma.Register(api, huma.Operation{
		OperationID: "signup",
		Method:      http.MethodPost,
		Path:        "/signup",
		Summary:     "Create an account",
		Description: "Anonymous callers are signed in. The admin role requires an admin caller unless no users exist yet.",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *SignupInput) (*SignupOutput, error) {
		caller := principal(ctx)

		user, err := authSvc.Signup(ctx, caller, auth.SignupRequest{
			Name:     input.Body.Name,
			Email:    input.Body.Email,
			Password: input.Body.Password,
			Role:     input.Body.Role,
		})
		if err != nil {
			return nil, toHTTPError(err, "user")
		}

		out := &SignupOutput{}
		if caller == nil {
			sid, err := authSvc.StartSession(ctx, user.Principal())
			if err != nil {
				return nil, huma.Error500InternalServerError("signed up but failed to start session", err)
			}
			out.SetCookie = []http.Cookie{sessionCookie(sid, authSvc.SessionTTL(), opts)}
		}
		out.Body.Success = true
		out.Body.User = user
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/login",
		Summary:     "Login with email and password",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
		res, err := authSvc.Login(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				if sid, ok := middleware.SessionIDFromContext(ctx); ok {
					if err := authSvc.Logout(ctx, sid); err != nil {
						log.Warn().Err(err).Msg("login: failed to end previous session")
					}
				}
				return nil, huma.Error400BadRequest("Invalid email or password")
			}
			return nil, huma.Error500InternalServerError("login failed", err)
		}

		out := &LoginOutput{}
		out.SetCookie = []http.Cookie{sessionCookie(res.SessionID, authSvc.SessionTTL(), opts)}
		out.Body.Success = true
		out.Body.User = res.User
		out.Body.Token = res.Token
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "whoami",
		Method:      http.MethodGet,
		Path:        "/_whoami",
		Summary:     "Get the current identity",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, _ *struct{}) (*WhoamiOutput, error) {
		out := &WhoamiOutput{}
		if p := principal(ctx); p != nil {
			out.Body.Success = true
			out.Body.User = p
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/logout",
		Summary:     "End the current session",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, _ *struct{}) (*LogoutOutput, error) {
		if sid, ok := middleware.SessionIDFromContext(ctx); ok {
			if err := authSvc.Logout(ctx, sid); err != nil {
				return nil, huma.Error500InternalServerError("logout failed", err)
			}
		}

		out := &LogoutOutput{}
		out.SetCookie = []http.Cookie{clearedCookie(opts)}
		out.Body.Success = true
		return out, nil
	})
}
