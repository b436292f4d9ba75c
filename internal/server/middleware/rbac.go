package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gosuda/leasedesk/internal/auth"
	"github.com/gosuda/leasedesk/internal/domain"
)

// RequireRole returns middleware that checks if the caller has one of the
// allowed roles. It must be chained after Identity.
//
// Returns 401 Unauthorized when no principal is in context and 403 Forbidden
// when the principal's role does not match. No roles admits any
// authenticated caller.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, _ := PrincipalFromContext(r.Context())

			if err := auth.Authorize(p, roles...); err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					WriteError(w, http.StatusUnauthorized, "Unauthorized - login required")
					return
				}
				WriteError(w, http.StatusForbidden, "Forbidden - insufficient role")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// WriteError writes the API error envelope.
func WriteError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Success: false, Error: msg})
}
