package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/leasedesk/internal/auth"
	"github.com/gosuda/leasedesk/internal/domain"
)

// ErrorBody is the error envelope returned by every operation.
type ErrorBody struct {
	Success bool   `json:"success"`
	Message string `json:"error" doc:"Human readable error message"`
	status  int
}

func (e *ErrorBody) Error() string  { return e.Message }
func (e *ErrorBody) GetStatus() int { return e.status }

func init() {
	huma.NewError = newError
}

// newError renders huma errors, including request validation failures,
// as the {success:false,error} envelope. Validation failures use 400.
func newError(status int, msg string, errs ...error) huma.StatusError {
	if status == http.StatusUnprocessableEntity {
		status = http.StatusBadRequest
	}

	if status >= http.StatusInternalServerError {
		for _, err := range errs {
			if err != nil {
				log.Error().Err(err).Int("status", status).Msg(msg)
			}
		}
		return &ErrorBody{Message: msg, status: status}
	}

	details := make([]string, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			details = append(details, err.Error())
		}
	}
	if len(details) > 0 {
		msg = msg + ": " + strings.Join(details, "; ")
	}
	return &ErrorBody{Message: msg, status: status}
}

// toHTTPError maps domain errors onto HTTP status errors. what names the
// resource for not-found and conflict messages.
func toHTTPError(err error, what string) error {
	var ve *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return huma.Error401Unauthorized("authentication required")
	case errors.Is(err, domain.ErrForbidden):
		return huma.Error403Forbidden("forbidden")
	case errors.As(err, &ve):
		return huma.Error400BadRequest(ve.Error())
	case errors.Is(err, domain.ErrValidation):
		return huma.Error400BadRequest("validation failed")
	case errors.Is(err, domain.ErrInvalidReference):
		return huma.Error400BadRequest("referenced record does not exist")
	case errors.Is(err, auth.ErrEmailTaken):
		return huma.Error400BadRequest("Email already exists")
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound(what + " not found")
	case errors.Is(err, domain.ErrAlreadySettled):
		return huma.Error409Conflict("invoice already settled")
	case errors.Is(err, domain.ErrConflict):
		return huma.Error409Conflict(what + " conflicts with existing records")
	default:
		return huma.Error500InternalServerError("internal server error", err)
	}
}
