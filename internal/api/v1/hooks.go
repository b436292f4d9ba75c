package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/leasedesk/internal/domain"
)

type NotifyInput struct {
	Body struct {
		Kind    string `json:"kind,omitempty" maxLength:"100" doc:"Defaults to generic"`
		To      string `json:"to,omitempty" maxLength:"255" doc:"Recipient; defaults to unknown"`
		Message string `json:"message,omitempty" maxLength:"2000"`
	}
}

type NotifyOutput struct {
	Body struct {
		Success bool                 `json:"success"`
		Logged  *domain.Notification `json:"logged"`
	}
}

func RegisterHookRoutes(api huma.API, notifier Notifier) {
	huma.Register(api, huma.Operation{
		OperationID: "notify",
		Method:      http.MethodPost,
		Path:        "/hooks/notify",
		Summary:     "Send a notification",
		Description: "Dispatches through the active notification integration, or the server log when none is configured.",
		Tags:        []string{"Hooks"},
	}, func(ctx context.Context, input *NotifyInput) (*NotifyOutput, error) {
		if _, err := require(ctx, staff...); err != nil {
			return nil, err
		}

		n := domain.NewNotification(input.Body.Kind, input.Body.To, input.Body.Message)
		if err := notifier.Notify(ctx, n); err != nil {
			return nil, huma.Error502BadGateway("notification delivery failed", err)
		}

		out := &NotifyOutput{}
		out.Body.Success = true
		out.Body.Logged = n
		return out, nil
	})
}
