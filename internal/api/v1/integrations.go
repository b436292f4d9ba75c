package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/leasedesk/internal/domain"
)

type ListIntegrationsInput struct {
	PageParams
	Type   domain.IntegrationType   `query:"type" enum:"billing,notification" doc:"Filter by type"`
	Status domain.IntegrationStatus `query:"status" enum:"active,inactive" doc:"Filter by status"`
}

type CreateIntegrationInput struct {
	Body struct {
		Provider string                   `json:"provider" minLength:"1" maxLength:"100" doc:"Provider name, e.g. stripe or sms_gateway"`
		Type     domain.IntegrationType   `json:"type" enum:"billing,notification"`
		Status   domain.IntegrationStatus `json:"status,omitempty" enum:"active,inactive" doc:"Defaults to inactive"`
		APIKey   string                   `json:"api_key,omitempty" maxLength:"512" doc:"Provider credential; never returned"` //nolint:gosec // G117: write-only credential
	}
}

func RegisterIntegrationRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-integrations",
		Method:      http.MethodGet,
		Path:        "/integrations",
		Summary:     "List third-party integrations",
		Tags:        []string{"Integrations"},
	}, func(ctx context.Context, input *ListIntegrationsInput) (*ListOutput[*domain.Integration], error) {
		if _, err := require(ctx, domain.RoleAdmin); err != nil {
			return nil, err
		}

		page := input.page()
		integrations, total, err := store.Integrations().List(ctx, domain.IntegrationFilter{
			Type:   input.Type,
			Status: input.Status,
		}, page)
		if err != nil {
			return nil, toHTTPError(err, "integration")
		}
		return listOutput(integrations, page, total), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-integration",
		Method:      http.MethodPost,
		Path:        "/integrations",
		Summary:     "Register a third-party integration",
		Description: "Fails with 409 when the provider is already registered for the type.",
		Tags:        []string{"Integrations"},
	}, func(ctx context.Context, input *CreateIntegrationInput) (*DataOutput[*domain.Integration], error) {
		caller, err := require(ctx, domain.RoleAdmin)
		if err != nil {
			return nil, err
		}

		b := input.Body
		integration, err := domain.NewIntegration(b.Provider, b.Type, b.Status, b.APIKey)
		if err != nil {
			return nil, toHTTPError(err, "integration")
		}
		if err := store.Integrations().Create(ctx, integration); err != nil {
			return nil, toHTTPError(err, "integration")
		}

		entry := domain.NewAuditEntry(caller.ID, "integration.created", "integration", integration.ID)
		entry.Details["provider"] = integration.Provider
		entry.Details["type"] = string(integration.Type)
		recordAudit(ctx, store, entry)

		return dataOutput(integration), nil
	})
}

// recordAudit writes entry after the change it describes has been applied.
// A failure is logged; the change itself stands.
func recordAudit(ctx context.Context, store DataStore, entry *domain.AuditEntry) {
	if err := store.Audit().Record(ctx, entry); err != nil {
		log.Error().Err(err).
			Str("action", entry.Action).
			Int64("resource_id", entry.ResourceID).
			Msg("audit: failed to record entry")
	}
}
