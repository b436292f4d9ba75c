package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/leasedesk/internal/domain"
)

type ListAuditInput struct {
	Resource   string `query:"resource" required:"true" enum:"lease,receipt,user,integration" doc:"Audited resource type"`
	ResourceID int64  `query:"resource_id" required:"true" minimum:"1" doc:"Audited resource ID"`
}

type AuditOutput struct {
	Body struct {
		Success bool                 `json:"success"`
		Data    []*domain.AuditEntry `json:"data"`
	}
}

func RegisterAuditRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-audit",
		Method:      http.MethodGet,
		Path:        "/audit",
		Summary:     "List audit entries for one record",
		Tags:        []string{"Audit"},
	}, func(ctx context.Context, input *ListAuditInput) (*AuditOutput, error) {
		if _, err := require(ctx, domain.RoleAdmin); err != nil {
			return nil, err
		}

		entries, err := store.Audit().ListByResource(ctx, input.Resource, input.ResourceID)
		if err != nil {
			return nil, toHTTPError(err, "audit entry")
		}

		out := &AuditOutput{}
		out.Body.Success = true
		out.Body.Data = entries
		if out.Body.Data == nil {
			out.Body.Data = []*domain.AuditEntry{}
		}
		return out, nil
	})
}
