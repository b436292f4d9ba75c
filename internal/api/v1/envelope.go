package v1

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/leasedesk/internal/auth"
	"github.com/gosuda/leasedesk/internal/domain"
	"github.com/gosuda/leasedesk/internal/server/middleware"
)

// Config returns the huma configuration for the API. Bodies are rendered
// without the $schema link so every response is exactly its envelope.
func Config(version string) huma.Config {
	cfg := huma.DefaultConfig("leasedesk API", version)
	cfg.CreateHooks = nil
	return cfg
}

// Envelope wraps a single record.
type Envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

// ListEnvelope wraps one page of records.
type ListEnvelope[T any] struct {
	Success bool  `json:"success"`
	Data    []T   `json:"data"`
	Page    int   `json:"page"`
	Per     int   `json:"per"`
	Total   int64 `json:"total"`
}

type DataOutput[T any] struct {
	Body Envelope[T]
}

type ListOutput[T any] struct {
	Body ListEnvelope[T]
}

func dataOutput[T any](data T) *DataOutput[T] {
	return &DataOutput[T]{Body: Envelope[T]{Success: true, Data: data}}
}

func listOutput[T any](data []T, page domain.Page, total int64) *ListOutput[T] {
	if data == nil {
		data = []T{}
	}
	return &ListOutput[T]{Body: ListEnvelope[T]{
		Success: true,
		Data:    data,
		Page:    page.Number,
		Per:     page.Per,
		Total:   total,
	}}
}

// PageParams are the paging query parameters shared by list operations.
type PageParams struct {
	Page int `query:"page" minimum:"1" default:"1" doc:"1-based page number"`
	Per  int `query:"per" minimum:"1" maximum:"200" default:"10" doc:"Page size"`
}

func (p PageParams) page() domain.Page {
	return domain.NewPage(p.Page, p.Per)
}

type IDInput struct {
	ID int64 `path:"id" minimum:"1" doc:"Record ID"`
}

// principal returns the caller attached by the identity middleware, or nil.
func principal(ctx context.Context) *domain.Principal {
	p, _ := middleware.PrincipalFromContext(ctx)
	return p
}

// require returns the caller when it holds one of roles. With no roles any
// authenticated caller passes.
func require(ctx context.Context, roles ...domain.Role) (*domain.Principal, error) {
	p := principal(ctx)
	if err := auth.Authorize(p, roles...); err != nil {
		return nil, toHTTPError(err, "")
	}
	return p, nil
}

// visibleLease loads a lease and checks that p may see it.
func visibleLease(ctx context.Context, store DataStore, p *domain.Principal, leaseID int64) (*domain.Lease, error) {
	lease, err := store.Leases().GetByID(ctx, leaseID)
	if err != nil {
		return nil, toHTTPError(err, "lease")
	}
	if err := auth.CanSee(p, lease.TenantID); err != nil {
		return nil, toHTTPError(err, "lease")
	}
	return lease, nil
}

var staff = []domain.Role{domain.RoleLandlord, domain.RoleAdmin}
