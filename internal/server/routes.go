package server

import (
	"github.com/danielgtaylor/huma/v2"

	v1 "github.com/gosuda/leasedesk/internal/api/v1"
	"github.com/gosuda/leasedesk/internal/domain"
)

var staff = []domain.Role{domain.RoleLandlord, domain.RoleAdmin}

func registerAPIRoutes(api huma.API, deps Deps, cookies v1.CookieOptions) {
	v1.RegisterSystemRoutes(api, deps.Store, deps.Build)
	v1.RegisterAuthRoutes(api, deps.Auth, cookies)
	v1.RegisterUserRoutes(api, deps.Store, deps.Auth)
	v1.RegisterPropertyRoutes(api, deps.Store)
	v1.RegisterUnitRoutes(api, deps.Store)
	v1.RegisterLeaseRoutes(api, deps.Store, deps.Ledger)
	v1.RegisterPaymentRoutes(api, deps.Store, deps.Ledger)
	v1.RegisterInvoiceRoutes(api, deps.Store, deps.Ledger)
	v1.RegisterReceiptRoutes(api, deps.Store, deps.Ledger)
	v1.RegisterIntegrationRoutes(api, deps.Store)
	v1.RegisterAuditRoutes(api, deps.Store)
	if deps.Notifier != nil {
		v1.RegisterHookRoutes(api, deps.Notifier)
	}
}
