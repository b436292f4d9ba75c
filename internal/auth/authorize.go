package auth

import (
	"github.com/gosuda/leasedesk/internal/domain"
)

// Authorize admits p when it holds one of allowed. A nil principal is
// unauthenticated; an empty allowed set admits any authenticated principal.
func Authorize(p *domain.Principal, allowed ...domain.Role) error {
	if p == nil {
		return domain.ErrUnauthenticated
	}
	if len(allowed) == 0 || p.HasRole(allowed...) {
		return nil
	}
	return domain.ErrForbidden
}

// ScopeFor returns the row scope for listings made by p. Tenants only see
// their own leases and everything hanging off them.
func ScopeFor(p *domain.Principal) domain.Scope {
	if p != nil && p.Role == domain.RoleTenant {
		return domain.Scope{TenantID: p.ID}
	}
	return domain.Scope{}
}

// CanSee reports whether p may read a row under a lease held by tenantID.
func CanSee(p *domain.Principal, tenantID int64) error {
	if p == nil {
		return domain.ErrUnauthenticated
	}
	if !ScopeFor(p).Allows(tenantID) {
		return domain.ErrForbidden
	}
	return nil
}
