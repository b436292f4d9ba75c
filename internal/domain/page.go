package domain

const (
	DefaultPerPage = 10
	MaxPerPage     = 200
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Per    int
}

// NewPage clamps number and per into a usable page request.
func NewPage(number, per int) Page {
	if number < 1 {
		number = 1
	}
	if per < 1 {
		per = DefaultPerPage
	}
	if per > MaxPerPage {
		per = MaxPerPage
	}
	return Page{Number: number, Per: per}
}

func (p Page) Limit() int  { return p.Per }
func (p Page) Offset() int { return (p.Number - 1) * p.Per }

// Scope restricts a listing to rows reachable by one principal. The zero
// value is unrestricted.
type Scope struct {
	// TenantID limits results to leases (and their children) held by this user.
	TenantID int64
}

// Restricted reports whether the scope filters anything.
func (s Scope) Restricted() bool {
	return s.TenantID != 0
}

// Allows reports whether a lease held by tenantID is visible under s.
func (s Scope) Allows(tenantID int64) bool {
	return !s.Restricted() || s.TenantID == tenantID
}
