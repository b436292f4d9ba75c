package domain

import (
	"context"
	"net/mail"
	"strings"
	"time"
)

type Role string

const (
	RoleTenant   Role = "tenant"
	RoleLandlord Role = "landlord"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the supported roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTenant, RoleLandlord, RoleAdmin:
		return true
	default:
		return false
	}
}

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // argon2id
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal returns the identity attached to requests made by u.
func (u *User) Principal() *Principal {
	return &Principal{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Principal is the authenticated identity of a request. It is never
// persisted on its own; the user row is the source of truth.
type Principal struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// HasRole reports whether p holds one of roles.
func (p *Principal) HasRole(roles ...Role) bool {
	if p == nil {
		return false
	}
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUser validates the profile fields and returns an unsaved user.
func NewUser(name, email string, role Role) (*User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if len(name) < 2 || len(name) > 100 {
		return nil, Invalid("name", "must be 2-100 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, Invalid("email", "must be a valid address")
	}
	if role == "" {
		role = RoleTenant
	}
	if !role.Valid() {
		return nil, Invalid("role", "must be tenant, landlord or admin")
	}
	now := time.Now()
	return &User{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

type UserFilter struct {
	Role Role
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	// CreateIfEmpty inserts u only when no user exists yet, atomically with
	// the emptiness check. It reports whether u was inserted.
	CreateIfEmpty(ctx context.Context, u *User) (bool, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f UserFilter, page Page) ([]*User, int64, error)
	Count(ctx context.Context) (int64, error)
}
