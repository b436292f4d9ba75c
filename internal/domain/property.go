package domain

import (
	"context"
	"strings"
	"time"
)

type Property struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProperty creates a Property with validated required fields.
func NewProperty(ownerID int64, name, address string) (*Property, error) {
	p := &Property{
		Name:    strings.TrimSpace(name),
		Address: strings.TrimSpace(address),
		OwnerID: ownerID,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, nil
}

func (p *Property) Validate() error {
	if p.Name == "" {
		return Invalid("name", "is required")
	}
	if p.Address == "" {
		return Invalid("address", "is required")
	}
	if p.OwnerID <= 0 {
		return Invalid("owner_id", "is required")
	}
	return nil
}

type PropertyFilter struct {
	OwnerID int64
}

type PropertyRepository interface {
	Create(ctx context.Context, p *Property) error
	GetByID(ctx context.Context, id int64) (*Property, error)
	Update(ctx context.Context, p *Property) error
	// Delete removes the property and its units. It fails with ErrConflict
	// while leases still reference the property.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f PropertyFilter, page Page) ([]*Property, int64, error)
}
