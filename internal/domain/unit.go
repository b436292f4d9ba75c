package domain

import (
	"context"
	"strings"
	"time"
)

type UnitStatus string

const (
	UnitStatusAvailable   UnitStatus = "available"
	UnitStatusOccupied    UnitStatus = "occupied"
	UnitStatusMaintenance UnitStatus = "maintenance"
)

func (s UnitStatus) Valid() bool {
	switch s {
	case UnitStatusAvailable, UnitStatusOccupied, UnitStatusMaintenance:
		return true
	default:
		return false
	}
}

type Unit struct {
	ID         int64      `json:"id"`
	PropertyID int64      `json:"property_id"`
	UnitNumber string     `json:"unit_number"`
	RentAmount int64      `json:"rent_amount"` // cents
	Status     UnitStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewUnit creates a Unit, defaulting the status to available.
func NewUnit(propertyID int64, unitNumber string, rentAmount int64, status UnitStatus) (*Unit, error) {
	if status == "" {
		status = UnitStatusAvailable
	}
	u := &Unit{
		PropertyID: propertyID,
		UnitNumber: strings.TrimSpace(unitNumber),
		RentAmount: rentAmount,
		Status:     status,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	return u, nil
}

func (u *Unit) Validate() error {
	if u.PropertyID <= 0 {
		return Invalid("property_id", "is required")
	}
	if u.UnitNumber == "" {
		return Invalid("unit_number", "is required")
	}
	if u.RentAmount < 0 {
		return Invalid("rent_amount", "must not be negative")
	}
	if !u.Status.Valid() {
		return Invalid("status", "must be available, occupied or maintenance")
	}
	return nil
}

type UnitFilter struct {
	PropertyID int64
	Status     UnitStatus
}

type UnitRepository interface {
	Create(ctx context.Context, u *Unit) error
	GetByID(ctx context.Context, id int64) (*Unit, error)
	Update(ctx context.Context, u *Unit) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f UnitFilter, page Page) ([]*Unit, int64, error)
}
