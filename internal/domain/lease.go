package domain

import (
	"context"
	"time"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = time.DateOnly

type LeaseStatus string

const (
	LeaseStatusActive     LeaseStatus = "active"
	LeaseStatusEnded      LeaseStatus = "ended"
	LeaseStatusTerminated LeaseStatus = "terminated"
)

func (s LeaseStatus) Valid() bool {
	switch s {
	case LeaseStatusActive, LeaseStatusEnded, LeaseStatusTerminated:
		return true
	default:
		return false
	}
}

type Lease struct {
	ID         int64       `json:"id"`
	TenantID   int64       `json:"tenant_id"`
	PropertyID int64       `json:"property_id"`
	UnitID     *int64      `json:"unit_id,omitempty"`
	StartDate  string      `json:"start_date"`
	EndDate    string      `json:"end_date"`
	RentAmount int64       `json:"rent_amount"` // cents
	Status     LeaseStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// NewLease creates a Lease, defaulting the status to active.
func NewLease(tenantID, propertyID int64, unitID *int64, startDate, endDate string, rentAmount int64, status LeaseStatus) (*Lease, error) {
	if status == "" {
		status = LeaseStatusActive
	}
	now := time.Now()
	l := &Lease{
		TenantID:   tenantID,
		PropertyID: propertyID,
		UnitID:     unitID,
		StartDate:  startDate,
		EndDate:    endDate,
		RentAmount: rentAmount,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Validate checks the lease invariants: rent_amount >= 0 and
// end_date >= start_date.
func (l *Lease) Validate() error {
	if l.TenantID <= 0 {
		return Invalid("tenant_id", "is required")
	}
	if l.PropertyID <= 0 {
		return Invalid("property_id", "is required")
	}
	if l.RentAmount < 0 {
		return Invalid("rent_amount", "must not be negative")
	}
	if !l.Status.Valid() {
		return Invalid("status", "must be active, ended or terminated")
	}
	return ValidatePeriod("start_date", l.StartDate, "end_date", l.EndDate)
}

// ValidatePeriod parses two dates and checks that end is not before start.
func ValidatePeriod(startField, start, endField, end string) error {
	from, err := time.Parse(DateLayout, start)
	if err != nil {
		return Invalid(startField, "must be a YYYY-MM-DD date")
	}
	to, err := time.Parse(DateLayout, end)
	if err != nil {
		return Invalid(endField, "must be a YYYY-MM-DD date")
	}
	if to.Before(from) {
		return Invalid(endField, "must not be before "+startField)
	}
	return nil
}

type LeaseFilter struct {
	Scope      Scope
	TenantID   int64
	PropertyID int64
	Status     LeaseStatus
}

// LeaseDeletion reports what a cascading lease delete removed.
type LeaseDeletion struct {
	LeaseID  int64 `json:"lease_id"`
	Payments int64 `json:"payments"`
	Invoices int64 `json:"invoices"`
	Receipts int64 `json:"receipts"`
}

type LeaseRepository interface {
	Create(ctx context.Context, l *Lease) error
	GetByID(ctx context.Context, id int64) (*Lease, error)
	Update(ctx context.Context, l *Lease) error
	List(ctx context.Context, f LeaseFilter, page Page) ([]*Lease, int64, error)
	// DeleteCascade removes the lease with its payments, invoices and
	// receipts in one transaction and records audit (with the removal
	// counts merged into its details) in the same transaction.
	DeleteCascade(ctx context.Context, id int64, audit *AuditEntry) (*LeaseDeletion, error)
}
