package domain

import (
	"context"
	"strings"
	"time"
)

type IntegrationType string

const (
	IntegrationTypeBilling      IntegrationType = "billing"
	IntegrationTypeNotification IntegrationType = "notification"
)

func (t IntegrationType) Valid() bool {
	return t == IntegrationTypeBilling || t == IntegrationTypeNotification
}

type IntegrationStatus string

const (
	IntegrationStatusActive   IntegrationStatus = "active"
	IntegrationStatusInactive IntegrationStatus = "inactive"
)

func (s IntegrationStatus) Valid() bool {
	return s == IntegrationStatusActive || s == IntegrationStatusInactive
}

// Integration is a configured third-party provider: a billing gateway or a
// notification channel such as sms or email.
type Integration struct {
	ID       int64             `json:"id"`
	Provider string            `json:"provider"`
	Type     IntegrationType   `json:"type"`
	Status   IntegrationStatus `json:"status"`
	// APIKey is write-only over the API.
	APIKey    string    `json:"-"`
	HasAPIKey bool      `json:"has_api_key"`
	CreatedAt time.Time `json:"created_at"`
}

// NewIntegration creates an Integration, defaulting the status to inactive.
func NewIntegration(provider string, typ IntegrationType, status IntegrationStatus, apiKey string) (*Integration, error) {
	if status == "" {
		status = IntegrationStatusInactive
	}
	i := &Integration{
		Provider:  strings.ToLower(strings.TrimSpace(provider)),
		Type:      typ,
		Status:    status,
		APIKey:    strings.TrimSpace(apiKey),
		CreatedAt: time.Now(),
	}
	i.HasAPIKey = i.APIKey != ""
	if err := i.Validate(); err != nil {
		return nil, err
	}
	return i, nil
}

func (i *Integration) Validate() error {
	if i.Provider == "" {
		return Invalid("provider", "is required")
	}
	if !i.Type.Valid() {
		return Invalid("type", "must be billing or notification")
	}
	if !i.Status.Valid() {
		return Invalid("status", "must be active or inactive")
	}
	return nil
}

type IntegrationFilter struct {
	Type   IntegrationType
	Status IntegrationStatus
}

type IntegrationRepository interface {
	Create(ctx context.Context, i *Integration) error
	List(ctx context.Context, f IntegrationFilter, page Page) ([]*Integration, int64, error)
}
