// Package notify delivers tenant and operator notifications through the
// notification integrations configured in the store.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/leasedesk/internal/domain"
)

// ErrProviderNotFound is returned when no sink is registered for a provider.
var ErrProviderNotFound = errors.New("notify: provider not found") //nolint:gochecknoglobals // sentinel error

// Sink delivers one notification through a provider.
type Sink interface {
	Send(ctx context.Context, integration *domain.Integration, n *domain.Notification) error
}

// SinkRegistry maps provider names to Sink implementations.
type SinkRegistry interface {
	Get(provider string) (Sink, bool)
}

// IntegrationLister finds configured integrations.
type IntegrationLister interface {
	List(ctx context.Context, f domain.IntegrationFilter, page domain.Page) ([]*domain.Integration, int64, error)
}

// Notifier dispatches notifications through active notification integrations.
type Notifier struct {
	sinks        SinkRegistry
	integrations IntegrationLister
	fallback     Sink
}

// New creates a Notifier. Without a usable active integration it falls
// back to the log sink.
func New(sinks SinkRegistry, integrations IntegrationLister) *Notifier {
	return &Notifier{
		sinks:        sinks,
		integrations: integrations,
		fallback:     LogSink{},
	}
}

// Notify sends n via the first active notification integration that
// accepts it. Falls back to logging if none is configured.
func (n *Notifier) Notify(ctx context.Context, notification *domain.Notification) error {
	active, _, err := n.integrations.List(ctx, domain.IntegrationFilter{
		Type:   domain.IntegrationTypeNotification,
		Status: domain.IntegrationStatusActive,
	}, domain.NewPage(1, domain.MaxPerPage))
	if err != nil {
		return fmt.Errorf("notify.Notifier.Notify: list integrations: %w", err)
	}

	// Try each integration until one succeeds.
	var lastErr error
	for _, integration := range active {
		sendErr := n.NotifyVia(ctx, integration, notification)
		if sendErr == nil {
			return nil
		}
		if errors.Is(sendErr, ErrProviderNotFound) {
			log.Warn().Str("provider", integration.Provider).Msg("notify: no sink for active integration")
			continue
		}
		lastErr = sendErr
	}
	if lastErr != nil {
		return fmt.Errorf("notify.Notifier.Notify: all integrations failed: %w", lastErr)
	}

	if err := n.fallback.Send(ctx, nil, notification); err != nil {
		return fmt.Errorf("notify.Notifier.Notify: fallback: %w", err)
	}
	return nil
}

// NotifyVia sends a notification through one integration directly.
func (n *Notifier) NotifyVia(ctx context.Context, integration *domain.Integration, notification *domain.Notification) error {
	sink, ok := n.sinks.Get(integration.Provider)
	if !ok {
		return fmt.Errorf("notify.Notifier.NotifyVia: provider %q: %w", integration.Provider, ErrProviderNotFound)
	}

	if err := sink.Send(ctx, integration, notification); err != nil {
		return fmt.Errorf("notify.Notifier.NotifyVia: send: %w", err)
	}

	return nil
}
