package notify

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/leasedesk/internal/domain"
)

// LogProvider is the provider name LogSink is registered under.
const LogProvider = "log"

// LogSink writes notifications to the structured log.
type LogSink struct{}

func (LogSink) Send(_ context.Context, integration *domain.Integration, n *domain.Notification) error {
	provider := LogProvider
	if integration != nil {
		provider = integration.Provider
	}

	log.Info().
		Str("provider", provider).
		Str("kind", n.Kind).
		Str("to", n.To).
		Str("message", n.Message).
		Time("timestamp", n.Timestamp).
		Msg("notification")
	return nil
}
