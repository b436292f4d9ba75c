package ws

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"

	"github.com/gosuda/leasedesk/internal/domain"
	"github.com/gosuda/leasedesk/internal/ledger"
	"github.com/gosuda/leasedesk/internal/server/middleware"
)

// Subscriber abstracts the pub/sub subscribe operation.
// *redis.Store and *memory.Broker satisfy this interface.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error)
}

// Hub serves WebSocket ledger feeds backed by pub/sub.
type Hub struct {
	subscriber Subscriber
	leases     domain.LeaseRepository
}

// NewHub creates a new WebSocket hub.
func NewHub(subscriber Subscriber, leases domain.LeaseRepository) *Hub {
	return &Hub{subscriber: subscriber, leases: leases}
}

// ServeLease streams ledger events for one lease. Subscribes to channel
// "lease:<leaseID>" and forwards each ledger.Event as a text frame.
func (h *Hub) ServeLease(w http.ResponseWriter, r *http.Request) {
	leaseID, err := strconv.ParseInt(chi.URLParam(r, "leaseID"), 10, 64)
	if err != nil || leaseID <= 0 {
		middleware.WriteError(w, http.StatusBadRequest, "invalid lease id")
		return
	}

	if _, err := h.leases.GetByID(r.Context(), leaseID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "lease not found")
			return
		}
		log.Error().Err(err).Int64("lease_id", leaseID).Msg("websocket lease lookup")
		middleware.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	// Clients only listen; CloseRead handles control frames and cancels
	// ctx once the peer goes away.
	ctx := conn.CloseRead(r.Context())

	messages, cleanup, err := h.subscriber.Subscribe(ctx, ledger.LeaseChannel(leaseID))
	if err != nil {
		log.Error().Err(err).Msg("websocket subscribe")
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg, msgOK := <-messages:
			if !msgOK {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if writeErr := conn.Write(ctx, websocket.MessageText, msg); writeErr != nil {
				log.Debug().Err(writeErr).Msg("websocket write")
				return
			}
		}
	}
}
