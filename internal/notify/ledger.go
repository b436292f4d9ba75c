package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gosuda/leasedesk/internal/domain"
	"github.com/gosuda/leasedesk/internal/ledger"
)

// Dispatcher sends one notification. *Notifier satisfies this interface.
type Dispatcher interface {
	Notify(ctx context.Context, n *domain.Notification) error
}

// Directory resolves a lease to its tenant.
type Directory interface {
	Leases() domain.LeaseRepository
	Users() domain.UserRepository
}

// LedgerHook turns invoice events into notifications to the lease's tenant.
// It is a ledger.Publisher so it can sit next to the event feed.
type LedgerHook struct {
	dispatcher Dispatcher
	dir        Directory
}

func NewLedgerHook(dispatcher Dispatcher, dir Directory) *LedgerHook {
	return &LedgerHook{dispatcher: dispatcher, dir: dir}
}

type ledgerEvent struct {
	Type    string          `json:"type"`
	LeaseID int64           `json:"lease_id"`
	Data    json.RawMessage `json:"data"`
}

// Publish notifies on invoice.issued and invoice.settled and ignores every
// other event.
func (h *LedgerHook) Publish(ctx context.Context, _ string, payload []byte) error {
	var evt ledgerEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return fmt.Errorf("notify.LedgerHook: decode event: %w", err)
	}

	var message string
	switch evt.Type {
	case ledger.EventInvoiceIssued:
		var inv domain.Invoice
		if err := json.Unmarshal(evt.Data, &inv); err != nil {
			return fmt.Errorf("notify.LedgerHook: decode invoice: %w", err)
		}
		message = fmt.Sprintf("Invoice #%d for %s to %s issued: %s due.",
			inv.ID, inv.PeriodStart, inv.PeriodEnd, FormatCents(inv.AmountCents))
	case ledger.EventInvoiceSettled:
		var rc domain.Receipt
		if err := json.Unmarshal(evt.Data, &rc); err != nil {
			return fmt.Errorf("notify.LedgerHook: decode receipt: %w", err)
		}
		message = fmt.Sprintf("Invoice #%d paid: receipt %s for %s.",
			rc.InvoiceID, rc.ReceiptNumber, FormatCents(rc.AmountCents))
	default:
		return nil
	}

	to, err := h.tenantEmail(ctx, evt.LeaseID)
	if err != nil {
		return fmt.Errorf("notify.LedgerHook: %w", err)
	}

	if err := h.dispatcher.Notify(ctx, domain.NewNotification(evt.Type, to, message)); err != nil {
		return fmt.Errorf("notify.LedgerHook: %w", err)
	}
	return nil
}

func (h *LedgerHook) tenantEmail(ctx context.Context, leaseID int64) (string, error) {
	lease, err := h.dir.Leases().GetByID(ctx, leaseID)
	if err != nil {
		return "", fmt.Errorf("lease %d: %w", leaseID, err)
	}
	tenant, err := h.dir.Users().GetByID(ctx, lease.TenantID)
	if err != nil {
		return "", fmt.Errorf("tenant %d: %w", lease.TenantID, err)
	}
	return tenant.Email, nil
}

// FormatCents renders an amount of cents as units with two decimals.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
