// Package ledger derives lease balances and moves invoices through
// settlement. All writes go through the domain repositories; settlement
// atomicity is the store's job.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/leasedesk/internal/domain"
)

// receiptNumberAttempts bounds retries on receipt number collisions.
const receiptNumberAttempts = 3

// Event types published on a lease channel.
const (
	EventPaymentRecorded = "payment.recorded"
	EventInvoiceIssued   = "invoice.issued"
	EventInvoiceSettled  = "invoice.settled"
	EventReceiptVoided   = "receipt.voided"
	EventLeaseDeleted    = "lease.deleted"
)

// Store is the subset of repositories the ledger works against.
type Store interface {
	Leases() domain.LeaseRepository
	Payments() domain.PaymentRepository
	Invoices() domain.InvoiceRepository
	Receipts() domain.ReceiptRepository
}

// Publisher abstracts the pub/sub publish operation.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Publishers fans each event out to every publisher in order. All of them
// are tried; their errors are joined.
type Publishers []Publisher

func (ps Publishers) Publish(ctx context.Context, channel string, payload []byte) error {
	var errs []error
	for _, p := range ps {
		if err := p.Publish(ctx, channel, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Event is the payload published after a ledger mutation.
type Event struct {
	Type    string    `json:"type"`
	LeaseID int64     `json:"lease_id"`
	Data    any       `json:"data,omitempty"`
	At      time.Time `json:"at"`
}

// LeaseChannel returns the pub/sub channel name for a lease's ledger events.
func LeaseChannel(leaseID int64) string {
	return "lease:" + strconv.FormatInt(leaseID, 10)
}

// Balance is the derived financial state of a lease.
type Balance struct {
	TotalRent  int64 `json:"total_rent"`
	TotalPaid  int64 `json:"total_paid"`
	BalanceDue int64 `json:"balance_due"`
}

// ComputeLeaseBalance sums every payment ever recorded against the lease.
// The balance is not clamped; a negative value is an overpayment.
func ComputeLeaseBalance(lease *domain.Lease, payments []*domain.Payment) Balance {
	var paid int64
	for _, p := range payments {
		paid += p.Amount
	}
	return Balance{
		TotalRent:  lease.RentAmount,
		TotalPaid:  paid,
		BalanceDue: lease.RentAmount - paid,
	}
}

// LeaseStatement is a lease with its payments and derived balance.
type LeaseStatement struct {
	Lease    *domain.Lease
	Payments []*domain.Payment
	Balance  Balance
}

type Service struct {
	store     Store
	publisher Publisher
	numbers   func() string
}

// NewService creates a ledger service. publisher may be nil.
func NewService(store Store, publisher Publisher) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		numbers:   newReceiptNumber,
	}
}

// newReceiptNumber returns RCPT- followed by 8 upper-case hex digits.
func newReceiptNumber() string {
	id := uuid.New()
	return "RCPT-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}

func (s *Service) Statement(ctx context.Context, leaseID int64) (*LeaseStatement, error) {
	lease, err := s.store.Leases().GetByID(ctx, leaseID)
	if err != nil {
		return nil, fmt.Errorf("ledger.Statement: %w", err)
	}

	payments, err := s.store.Payments().ListByLease(ctx, leaseID)
	if err != nil {
		return nil, fmt.Errorf("ledger.Statement: %w", err)
	}

	return &LeaseStatement{
		Lease:    lease,
		Payments: payments,
		Balance:  ComputeLeaseBalance(lease, payments),
	}, nil
}

func (s *Service) RecordPayment(ctx context.Context, leaseID, amount int64, method, note string) (*domain.Payment, error) {
	payment, err := domain.NewPayment(leaseID, amount, method, note)
	if err != nil {
		return nil, fmt.Errorf("ledger.RecordPayment: %w", err)
	}

	if _, err := s.store.Leases().GetByID(ctx, leaseID); err != nil {
		return nil, fmt.Errorf("ledger.RecordPayment: %w", err)
	}

	if err := s.store.Payments().Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("ledger.RecordPayment: %w", err)
	}

	s.publish(ctx, leaseID, EventPaymentRecorded, payment)
	return payment, nil
}

// IssueInvoice creates an Unpaid invoice. Overlapping periods for the same
// lease are not rejected.
func (s *Service) IssueInvoice(ctx context.Context, leaseID int64, periodStart, periodEnd string, amountCents int64) (*domain.Invoice, error) {
	invoice, err := domain.NewInvoice(leaseID, periodStart, periodEnd, amountCents)
	if err != nil {
		return nil, fmt.Errorf("ledger.IssueInvoice: %w", err)
	}

	if _, err := s.store.Leases().GetByID(ctx, leaseID); err != nil {
		return nil, fmt.Errorf("ledger.IssueInvoice: %w", err)
	}

	if err := s.store.Invoices().Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("ledger.IssueInvoice: %w", err)
	}

	s.publish(ctx, leaseID, EventInvoiceIssued, invoice)
	return invoice, nil
}

// IssueReceipt settles an invoice with a payment from the same lease. A zero
// amount defaults to the invoice amount. The store performs the Unpaid->Paid
// transition and the receipt insert atomically, so concurrent calls for one
// invoice yield exactly one receipt; the losers get ErrAlreadySettled.
func (s *Service) IssueReceipt(ctx context.Context, invoiceID, paymentID, amountCents int64) (*domain.Receipt, error) {
	if amountCents < 0 {
		return nil, fmt.Errorf("ledger.IssueReceipt: %w", domain.Invalid("amount_cents", "must not be negative"))
	}

	invoice, err := s.store.Invoices().GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("ledger.IssueReceipt: %w", err)
	}
	if invoice.Status != domain.InvoiceStatusUnpaid {
		return nil, fmt.Errorf("ledger.IssueReceipt: %w", domain.ErrAlreadySettled)
	}

	payment, err := s.store.Payments().GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("ledger.IssueReceipt: payment: %w", domain.ErrInvalidReference)
		}
		return nil, fmt.Errorf("ledger.IssueReceipt: %w", err)
	}
	if payment.LeaseID != invoice.LeaseID {
		return nil, fmt.Errorf("ledger.IssueReceipt: %w", domain.Invalid("payment_id", "must belong to the invoice's lease"))
	}

	if amountCents == 0 {
		amountCents = invoice.AmountCents
	}

	receipt := &domain.Receipt{
		InvoiceID:   invoiceID,
		PaymentID:   paymentID,
		AmountCents: amountCents,
	}

	for attempt := 1; ; attempt++ {
		receipt.ReceiptNumber = s.numbers()
		receipt.CreatedAt = time.Now()

		err = s.store.Receipts().Settle(ctx, receipt)
		if err == nil {
			break
		}
		// A plain conflict here is a receipt number collision.
		if errors.Is(err, domain.ErrAlreadySettled) || !errors.Is(err, domain.ErrConflict) || attempt == receiptNumberAttempts {
			return nil, fmt.Errorf("ledger.IssueReceipt: %w", err)
		}
		log.Warn().Str("receipt_number", receipt.ReceiptNumber).Msg("ledger.IssueReceipt: receipt number collision, retrying")
	}

	s.publish(ctx, invoice.LeaseID, EventInvoiceSettled, receipt)
	return receipt, nil
}

// VoidReceipt deletes a receipt and returns its invoice to Unpaid.
func (s *Service) VoidReceipt(ctx context.Context, actor *domain.Principal, receiptID int64) (*domain.Receipt, error) {
	receipt, err := s.store.Receipts().GetByID(ctx, receiptID)
	if err != nil {
		return nil, fmt.Errorf("ledger.VoidReceipt: %w", err)
	}

	var leaseID int64
	if invoice, err := s.store.Invoices().GetByID(ctx, receipt.InvoiceID); err == nil {
		leaseID = invoice.LeaseID
	}

	audit := domain.NewAuditEntry(actorID(actor), EventReceiptVoided, "receipt", receiptID)
	audit.Details["receipt_number"] = receipt.ReceiptNumber
	audit.Details["invoice_id"] = receipt.InvoiceID
	audit.Details["payment_id"] = receipt.PaymentID
	audit.Details["amount_cents"] = receipt.AmountCents

	voided, err := s.store.Receipts().Void(ctx, receiptID, audit)
	if err != nil {
		return nil, fmt.Errorf("ledger.VoidReceipt: %w", err)
	}

	if leaseID != 0 {
		s.publish(ctx, leaseID, EventReceiptVoided, voided)
	}
	return voided, nil
}

// DeleteLease removes a lease together with its payments, invoices and
// receipts, leaving an audit entry behind.
func (s *Service) DeleteLease(ctx context.Context, actor *domain.Principal, leaseID int64) (*domain.LeaseDeletion, error) {
	lease, err := s.store.Leases().GetByID(ctx, leaseID)
	if err != nil {
		return nil, fmt.Errorf("ledger.DeleteLease: %w", err)
	}

	audit := domain.NewAuditEntry(actorID(actor), EventLeaseDeleted, "lease", leaseID)
	audit.Details["tenant_id"] = lease.TenantID
	audit.Details["property_id"] = lease.PropertyID
	audit.Details["rent_amount"] = lease.RentAmount

	deletion, err := s.store.Leases().DeleteCascade(ctx, leaseID, audit)
	if err != nil {
		return nil, fmt.Errorf("ledger.DeleteLease: %w", err)
	}

	s.publish(ctx, leaseID, EventLeaseDeleted, deletion)
	return deletion, nil
}

func actorID(p *domain.Principal) int64 {
	if p == nil {
		return 0
	}
	return p.ID
}

func (s *Service) publish(ctx context.Context, leaseID int64, eventType string, data any) {
	if s.publisher == nil {
		return
	}

	payload, err := json.Marshal(Event{Type: eventType, LeaseID: leaseID, Data: data, At: time.Now()})
	if err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("ledger.publish: marshal event")
		return
	}

	channel := LeaseChannel(leaseID)
	if err := s.publisher.Publish(ctx, channel, payload); err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("ledger.publish: failed to publish event")
	}
}
