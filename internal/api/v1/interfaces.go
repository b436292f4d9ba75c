package v1

import (
	"context"
	"time"

	"github.com/gosuda/leasedesk/internal/auth"
	"github.com/gosuda/leasedesk/internal/domain"
	"github.com/gosuda/leasedesk/internal/ledger"
)

// DataStore abstracts repository access for handlers.
// *postgres.Store and *memory.Store satisfy this interface.
type DataStore interface {
	Users() domain.UserRepository
	Properties() domain.PropertyRepository
	Units() domain.UnitRepository
	Leases() domain.LeaseRepository
	Payments() domain.PaymentRepository
	Invoices() domain.InvoiceRepository
	Receipts() domain.ReceiptRepository
	Audit() domain.AuditRepository
	Integrations() domain.IntegrationRepository
}

// HealthChecker reports store liveness for the health endpoint.
type HealthChecker interface {
	Ping(ctx context.Context) error
	Stats(ctx context.Context) (*domain.StoreStats, error)
}

// AuthService abstracts account and session operations for handlers.
// *auth.Service satisfies this interface.
type AuthService interface {
	Signup(ctx context.Context, caller *domain.Principal, req auth.SignupRequest) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*auth.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	EndUserSessions(ctx context.Context, userID int64) error
	StartSession(ctx context.Context, p *domain.Principal) (string, error)
	SessionTTL() time.Duration
}

// Ledger abstracts the money-moving operations.
// *ledger.Service satisfies this interface.
type Ledger interface {
	Statement(ctx context.Context, leaseID int64) (*ledger.LeaseStatement, error)
	RecordPayment(ctx context.Context, leaseID, amount int64, method, note string) (*domain.Payment, error)
	IssueInvoice(ctx context.Context, leaseID int64, periodStart, periodEnd string, amountCents int64) (*domain.Invoice, error)
	IssueReceipt(ctx context.Context, invoiceID, paymentID, amountCents int64) (*domain.Receipt, error)
	VoidReceipt(ctx context.Context, actor *domain.Principal, receiptID int64) (*domain.Receipt, error)
	DeleteLease(ctx context.Context, actor *domain.Principal, leaseID int64) (*domain.LeaseDeletion, error)
}

// Notifier dispatches notifications. *notify.Notifier satisfies this interface.
type Notifier interface {
	Notify(ctx context.Context, n *domain.Notification) error
}
