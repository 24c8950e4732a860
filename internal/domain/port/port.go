package port

import (
	"context"
	"time"

	"github.com/suhailma1ik/KinCashBackend/internal/domain/event"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// LoanRepository persists and retrieves loans.
type LoanRepository interface {
	Create(ctx context.Context, loan model.Loan) error
	Get(ctx context.Context, id string) (model.Loan, error)
	Update(ctx context.Context, loan model.Loan) error
	// ListByParticipant returns non-deleted loans where the user is lender
	// or borrower.
	ListByParticipant(ctx context.Context, userID string) ([]model.Loan, error)
	ListActive(ctx context.Context) ([]model.Loan, error)
	// Lock serializes concurrent mutations of one loan's schedule for the
	// duration of the surrounding unit of work.
	Lock(ctx context.Context, id string) error
}

// InstallmentRepository persists and retrieves a loan's installments.
type InstallmentRepository interface {
	// ReplaceForLoan discards any existing installments for the loan and
	// inserts the given set, returning it with assigned ids.
	ReplaceForLoan(ctx context.Context, loanID string, installments []model.Installment) ([]model.Installment, error)
	Get(ctx context.Context, id int64) (model.Installment, error)
	// ListByLoan returns all installments ordered by due date ascending.
	ListByLoan(ctx context.Context, loanID string) ([]model.Installment, error)
	// ListUnpaidByLoan returns installments with status != PAID ordered by
	// due date ascending.
	ListUnpaidByLoan(ctx context.Context, loanID string) ([]model.Installment, error)
	Update(ctx context.Context, installment model.Installment) error
}

// PaymentRepository persists payment records.
type PaymentRepository interface {
	// Create inserts the payment. It returns false without error when a
	// payment with the same idempotency key already exists, in which case
	// allocation must not run again.
	Create(ctx context.Context, p model.Payment) (bool, error)
	GetByIdempotencyKey(ctx context.Context, key string) (model.Payment, error)
	ListByLoan(ctx context.Context, loanID string) ([]model.Payment, error)
}

// TransactionRepository appends ledger entries. Entries are never updated
// or deleted.
type TransactionRepository interface {
	Create(ctx context.Context, t model.Transaction) error
	ListByLoan(ctx context.Context, loanID string) ([]model.Transaction, error)
}

// Repositories bundles the repository ports bound to one transactional
// scope.
type Repositories struct {
	Loans        LoanRepository
	Installments InstallmentRepository
	Payments     PaymentRepository
	Transactions TransactionRepository
}

// UnitOfWork executes fn against repositories bound to a single atomic
// store transaction: either every write inside fn commits or none do.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(r Repositories) error) error
}

// ---------------------------------------------------------------------------
// Driven service ports
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers
// (notification sinks, analytics).
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}

// Clock supplies "now" so time-dependent logic stays testable.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock returns a Clock backed by time.Now in UTC.
func SystemClock() Clock {
	return ClockFunc(func() time.Time { return time.Now().UTC() })
}
