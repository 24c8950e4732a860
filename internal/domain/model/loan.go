package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/suhailma1ik/KinCashBackend/internal/domain/valueobject"
	"github.com/suhailma1ik/KinCashBackend/pkg/money"
)

// ---------------------------------------------------------------------------
// Loan aggregate root
// ---------------------------------------------------------------------------

// Loan is a peer-to-peer loan between a lender and a borrower. The aggregate
// is immutable: state transitions return a new copy together with a boolean
// that is false when the loan was not in the transition's source state.
type Loan struct {
	id              string
	lenderID        string
	borrowerID      string
	createdByID     string
	principal       decimal.Decimal
	interestRatePct decimal.Decimal
	termMonths      int
	cycle           valueobject.Cycle
	dueDay          int
	lateFeePct      decimal.Decimal
	status          valueobject.LoanStatus
	createdAt       time.Time
	approvedAt      time.Time
	closedAt        time.Time
	deleted         bool
	deletedAt       time.Time
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewLoan creates a loan in PENDING status. The creator must be one of the
// two parties and the lender and borrower must differ.
//
// dueDay is the day-of-month (1–31) for MONTHLY loans and the weekday
// (0 = Sunday … 6 = Saturday) for WEEKLY loans.
func NewLoan(
	lenderID, borrowerID, createdByID string,
	principal, interestRatePct decimal.Decimal,
	termMonths int,
	cycle valueobject.Cycle,
	dueDay int,
	lateFeePct decimal.Decimal,
	now time.Time,
) (Loan, error) {
	if lenderID == "" || borrowerID == "" {
		return Loan{}, fmt.Errorf("%w: lender and borrower are required", valueobject.ErrInvalidParameters)
	}
	if lenderID == borrowerID {
		return Loan{}, fmt.Errorf("%w: lender and borrower must differ", valueobject.ErrInvalidParameters)
	}
	if createdByID != lenderID && createdByID != borrowerID {
		return Loan{}, fmt.Errorf("%w: creator must be the lender or the borrower", valueobject.ErrInvalidParameters)
	}
	if err := money.RequirePositive("principal", principal); err != nil {
		return Loan{}, fmt.Errorf("%w: %v", valueobject.ErrInvalidParameters, err)
	}
	if err := money.RequireNonNegative("interest rate", interestRatePct); err != nil {
		return Loan{}, fmt.Errorf("%w: %v", valueobject.ErrInvalidParameters, err)
	}
	if err := money.RequireNonNegative("late fee rate", lateFeePct); err != nil {
		return Loan{}, fmt.Errorf("%w: %v", valueobject.ErrInvalidParameters, err)
	}
	if termMonths <= 0 {
		return Loan{}, fmt.Errorf("%w: term months must be positive", valueobject.ErrInvalidParameters)
	}
	if cycle.IsZero() {
		return Loan{}, fmt.Errorf("%w: cycle is required", valueobject.ErrInvalidParameters)
	}
	if cycle.Equal(valueobject.CycleMonthly) && (dueDay < 1 || dueDay > 31) {
		return Loan{}, fmt.Errorf("%w: monthly due day must be 1-31, got %d", valueobject.ErrInvalidParameters, dueDay)
	}
	if cycle.Equal(valueobject.CycleWeekly) && (dueDay < 0 || dueDay > 6) {
		return Loan{}, fmt.Errorf("%w: weekly due day must be 0-6, got %d", valueobject.ErrInvalidParameters, dueDay)
	}

	return Loan{
		id:              uuid.New().String(),
		lenderID:        lenderID,
		borrowerID:      borrowerID,
		createdByID:     createdByID,
		principal:       money.Quantize(principal),
		interestRatePct: interestRatePct,
		termMonths:      termMonths,
		cycle:           cycle,
		dueDay:          dueDay,
		lateFeePct:      lateFeePct,
		status:          valueobject.LoanStatusPending,
		createdAt:       now,
	}, nil
}

// ReconstructLoan rebuilds a Loan aggregate from persistence.
func ReconstructLoan(
	id, lenderID, borrowerID, createdByID string,
	principal, interestRatePct decimal.Decimal,
	termMonths int,
	cycle valueobject.Cycle,
	dueDay int,
	lateFeePct decimal.Decimal,
	status valueobject.LoanStatus,
	createdAt, approvedAt, closedAt time.Time,
	deleted bool,
	deletedAt time.Time,
) Loan {
	return Loan{
		id:              id,
		lenderID:        lenderID,
		borrowerID:      borrowerID,
		createdByID:     createdByID,
		principal:       principal,
		interestRatePct: interestRatePct,
		termMonths:      termMonths,
		cycle:           cycle,
		dueDay:          dueDay,
		lateFeePct:      lateFeePct,
		status:          status,
		createdAt:       createdAt,
		approvedAt:      approvedAt,
		closedAt:        closedAt,
		deleted:         deleted,
		deletedAt:       deletedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// Activate transitions PENDING -> ACTIVE and stamps the approval time. The
// caller is responsible for generating the repayment schedule in the same
// atomic unit; if schedule generation fails nothing may be persisted.
func (l Loan) Activate(now time.Time) (Loan, bool) {
	if !l.status.Equal(valueobject.LoanStatusPending) {
		return l, false
	}
	next := l
	next.status = valueobject.LoanStatusActive
	next.approvedAt = now
	return next, true
}

// MarkPaid transitions ACTIVE -> PAID when every installment of the loan is
// PAID, and stamps the closing time. Any unpaid installment makes this a
// no-op.
func (l Loan) MarkPaid(installments []Installment, now time.Time) (Loan, bool) {
	if !l.status.Equal(valueobject.LoanStatusActive) {
		return l, false
	}
	for _, inst := range installments {
		if !inst.Status.Equal(valueobject.InstallmentStatusPaid) {
			return l, false
		}
	}
	next := l
	next.status = valueobject.LoanStatusPaid
	next.closedAt = now
	return next, true
}

// MarkDefaulted transitions ACTIVE -> DEFAULTED.
func (l Loan) MarkDefaulted() (Loan, bool) {
	if !l.status.Equal(valueobject.LoanStatusActive) {
		return l, false
	}
	next := l
	next.status = valueobject.LoanStatusDefaulted
	return next, true
}

// Cancel transitions PENDING -> CANCELLED.
func (l Loan) Cancel() (Loan, bool) {
	if !l.status.Equal(valueobject.LoanStatusPending) {
		return l, false
	}
	next := l
	next.status = valueobject.LoanStatusCancelled
	return next, true
}

// SoftDelete hides the loan from listings without altering its status. Valid
// in any state.
func (l Loan) SoftDelete(now time.Time) Loan {
	next := l
	next.deleted = true
	next.deletedAt = now
	return next
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (l Loan) ID() string                       { return l.id }
func (l Loan) LenderID() string                 { return l.lenderID }
func (l Loan) BorrowerID() string               { return l.borrowerID }
func (l Loan) CreatedByID() string              { return l.createdByID }
func (l Loan) Principal() decimal.Decimal       { return l.principal }
func (l Loan) InterestRatePct() decimal.Decimal { return l.interestRatePct }
func (l Loan) TermMonths() int                  { return l.termMonths }
func (l Loan) Cycle() valueobject.Cycle         { return l.cycle }
func (l Loan) DueDay() int                      { return l.dueDay }
func (l Loan) LateFeePct() decimal.Decimal      { return l.lateFeePct }
func (l Loan) Status() valueobject.LoanStatus   { return l.status }
func (l Loan) CreatedAt() time.Time             { return l.createdAt }
func (l Loan) ApprovedAt() time.Time            { return l.approvedAt }
func (l Loan) ClosedAt() time.Time              { return l.closedAt }
func (l Loan) IsDeleted() bool                  { return l.deleted }
func (l Loan) DeletedAt() time.Time             { return l.deletedAt }

// HasLateFee reports whether a late-fee rate is configured.
func (l Loan) HasLateFee() bool { return l.lateFeePct.IsPositive() }
