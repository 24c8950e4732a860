package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/suhailma1ik/KinCashBackend/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

// ---------------------------------------------------------------------------
// Loan events
// ---------------------------------------------------------------------------

// LoanActivated is raised when a pending loan is approved and its repayment
// schedule has been generated.
type LoanActivated struct {
	events.BaseEvent
	LenderID         string          `json:"lender_id"`
	BorrowerID       string          `json:"borrower_id"`
	Principal        decimal.Decimal `json:"principal"`
	InstallmentCount int             `json:"installment_count"`
	FirstDueDate     time.Time       `json:"first_due_date"`
}

func NewLoanActivated(
	loanID, lenderID, borrowerID string,
	principal decimal.Decimal,
	installmentCount int,
	firstDueDate, now time.Time,
) LoanActivated {
	return LoanActivated{
		BaseEvent:        events.NewBaseEvent("lending.loan.activated", loanID, "Loan", now),
		LenderID:         lenderID,
		BorrowerID:       borrowerID,
		Principal:        principal,
		InstallmentCount: installmentCount,
		FirstDueDate:     firstDueDate,
	}
}

// LoanClosed is raised when the last installment is settled and the loan
// transitions to PAID.
type LoanClosed struct {
	events.BaseEvent
	LenderID   string `json:"lender_id"`
	BorrowerID string `json:"borrower_id"`
}

func NewLoanClosed(loanID, lenderID, borrowerID string, now time.Time) LoanClosed {
	return LoanClosed{
		BaseEvent:  events.NewBaseEvent("lending.loan.closed", loanID, "Loan", now),
		LenderID:   lenderID,
		BorrowerID: borrowerID,
	}
}

// LoanCancelled is raised when a pending loan is cancelled.
type LoanCancelled struct {
	events.BaseEvent
}

func NewLoanCancelled(loanID string, now time.Time) LoanCancelled {
	return LoanCancelled{
		BaseEvent: events.NewBaseEvent("lending.loan.cancelled", loanID, "Loan", now),
	}
}

// LoanDefaulted is raised when an active loan is marked defaulted.
type LoanDefaulted struct {
	events.BaseEvent
	BorrowerID string `json:"borrower_id"`
}

func NewLoanDefaulted(loanID, borrowerID string, now time.Time) LoanDefaulted {
	return LoanDefaulted{
		BaseEvent:  events.NewBaseEvent("lending.loan.defaulted", loanID, "Loan", now),
		BorrowerID: borrowerID,
	}
}

// ---------------------------------------------------------------------------
// Payment events
// ---------------------------------------------------------------------------

// PaymentAllocated is raised after a payment has been applied across a
// loan's installments.
type PaymentAllocated struct {
	events.BaseEvent
	PaymentID    string          `json:"payment_id"`
	PayerID      string          `json:"payer_id"`
	Amount       decimal.Decimal `json:"amount"`
	SettledCount int             `json:"settled_count"`
	Unallocated  decimal.Decimal `json:"unallocated"`
}

func NewPaymentAllocated(
	loanID, paymentID, payerID string,
	amount, unallocated decimal.Decimal,
	settledCount int,
	now time.Time,
) PaymentAllocated {
	return PaymentAllocated{
		BaseEvent:    events.NewBaseEvent("lending.payment.allocated", loanID, "Loan", now),
		PaymentID:    paymentID,
		PayerID:      payerID,
		Amount:       amount,
		SettledCount: settledCount,
		Unallocated:  unallocated,
	}
}

// ---------------------------------------------------------------------------
// Installment events
// ---------------------------------------------------------------------------

// InstallmentPendingConfirmation is raised when a borrower marks an
// installment as paid and lender confirmation is outstanding.
type InstallmentPendingConfirmation struct {
	events.BaseEvent
	InstallmentID int64           `json:"installment_id"`
	Amount        decimal.Decimal `json:"amount"`
}

func NewInstallmentPendingConfirmation(loanID string, installmentID int64, amount decimal.Decimal, now time.Time) InstallmentPendingConfirmation {
	return InstallmentPendingConfirmation{
		BaseEvent:     events.NewBaseEvent("lending.installment.pending_confirmation", loanID, "Loan", now),
		InstallmentID: installmentID,
		Amount:        amount,
	}
}

// InstallmentPaymentConfirmed is raised when the lender confirms a pending
// installment payment.
type InstallmentPaymentConfirmed struct {
	events.BaseEvent
	InstallmentID int64 `json:"installment_id"`
}

func NewInstallmentPaymentConfirmed(loanID string, installmentID int64, now time.Time) InstallmentPaymentConfirmed {
	return InstallmentPaymentConfirmed{
		BaseEvent:     events.NewBaseEvent("lending.installment.confirmed", loanID, "Loan", now),
		InstallmentID: installmentID,
	}
}

// InstallmentMarkedLate is raised by the overdue sweep for each installment
// that passed its due date.
type InstallmentMarkedLate struct {
	events.BaseEvent
	InstallmentID int64     `json:"installment_id"`
	DueDate       time.Time `json:"due_date"`
}

func NewInstallmentMarkedLate(loanID string, installmentID int64, dueDate, now time.Time) InstallmentMarkedLate {
	return InstallmentMarkedLate{
		BaseEvent:     events.NewBaseEvent("lending.installment.late", loanID, "Loan", now),
		InstallmentID: installmentID,
		DueDate:       dueDate,
	}
}

// LateFeeApplied is raised when the overdue sweep accrues a late fee.
type LateFeeApplied struct {
	events.BaseEvent
	InstallmentID int64           `json:"installment_id"`
	Fee           decimal.Decimal `json:"fee"`
}

func NewLateFeeApplied(loanID string, installmentID int64, fee decimal.Decimal, now time.Time) LateFeeApplied {
	return LateFeeApplied{
		BaseEvent:     events.NewBaseEvent("lending.installment.late_fee_applied", loanID, "Loan", now),
		InstallmentID: installmentID,
		Fee:           fee,
	}
}
