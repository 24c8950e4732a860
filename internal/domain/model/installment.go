package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/suhailma1ik/KinCashBackend/internal/domain/valueobject"
	"github.com/suhailma1ik/KinCashBackend/pkg/money"
)

// Installment is one scheduled repayment of a loan. Unlike the Loan
// aggregate, installments are mutable entities: allocation and the overdue
// sweep update them in place and persist the batch atomically.
type Installment struct {
	ID                int64
	LoanID            string
	Sequence          int
	DueDate           time.Time
	AmountDue         decimal.Decimal
	InterestComponent decimal.Decimal
	AmountPaid        decimal.Decimal
	LateFeeAccrued    decimal.Decimal
	PaidAt            time.Time
	Status            valueobject.InstallmentStatus
}

// TotalOwed returns the amount still required to settle the installment:
// amount due plus accrued late fees minus what has been paid so far.
func (i *Installment) TotalOwed() decimal.Decimal {
	return i.AmountDue.Add(i.LateFeeAccrued).Sub(i.AmountPaid)
}

// MarkLate transitions DUE -> LATE when the due date is strictly before the
// given day. Returns false otherwise.
func (i *Installment) MarkLate(asOf time.Time) bool {
	if !i.Status.Equal(valueobject.InstallmentStatusDue) {
		return false
	}
	if !i.DueDate.Before(dateOf(asOf)) {
		return false
	}
	i.Status = valueobject.InstallmentStatusLate
	return true
}

// MarkPendingConfirmation records the amount the borrower claims to have
// paid and transitions to PENDING_CONFIRMATION. Rejected when the
// installment is already PAID, already awaiting confirmation, or the claim
// is not positive. The recorded amount is capped at the total owed so
// amount_paid never exceeds amount_due plus accrued fees.
func (i *Installment) MarkPendingConfirmation(amount decimal.Decimal, now time.Time) bool {
	if i.Status.Equal(valueobject.InstallmentStatusPaid) ||
		i.Status.Equal(valueobject.InstallmentStatusPendingConfirmation) {
		return false
	}
	if !amount.IsPositive() {
		return false
	}
	i.AmountPaid = money.Min(money.Quantize(amount), i.AmountDue.Add(i.LateFeeAccrued))
	i.Status = valueobject.InstallmentStatusPendingConfirmation
	i.PaidAt = now
	return true
}

// ConfirmPayment transitions PENDING_CONFIRMATION -> PAID. The caller
// re-checks the loan's sibling installments afterwards and closes the loan
// when all of them are PAID.
func (i *Installment) ConfirmPayment() bool {
	if !i.Status.Equal(valueobject.InstallmentStatusPendingConfirmation) {
		return false
	}
	i.Status = valueobject.InstallmentStatusPaid
	return true
}

// MarkAsPaid is the legacy one-phase protocol: it transitions DUE or LATE
// (or PENDING_CONFIRMATION) directly to PAID without lender confirmation.
// The two-phase MarkPendingConfirmation/ConfirmPayment flow is preferred;
// both remain supported and the caller picks one.
func (i *Installment) MarkAsPaid(amount decimal.Decimal, now time.Time) bool {
	if i.Status.Equal(valueobject.InstallmentStatusPaid) {
		return false
	}
	if amount.IsPositive() {
		i.AmountPaid = money.Min(money.Quantize(amount), i.AmountDue.Add(i.LateFeeAccrued))
	}
	i.Status = valueobject.InstallmentStatusPaid
	i.PaidAt = now
	return true
}

// ApplyLateFee accrues a late fee of lateFeePct percent of the outstanding
// amount. Valid only while the installment is LATE and a positive rate is
// configured. Each invocation re-applies the fee: sweeping twice without an
// intervening payment accrues twice.
func (i *Installment) ApplyLateFee(lateFeePct decimal.Decimal) (decimal.Decimal, bool) {
	if !i.Status.Equal(valueobject.InstallmentStatusLate) || !lateFeePct.IsPositive() {
		return decimal.Zero, false
	}
	outstanding := i.AmountDue.Sub(i.AmountPaid)
	fee := money.Quantize(outstanding.Mul(lateFeePct).Div(decimal.NewFromInt(100)))
	i.LateFeeAccrued = i.LateFeeAccrued.Add(fee)
	return fee, true
}

// dateOf truncates t to midnight UTC.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
