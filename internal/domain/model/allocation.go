package model

import (
	"github.com/shopspring/decimal"

	"github.com/suhailma1ik/KinCashBackend/internal/domain/valueobject"
)

// AllocationResult describes the outcome of applying one payment against a
// loan's outstanding installments.
type AllocationResult struct {
	// Updated holds the installments the walk touched, in due-date order.
	Updated []*Installment
	// Transaction is the single REPAYMENT ledger entry for the gross amount.
	Transaction Transaction
	// Unallocated is whatever remained after every installment was settled.
	// Per the drop-on-excess policy it is never carried forward or refunded.
	Unallocated decimal.Decimal
}

// AllocatePayment walks the loan's not-yet-PAID installments in ascending
// due-date order and consumes the payment amount against each in turn:
// an installment whose total owed fits within the remainder is settled and
// marked PAID; the first one that does not fit absorbs the rest as a partial
// payment and the walk stops. Later installments are never touched before
// earlier ones are settled.
//
// The function mutates the passed installments and is pure with respect to
// everything else; the caller persists the touched installments, the
// transaction, and the loan-closure check as one atomic unit.
func AllocatePayment(loan Loan, unpaid []*Installment, payment Payment) AllocationResult {
	result := AllocationResult{
		Transaction: NewRepaymentTransaction(loan, payment),
		Unallocated: decimal.Zero,
	}

	remaining := payment.Amount
	for _, inst := range unpaid {
		if !remaining.IsPositive() {
			break
		}

		owed := inst.TotalOwed()
		if !owed.IsPositive() {
			// Nothing owed, skip. A negative owed must not grow the remainder.
			continue
		}
		if remaining.GreaterThanOrEqual(owed) {
			inst.AmountPaid = inst.AmountPaid.Add(owed)
			inst.PaidAt = payment.PaidAt
			inst.Status = valueobject.InstallmentStatusPaid
			remaining = remaining.Sub(owed)
		} else {
			inst.AmountPaid = inst.AmountPaid.Add(remaining)
			remaining = decimal.Zero
		}

		result.Updated = append(result.Updated, inst)
	}

	result.Unallocated = remaining
	return result
}
