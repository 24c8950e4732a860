package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/suhailma1ik/KinCashBackend/internal/domain/valueobject"
	"github.com/suhailma1ik/KinCashBackend/pkg/money"
)

// Payment is a borrower's repayment submission. Creating a payment row is
// the single trigger for allocation; the idempotency key guarantees a
// retried submission never allocates twice.
type Payment struct {
	ID             string
	LoanID         string
	PayerID        string
	Amount         decimal.Decimal
	Remarks        string
	IdempotencyKey string
	PaidAt         time.Time
}

// NewPayment creates a payment record. When the caller supplies no
// idempotency key the payment id serves as one, so every distinct record
// still allocates at most once.
func NewPayment(loanID, payerID string, amount decimal.Decimal, remarks, idempotencyKey string, now time.Time) (Payment, error) {
	if err := money.RequirePositive("payment amount", amount); err != nil {
		return Payment{}, valueobject.ErrInvalidParameters
	}
	id := uuid.New().String()
	if idempotencyKey == "" {
		idempotencyKey = id
	}
	return Payment{
		ID:             id,
		LoanID:         loanID,
		PayerID:        payerID,
		Amount:         money.Quantize(amount),
		Remarks:        remarks,
		IdempotencyKey: idempotencyKey,
		PaidAt:         now,
	}, nil
}

// Transaction is an append-only ledger entry recording money movement
// between two parties. A nil FromUserID denotes a system-originated entry.
// Transactions are never mutated or deleted.
type Transaction struct {
	ID         string
	FromUserID *string
	ToUserID   string
	Amount     decimal.Decimal
	Type       valueobject.TransactionType
	RelatedID  string
	CreatedAt  time.Time
}

// NewDisbursementTransaction records the lender handing the principal to the
// borrower when a loan activates.
func NewDisbursementTransaction(loan Loan, now time.Time) Transaction {
	from := loan.LenderID()
	return Transaction{
		ID:         uuid.New().String(),
		FromUserID: &from,
		ToUserID:   loan.BorrowerID(),
		Amount:     loan.Principal(),
		Type:       valueobject.TransactionTypeDisbursement,
		RelatedID:  loan.ID(),
		CreatedAt:  now,
	}
}

// NewRepaymentTransaction records the gross amount of a payment from the
// payer to the lender. Exactly one is created per allocation event.
func NewRepaymentTransaction(loan Loan, payment Payment) Transaction {
	from := payment.PayerID
	return Transaction{
		ID:         uuid.New().String(),
		FromUserID: &from,
		ToUserID:   loan.LenderID(),
		Amount:     payment.Amount,
		Type:       valueobject.TransactionTypeRepayment,
		RelatedID:  loan.ID(),
		CreatedAt:  payment.PaidAt,
	}
}

// NewLateFeeTransaction records a late fee owed by the borrower to the
// lender.
func NewLateFeeTransaction(loan Loan, fee decimal.Decimal, now time.Time) Transaction {
	from := loan.BorrowerID()
	return Transaction{
		ID:         uuid.New().String(),
		FromUserID: &from,
		ToUserID:   loan.LenderID(),
		Amount:     fee,
		Type:       valueobject.TransactionTypeLateFee,
		RelatedID:  loan.ID(),
		CreatedAt:  now,
	}
}
