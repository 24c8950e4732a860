package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/suhailma1ik/KinCashBackend/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Requests
// ---------------------------------------------------------------------------

// CreateLoanRequest carries the parameters for a new loan.
type CreateLoanRequest struct {
	LenderID        string
	BorrowerID      string
	CreatedByID     string
	Principal       decimal.Decimal
	InterestRatePct decimal.Decimal
	TermMonths      int
	Cycle           string
	DueDay          int
	LateFeePct      decimal.Decimal
}

// RecordPaymentRequest carries a borrower's repayment submission.
type RecordPaymentRequest struct {
	LoanID         string
	PayerID        string
	Amount         decimal.Decimal
	Remarks        string
	IdempotencyKey string
}

// ---------------------------------------------------------------------------
// Responses
// ---------------------------------------------------------------------------

// LoanResponse is the wire representation of a loan.
type LoanResponse struct {
	ID              string          `json:"id"`
	LenderID        string          `json:"lender_id"`
	BorrowerID      string          `json:"borrower_id"`
	Principal       decimal.Decimal `json:"principal"`
	InterestRatePct decimal.Decimal `json:"interest_rate_pct"`
	TermMonths      int             `json:"term_months"`
	Cycle           string          `json:"cycle"`
	DueDay          int             `json:"due_day"`
	LateFeePct      decimal.Decimal `json:"late_fee_pct"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	ClosedAt        *time.Time      `json:"closed_at,omitempty"`
}

// InstallmentResponse is the wire representation of one installment.
type InstallmentResponse struct {
	ID                int64           `json:"id"`
	Sequence          int             `json:"sequence"`
	DueDate           time.Time       `json:"due_date"`
	AmountDue         decimal.Decimal `json:"amount_due"`
	InterestComponent decimal.Decimal `json:"interest_component"`
	AmountPaid        decimal.Decimal `json:"amount_paid"`
	LateFeeAccrued    decimal.Decimal `json:"late_fee_accrued"`
	PaidAt            *time.Time      `json:"paid_at,omitempty"`
	Status            string          `json:"status"`
}

// LoanDetailResponse is a loan together with its repayment schedule.
type LoanDetailResponse struct {
	Loan     LoanResponse          `json:"loan"`
	Schedule []InstallmentResponse `json:"schedule"`
}

// PaymentResponse reports the outcome of recording a payment.
type PaymentResponse struct {
	PaymentID           string          `json:"payment_id"`
	LoanID              string          `json:"loan_id"`
	Amount              decimal.Decimal `json:"amount"`
	SettledInstallments int             `json:"settled_installments"`
	Unallocated         decimal.Decimal `json:"unallocated"`
	LoanStatus          string          `json:"loan_status"`
	// Duplicate is true when the idempotency key matched an existing
	// payment and no allocation ran.
	Duplicate bool `json:"duplicate"`
}

// SweepResult reports the installments touched by one overdue sweep, for
// external notification sinks.
type SweepResult struct {
	LateInstallments       []InstallmentResponse `json:"late_installments"`
	FeeAppliedInstallments []InstallmentResponse `json:"fee_applied_installments"`
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

// FromLoan maps a domain loan to its response form.
func FromLoan(l model.Loan) LoanResponse {
	resp := LoanResponse{
		ID:              l.ID(),
		LenderID:        l.LenderID(),
		BorrowerID:      l.BorrowerID(),
		Principal:       l.Principal(),
		InterestRatePct: l.InterestRatePct(),
		TermMonths:      l.TermMonths(),
		Cycle:           l.Cycle().String(),
		DueDay:          l.DueDay(),
		LateFeePct:      l.LateFeePct(),
		Status:          l.Status().String(),
		CreatedAt:       l.CreatedAt(),
	}
	if t := l.ApprovedAt(); !t.IsZero() {
		resp.ApprovedAt = &t
	}
	if t := l.ClosedAt(); !t.IsZero() {
		resp.ClosedAt = &t
	}
	return resp
}

// FromInstallment maps a domain installment to its response form.
func FromInstallment(i model.Installment) InstallmentResponse {
	resp := InstallmentResponse{
		ID:                i.ID,
		Sequence:          i.Sequence,
		DueDate:           i.DueDate,
		AmountDue:         i.AmountDue,
		InterestComponent: i.InterestComponent,
		AmountPaid:        i.AmountPaid,
		LateFeeAccrued:    i.LateFeeAccrued,
		Status:            i.Status.String(),
	}
	if !i.PaidAt.IsZero() {
		t := i.PaidAt
		resp.PaidAt = &t
	}
	return resp
}

// FromInstallments maps a slice of installments.
func FromInstallments(installments []model.Installment) []InstallmentResponse {
	out := make([]InstallmentResponse, 0, len(installments))
	for _, i := range installments {
		out = append(out, FromInstallment(i))
	}
	return out
}
