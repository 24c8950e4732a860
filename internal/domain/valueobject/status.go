package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// LoanStatus – immutable value object
// ---------------------------------------------------------------------------

// LoanStatus represents the lifecycle stage of a loan.
type LoanStatus struct {
	value string
}

const (
	loanStatusPending   = "PENDING"
	loanStatusActive    = "ACTIVE"
	loanStatusPaid      = "PAID"
	loanStatusDefaulted = "DEFAULTED"
	loanStatusCancelled = "CANCELLED"
)

var (
	LoanStatusPending   = LoanStatus{value: loanStatusPending}
	LoanStatusActive    = LoanStatus{value: loanStatusActive}
	LoanStatusPaid      = LoanStatus{value: loanStatusPaid}
	LoanStatusDefaulted = LoanStatus{value: loanStatusDefaulted}
	LoanStatusCancelled = LoanStatus{value: loanStatusCancelled}
)

var validLoanStatuses = map[string]LoanStatus{
	loanStatusPending:   LoanStatusPending,
	loanStatusActive:    LoanStatusActive,
	loanStatusPaid:      LoanStatusPaid,
	loanStatusDefaulted: LoanStatusDefaulted,
	loanStatusCancelled: LoanStatusCancelled,
}

// NewLoanStatus creates a LoanStatus from a raw string.
func NewLoanStatus(s string) (LoanStatus, error) {
	v, ok := validLoanStatuses[s]
	if !ok {
		return LoanStatus{}, fmt.Errorf("invalid loan status: %q", s)
	}
	return v, nil
}

// String returns the string representation of the status.
func (s LoanStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s LoanStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s LoanStatus) Equal(other LoanStatus) bool { return s.value == other.value }

// IsTerminal reports whether no further transitions are allowed from s.
func (s LoanStatus) IsTerminal() bool {
	return s.value == loanStatusPaid || s.value == loanStatusDefaulted || s.value == loanStatusCancelled
}

// ---------------------------------------------------------------------------
// InstallmentStatus – immutable value object
// ---------------------------------------------------------------------------

// InstallmentStatus represents the lifecycle stage of a single installment.
type InstallmentStatus struct {
	value string
}

const (
	installmentStatusDue                 = "DUE"
	installmentStatusLate                = "LATE"
	installmentStatusPendingConfirmation = "PENDING_CONFIRMATION"
	installmentStatusPaid                = "PAID"
)

var (
	InstallmentStatusDue                 = InstallmentStatus{value: installmentStatusDue}
	InstallmentStatusLate                = InstallmentStatus{value: installmentStatusLate}
	InstallmentStatusPendingConfirmation = InstallmentStatus{value: installmentStatusPendingConfirmation}
	InstallmentStatusPaid                = InstallmentStatus{value: installmentStatusPaid}
)

var validInstallmentStatuses = map[string]InstallmentStatus{
	installmentStatusDue:                 InstallmentStatusDue,
	installmentStatusLate:                InstallmentStatusLate,
	installmentStatusPendingConfirmation: InstallmentStatusPendingConfirmation,
	installmentStatusPaid:                InstallmentStatusPaid,
}

// NewInstallmentStatus creates an InstallmentStatus from a raw string.
func NewInstallmentStatus(s string) (InstallmentStatus, error) {
	v, ok := validInstallmentStatuses[s]
	if !ok {
		return InstallmentStatus{}, fmt.Errorf("invalid installment status: %q", s)
	}
	return v, nil
}

// String returns the string representation of the status.
func (s InstallmentStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s InstallmentStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s InstallmentStatus) Equal(other InstallmentStatus) bool { return s.value == other.value }

// ---------------------------------------------------------------------------
// Cycle – repayment cadence
// ---------------------------------------------------------------------------

// Cycle is the repayment cadence of a loan.
type Cycle struct {
	value string
}

const (
	cycleMonthly = "MONTHLY"
	cycleWeekly  = "WEEKLY"
)

var (
	CycleMonthly = Cycle{value: cycleMonthly}
	CycleWeekly  = Cycle{value: cycleWeekly}
)

// NewCycle creates a Cycle from a raw string.
func NewCycle(s string) (Cycle, error) {
	switch s {
	case cycleMonthly:
		return CycleMonthly, nil
	case cycleWeekly:
		return CycleWeekly, nil
	default:
		return Cycle{}, fmt.Errorf("invalid cycle: %q", s)
	}
}

// String returns the string representation of the cycle.
func (c Cycle) String() string { return c.value }

// IsZero returns true if the cycle has not been initialised.
func (c Cycle) IsZero() bool { return c.value == "" }

// Equal returns true when both cycles carry the same value.
func (c Cycle) Equal(other Cycle) bool { return c.value == other.value }

// ---------------------------------------------------------------------------
// TransactionType – ledger entry classification
// ---------------------------------------------------------------------------

// TransactionType classifies a ledger transaction.
type TransactionType struct {
	value string
}

const (
	transactionTypeDisbursement = "DISBURSEMENT"
	transactionTypeRepayment    = "REPAYMENT"
	transactionTypeLateFee      = "LATE_FEE"
	transactionTypeRefund       = "REFUND"
)

var (
	TransactionTypeDisbursement = TransactionType{value: transactionTypeDisbursement}
	TransactionTypeRepayment    = TransactionType{value: transactionTypeRepayment}
	TransactionTypeLateFee      = TransactionType{value: transactionTypeLateFee}
	TransactionTypeRefund       = TransactionType{value: transactionTypeRefund}
)

var validTransactionTypes = map[string]TransactionType{
	transactionTypeDisbursement: TransactionTypeDisbursement,
	transactionTypeRepayment:    TransactionTypeRepayment,
	transactionTypeLateFee:      TransactionTypeLateFee,
	transactionTypeRefund:       TransactionTypeRefund,
}

// NewTransactionType creates a TransactionType from a raw string.
func NewTransactionType(s string) (TransactionType, error) {
	v, ok := validTransactionTypes[s]
	if !ok {
		return TransactionType{}, fmt.Errorf("invalid transaction type: %q", s)
	}
	return v, nil
}

// String returns the string representation of the type.
func (t TransactionType) String() string { return t.value }

// IsZero returns true if the type has not been initialised.
func (t TransactionType) IsZero() bool { return t.value == "" }

// Equal returns true when both types carry the same value.
func (t TransactionType) Equal(other TransactionType) bool { return t.value == other.value }
