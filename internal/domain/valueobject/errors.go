package valueobject

import "errors"

// Sentinel errors shared across the domain and application layers.
// State-machine transitions attempted from a wrong source state are not
// errors: they surface as boolean no-ops. These sentinels cover genuinely
// invalid input or missing data.
var (
	// ErrInvalidParameters marks bad principal, rate, term or due-day input.
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrInvalidStatusTransition marks a transition from a non-source state
	// in contexts that need a hard error rather than a no-op.
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// ErrNotFound marks an unknown loan, installment or payment.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientAmount marks a payment below the total owed when the
	// caller expects exact-or-greater coverage.
	ErrInsufficientAmount = errors.New("insufficient amount")
)
