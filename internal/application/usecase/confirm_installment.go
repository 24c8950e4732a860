package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/suhailma1ik/KinCashBackend/internal/domain/event"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/port"
)

// MarkInstallmentPendingUseCase is the first half of the two-phase payment
// confirmation protocol: the borrower claims an installment is paid and the
// lender confirms it later via ConfirmInstallmentPaymentUseCase.
type MarkInstallmentPendingUseCase struct {
	uow       port.UnitOfWork
	publisher port.EventPublisher
	clock     port.Clock
	logger    *slog.Logger
}

// NewMarkInstallmentPendingUseCase wires dependencies.
func NewMarkInstallmentPendingUseCase(uow port.UnitOfWork, publisher port.EventPublisher, clock port.Clock, logger *slog.Logger) *MarkInstallmentPendingUseCase {
	return &MarkInstallmentPendingUseCase{uow: uow, publisher: publisher, clock: clock, logger: logger}
}

// Execute records the claimed amount and moves the installment to
// PENDING_CONFIRMATION. Returns false when the installment is already PAID
// or already awaiting confirmation.
func (uc *MarkInstallmentPendingUseCase) Execute(ctx context.Context, installmentID int64, amount decimal.Decimal) (bool, error) {
	now := uc.clock.Now()

	var (
		marked bool
		events []event.DomainEvent
	)

	err := uc.uow.Execute(ctx, func(r port.Repositories) error {
		// The first read only yields the loan id for the lock. The state the
		// transition acts on is re-read once the loan is serialized.
		inst, err := r.Installments.Get(ctx, installmentID)
		if err != nil {
			return fmt.Errorf("find installment: %w", err)
		}
		if err := r.Loans.Lock(ctx, inst.LoanID); err != nil {
			return err
		}
		inst, err = r.Installments.Get(ctx, installmentID)
		if err != nil {
			return fmt.Errorf("find installment: %w", err)
		}

		if !inst.MarkPendingConfirmation(amount, now) {
			return nil
		}
		if err := r.Installments.Update(ctx, inst); err != nil {
			return fmt.Errorf("save installment: %w", err)
		}

		marked = true
		events = append(events, event.NewInstallmentPendingConfirmation(inst.LoanID, inst.ID, amount, now))
		return nil
	})
	if err != nil || !marked {
		return false, err
	}

	if err := uc.publisher.Publish(ctx, events...); err != nil {
		uc.logger.WarnContext(ctx, "failed to publish pending-confirmation event", "installment_id", installmentID, "error", err)
	}
	return true, nil
}

// ConfirmInstallmentPaymentUseCase is the lender's half of the two-phase
// protocol: it finalizes a pending installment payment and closes the loan
// when that was the last open installment.
type ConfirmInstallmentPaymentUseCase struct {
	uow       port.UnitOfWork
	publisher port.EventPublisher
	clock     port.Clock
	logger    *slog.Logger
}

// NewConfirmInstallmentPaymentUseCase wires dependencies.
func NewConfirmInstallmentPaymentUseCase(uow port.UnitOfWork, publisher port.EventPublisher, clock port.Clock, logger *slog.Logger) *ConfirmInstallmentPaymentUseCase {
	return &ConfirmInstallmentPaymentUseCase{uow: uow, publisher: publisher, clock: clock, logger: logger}
}

// Execute confirms the payment. Returns false when the installment is not
// awaiting confirmation.
func (uc *ConfirmInstallmentPaymentUseCase) Execute(ctx context.Context, installmentID int64) (bool, error) {
	now := uc.clock.Now()

	var (
		confirmed bool
		events    []event.DomainEvent
	)

	err := uc.uow.Execute(ctx, func(r port.Repositories) error {
		// First read only yields the loan id; re-read under the lock.
		inst, err := r.Installments.Get(ctx, installmentID)
		if err != nil {
			return fmt.Errorf("find installment: %w", err)
		}
		if err := r.Loans.Lock(ctx, inst.LoanID); err != nil {
			return err
		}
		inst, err = r.Installments.Get(ctx, installmentID)
		if err != nil {
			return fmt.Errorf("find installment: %w", err)
		}

		if !inst.ConfirmPayment() {
			return nil
		}
		if err := r.Installments.Update(ctx, inst); err != nil {
			return fmt.Errorf("save installment: %w", err)
		}

		confirmed = true
		events = append(events, event.NewInstallmentPaymentConfirmed(inst.LoanID, inst.ID, now))

		// Close the loan when every sibling installment is now PAID.
		loan, err := r.Loans.Get(ctx, inst.LoanID)
		if err != nil {
			return fmt.Errorf("find loan: %w", err)
		}
		siblings, err := r.Installments.ListByLoan(ctx, inst.LoanID)
		if err != nil {
			return fmt.Errorf("load installments: %w", err)
		}
		if closed, ok := loan.MarkPaid(siblings, now); ok {
			if err := r.Loans.Update(ctx, closed); err != nil {
				return fmt.Errorf("close loan: %w", err)
			}
			events = append(events, event.NewLoanClosed(loan.ID(), loan.LenderID(), loan.BorrowerID(), now))
		}
		return nil
	})
	if err != nil || !confirmed {
		return false, err
	}

	if err := uc.publisher.Publish(ctx, events...); err != nil {
		uc.logger.WarnContext(ctx, "failed to publish confirmation events", "installment_id", installmentID, "error", err)
	}
	return true, nil
}
