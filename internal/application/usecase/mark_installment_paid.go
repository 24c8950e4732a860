package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/suhailma1ik/KinCashBackend/internal/domain/event"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/port"
)

// MarkInstallmentPaidUseCase is the legacy one-phase confirmation protocol:
// it moves an installment directly to PAID without lender confirmation and
// performs the same loan-closure check as the two-phase flow. Callers pick
// between this and the MarkInstallmentPending/ConfirmInstallmentPayment
// pair.
type MarkInstallmentPaidUseCase struct {
	uow       port.UnitOfWork
	publisher port.EventPublisher
	clock     port.Clock
	logger    *slog.Logger
}

// NewMarkInstallmentPaidUseCase wires dependencies.
func NewMarkInstallmentPaidUseCase(uow port.UnitOfWork, publisher port.EventPublisher, clock port.Clock, logger *slog.Logger) *MarkInstallmentPaidUseCase {
	return &MarkInstallmentPaidUseCase{uow: uow, publisher: publisher, clock: clock, logger: logger}
}

// Execute marks the installment PAID. Returns false when it already is.
func (uc *MarkInstallmentPaidUseCase) Execute(ctx context.Context, installmentID int64, amount decimal.Decimal) (bool, error) {
	now := uc.clock.Now()

	var (
		paid   bool
		events []event.DomainEvent
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

		if !inst.MarkAsPaid(amount, now) {
			return nil
		}
		if err := r.Installments.Update(ctx, inst); err != nil {
			return fmt.Errorf("save installment: %w", err)
		}

		paid = true
		events = append(events, event.NewInstallmentPaymentConfirmed(inst.LoanID, inst.ID, now))

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
	if err != nil || !paid {
		return false, err
	}

	if err := uc.publisher.Publish(ctx, events...); err != nil {
		uc.logger.WarnContext(ctx, "failed to publish installment-paid events", "installment_id", installmentID, "error", err)
	}
	return true, nil
}
