package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/suhailma1ik/KinCashBackend/internal/domain/event"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/model"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/port"
)

// ActivateLoanUseCase approves a pending loan and generates its repayment
// schedule. Activation is all-or-nothing: the status change, the schedule,
// and the disbursement ledger entry commit together or not at all.
type ActivateLoanUseCase struct {
	uow       port.UnitOfWork
	publisher port.EventPublisher
	clock     port.Clock
	logger    *slog.Logger
}

// NewActivateLoanUseCase wires dependencies.
func NewActivateLoanUseCase(uow port.UnitOfWork, publisher port.EventPublisher, clock port.Clock, logger *slog.Logger) *ActivateLoanUseCase {
	return &ActivateLoanUseCase{uow: uow, publisher: publisher, clock: clock, logger: logger}
}

// Execute activates the loan. It returns false without error when the loan
// is not PENDING (already active or terminal), leaving any existing schedule
// untouched.
func (uc *ActivateLoanUseCase) Execute(ctx context.Context, loanID string) (bool, error) {
	now := uc.clock.Now()

	var (
		activated bool
		events    []event.DomainEvent
	)

	err := uc.uow.Execute(ctx, func(r port.Repositories) error {
		if err := r.Loans.Lock(ctx, loanID); err != nil {
			return err
		}

		loan, err := r.Loans.Get(ctx, loanID)
		if err != nil {
			return fmt.Errorf("find loan: %w", err)
		}

		loan, ok := loan.Activate(now)
		if !ok {
			return nil
		}

		schedule, err := model.BuildSchedule(loan, now)
		if err != nil {
			// The transaction rolls back: status and approval timestamp are
			// never persisted.
			return fmt.Errorf("generate schedule: %w", err)
		}

		if err := r.Loans.Update(ctx, loan); err != nil {
			return fmt.Errorf("save loan: %w", err)
		}
		if _, err := r.Installments.ReplaceForLoan(ctx, loan.ID(), schedule); err != nil {
			return fmt.Errorf("save schedule: %w", err)
		}
		if err := r.Transactions.Create(ctx, model.NewDisbursementTransaction(loan, now)); err != nil {
			return fmt.Errorf("record disbursement: %w", err)
		}

		activated = true
		events = append(events, event.NewLoanActivated(
			loan.ID(), loan.LenderID(), loan.BorrowerID(),
			loan.Principal(), len(schedule), schedule[0].DueDate, now,
		))
		return nil
	})
	if err != nil {
		return false, err
	}
	if !activated {
		return false, nil
	}

	if err := uc.publisher.Publish(ctx, events...); err != nil {
		uc.logger.WarnContext(ctx, "failed to publish activation events", "loan_id", loanID, "error", err)
	}

	uc.logger.InfoContext(ctx, "loan activated", "loan_id", loanID)
	return true, nil
}
