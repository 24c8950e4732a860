package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/suhailma1ik/KinCashBackend/internal/domain/event"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/model"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/port"
)

// LoanStatusUseCase groups the simple lifecycle transitions that need no
// schedule work: cancel, default, soft delete.
type LoanStatusUseCase struct {
	uow       port.UnitOfWork
	publisher port.EventPublisher
	clock     port.Clock
	logger    *slog.Logger
}

// NewLoanStatusUseCase wires dependencies.
func NewLoanStatusUseCase(uow port.UnitOfWork, publisher port.EventPublisher, clock port.Clock, logger *slog.Logger) *LoanStatusUseCase {
	return &LoanStatusUseCase{uow: uow, publisher: publisher, clock: clock, logger: logger}
}

// Cancel transitions PENDING -> CANCELLED. Returns false when the loan is
// not pending.
func (uc *LoanStatusUseCase) Cancel(ctx context.Context, loanID string) (bool, error) {
	return uc.transition(ctx, loanID, func(loan model.Loan) (model.Loan, bool, event.DomainEvent) {
		next, ok := loan.Cancel()
		return next, ok, event.NewLoanCancelled(loanID, uc.clock.Now())
	})
}

// MarkDefaulted transitions ACTIVE -> DEFAULTED. Returns false when the
// loan is not active.
func (uc *LoanStatusUseCase) MarkDefaulted(ctx context.Context, loanID string) (bool, error) {
	return uc.transition(ctx, loanID, func(loan model.Loan) (model.Loan, bool, event.DomainEvent) {
		next, ok := loan.MarkDefaulted()
		return next, ok, event.NewLoanDefaulted(loanID, loan.BorrowerID(), uc.clock.Now())
	})
}

// SoftDelete hides the loan from listings. Valid in any state; always
// succeeds for an existing loan.
func (uc *LoanStatusUseCase) SoftDelete(ctx context.Context, loanID string) (bool, error) {
	return uc.transition(ctx, loanID, func(loan model.Loan) (model.Loan, bool, event.DomainEvent) {
		return loan.SoftDelete(uc.clock.Now()), true, nil
	})
}

func (uc *LoanStatusUseCase) transition(
	ctx context.Context,
	loanID string,
	apply func(model.Loan) (model.Loan, bool, event.DomainEvent),
) (bool, error) {
	var (
		applied bool
		evt     event.DomainEvent
	)

	err := uc.uow.Execute(ctx, func(r port.Repositories) error {
		if err := r.Loans.Lock(ctx, loanID); err != nil {
			return err
		}
		loan, err := r.Loans.Get(ctx, loanID)
		if err != nil {
			return fmt.Errorf("find loan: %w", err)
		}

		next, ok, e := apply(loan)
		if !ok {
			return nil
		}
		if err := r.Loans.Update(ctx, next); err != nil {
			return fmt.Errorf("save loan: %w", err)
		}
		applied = true
		evt = e
		return nil
	})
	if err != nil || !applied {
		return false, err
	}

	if evt != nil {
		if err := uc.publisher.Publish(ctx, evt); err != nil {
			uc.logger.WarnContext(ctx, "failed to publish loan status event", "loan_id", loanID, "error", err)
		}
	}
	return true, nil
}
