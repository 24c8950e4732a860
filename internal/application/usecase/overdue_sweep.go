package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/suhailma1ik/KinCashBackend/internal/application/dto"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/event"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/model"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/port"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/valueobject"
)

// OverdueSweepUseCase is the periodic batch pass over all active loans: it
// marks installments past their due date LATE and applies the configured
// late fee. Each loan is processed in its own serialized unit of work so a
// sweep never interleaves with a concurrent allocation on the same loan.
//
// A still-LATE installment accrues the fee again on every sweep; the
// accrual is additive and unbounded.
type OverdueSweepUseCase struct {
	uow       port.UnitOfWork
	publisher port.EventPublisher
	logger    *slog.Logger
}

// NewOverdueSweepUseCase wires dependencies.
func NewOverdueSweepUseCase(uow port.UnitOfWork, publisher port.EventPublisher, logger *slog.Logger) *OverdueSweepUseCase {
	return &OverdueSweepUseCase{uow: uow, publisher: publisher, logger: logger}
}

// Execute sweeps all active loans as of the given date and returns the
// newly-late and fee-applied installment sets for external notification.
func (uc *OverdueSweepUseCase) Execute(ctx context.Context, asOf time.Time) (dto.SweepResult, error) {
	var active []model.Loan
	err := uc.uow.Execute(ctx, func(r port.Repositories) error {
		loans, err := r.Loans.ListActive(ctx)
		if err != nil {
			return fmt.Errorf("list active loans: %w", err)
		}
		active = loans
		return nil
	})
	if err != nil {
		return dto.SweepResult{}, err
	}

	result := dto.SweepResult{}
	for _, loan := range active {
		late, feeApplied, err := uc.sweepLoan(ctx, loan, asOf)
		if err != nil {
			return dto.SweepResult{}, fmt.Errorf("sweep loan %s: %w", loan.ID(), err)
		}
		result.LateInstallments = append(result.LateInstallments, late...)
		result.FeeAppliedInstallments = append(result.FeeAppliedInstallments, feeApplied...)
	}

	uc.logger.InfoContext(ctx, "overdue sweep finished",
		"as_of", asOf.Format(time.DateOnly),
		"late", len(result.LateInstallments),
		"fees_applied", len(result.FeeAppliedInstallments),
	)
	return result, nil
}

func (uc *OverdueSweepUseCase) sweepLoan(ctx context.Context, loan model.Loan, asOf time.Time) (late, feeApplied []dto.InstallmentResponse, err error) {
	var events []event.DomainEvent

	err = uc.uow.Execute(ctx, func(r port.Repositories) error {
		if err := r.Loans.Lock(ctx, loan.ID()); err != nil {
			return err
		}

		installments, err := r.Installments.ListUnpaidByLoan(ctx, loan.ID())
		if err != nil {
			return fmt.Errorf("load installments: %w", err)
		}

		for i := range installments {
			inst := &installments[i]

			// Overdue means strictly before the sweep date. Installments
			// awaiting lender confirmation are left alone.
			if inst.Status.Equal(valueobject.InstallmentStatusPendingConfirmation) {
				continue
			}
			if !inst.DueDate.Before(asOf) {
				continue
			}

			touched := false
			if inst.MarkLate(asOf) {
				touched = true
				late = append(late, dto.FromInstallment(*inst))
				events = append(events, event.NewInstallmentMarkedLate(loan.ID(), inst.ID, inst.DueDate, asOf))
			}
			if loan.HasLateFee() {
				if fee, ok := inst.ApplyLateFee(loan.LateFeePct()); ok {
					touched = true
					feeApplied = append(feeApplied, dto.FromInstallment(*inst))
					if err := r.Transactions.Create(ctx, model.NewLateFeeTransaction(loan, fee, asOf)); err != nil {
						return fmt.Errorf("record late fee transaction: %w", err)
					}
					events = append(events, event.NewLateFeeApplied(loan.ID(), inst.ID, fee, asOf))
				}
			}
			if touched {
				if err := r.Installments.Update(ctx, *inst); err != nil {
					return fmt.Errorf("save installment %d: %w", inst.ID, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if len(events) > 0 {
		if err := uc.publisher.Publish(ctx, events...); err != nil {
			uc.logger.WarnContext(ctx, "failed to publish sweep events", "loan_id", loan.ID(), "error", err)
		}
	}
	return late, feeApplied, nil
}
