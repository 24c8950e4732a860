package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/suhailma1ik/KinCashBackend/internal/application/dto"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/event"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/model"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/port"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/valueobject"
)

// RecordPaymentUseCase records a payment and allocates it across the loan's
// outstanding installments. The payment row, the installment updates, the
// repayment ledger entry and a possible loan closure commit as one atomic
// unit, serialized per loan, and allocation runs at most once per payment
// record.
type RecordPaymentUseCase struct {
	uow       port.UnitOfWork
	publisher port.EventPublisher
	clock     port.Clock
	logger    *slog.Logger
}

// NewRecordPaymentUseCase wires dependencies.
func NewRecordPaymentUseCase(uow port.UnitOfWork, publisher port.EventPublisher, clock port.Clock, logger *slog.Logger) *RecordPaymentUseCase {
	return &RecordPaymentUseCase{uow: uow, publisher: publisher, clock: clock, logger: logger}
}

// Execute records and allocates the payment. A request whose idempotency
// key matches an already-recorded payment returns that payment with
// Duplicate set and does not allocate again.
func (uc *RecordPaymentUseCase) Execute(ctx context.Context, req dto.RecordPaymentRequest) (dto.PaymentResponse, error) {
	now := uc.clock.Now()

	payment, err := model.NewPayment(req.LoanID, req.PayerID, req.Amount, req.Remarks, req.IdempotencyKey, now)
	if err != nil {
		return dto.PaymentResponse{}, fmt.Errorf("record payment: %w", err)
	}

	var (
		resp   dto.PaymentResponse
		events []event.DomainEvent
	)

	err = uc.uow.Execute(ctx, func(r port.Repositories) error {
		if err := r.Loans.Lock(ctx, req.LoanID); err != nil {
			return err
		}

		loan, err := r.Loans.Get(ctx, req.LoanID)
		if err != nil {
			return fmt.Errorf("find loan: %w", err)
		}

		created, err := r.Payments.Create(ctx, payment)
		if err != nil {
			return fmt.Errorf("save payment: %w", err)
		}
		if !created {
			existing, err := r.Payments.GetByIdempotencyKey(ctx, payment.IdempotencyKey)
			if err != nil {
				return fmt.Errorf("load duplicate payment: %w", err)
			}
			resp = dto.PaymentResponse{
				PaymentID:  existing.ID,
				LoanID:     existing.LoanID,
				Amount:     existing.Amount,
				LoanStatus: loan.Status().String(),
				Duplicate:  true,
			}
			return nil
		}

		unpaid, err := r.Installments.ListUnpaidByLoan(ctx, req.LoanID)
		if err != nil {
			return fmt.Errorf("load installments: %w", err)
		}
		targets := make([]*model.Installment, len(unpaid))
		for i := range unpaid {
			targets[i] = &unpaid[i]
		}

		result := model.AllocatePayment(loan, targets, payment)

		for _, inst := range result.Updated {
			if err := r.Installments.Update(ctx, *inst); err != nil {
				return fmt.Errorf("save installment %d: %w", inst.ID, err)
			}
		}
		if err := r.Transactions.Create(ctx, result.Transaction); err != nil {
			return fmt.Errorf("record repayment transaction: %w", err)
		}

		settled := 0
		for _, inst := range result.Updated {
			if inst.Status.Equal(valueobject.InstallmentStatusPaid) {
				settled++
			}
		}

		all, err := r.Installments.ListByLoan(ctx, req.LoanID)
		if err != nil {
			return fmt.Errorf("reload installments: %w", err)
		}
		loanStatus := loan.Status()
		if closed, ok := loan.MarkPaid(all, now); ok {
			if err := r.Loans.Update(ctx, closed); err != nil {
				return fmt.Errorf("close loan: %w", err)
			}
			loanStatus = closed.Status()
			events = append(events, event.NewLoanClosed(loan.ID(), loan.LenderID(), loan.BorrowerID(), now))
		}

		resp = dto.PaymentResponse{
			PaymentID:           payment.ID,
			LoanID:              loan.ID(),
			Amount:              payment.Amount,
			SettledInstallments: settled,
			Unallocated:         result.Unallocated,
			LoanStatus:          loanStatus.String(),
		}
		events = append(events, event.NewPaymentAllocated(
			loan.ID(), payment.ID, payment.PayerID,
			payment.Amount, result.Unallocated, settled, now,
		))
		return nil
	})
	if err != nil {
		return dto.PaymentResponse{}, err
	}

	if err := uc.publisher.Publish(ctx, events...); err != nil {
		uc.logger.WarnContext(ctx, "failed to publish payment events", "loan_id", req.LoanID, "error", err)
	}

	uc.logger.InfoContext(ctx, "payment recorded",
		"loan_id", req.LoanID,
		"payment_id", resp.PaymentID,
		"amount", req.Amount,
		"duplicate", resp.Duplicate,
	)
	return resp, nil
}
