package usecase

import (
	"context"
	"fmt"

	"github.com/suhailma1ik/KinCashBackend/internal/application/dto"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/model"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/port"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/valueobject"
)

// CreateLoanUseCase records a new loan in PENDING status.
type CreateLoanUseCase struct {
	loans port.LoanRepository
	clock port.Clock
}

// NewCreateLoanUseCase wires dependencies.
func NewCreateLoanUseCase(loans port.LoanRepository, clock port.Clock) *CreateLoanUseCase {
	return &CreateLoanUseCase{loans: loans, clock: clock}
}

// Execute validates the request and persists a pending loan.
func (uc *CreateLoanUseCase) Execute(ctx context.Context, req dto.CreateLoanRequest) (dto.LoanResponse, error) {
	cycle, err := valueobject.NewCycle(req.Cycle)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("%w: %v", valueobject.ErrInvalidParameters, err)
	}

	loan, err := model.NewLoan(
		req.LenderID, req.BorrowerID, req.CreatedByID,
		req.Principal, req.InterestRatePct,
		req.TermMonths, cycle, req.DueDay, req.LateFeePct,
		uc.clock.Now(),
	)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("create loan: %w", err)
	}

	if err := uc.loans.Create(ctx, loan); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("save loan: %w", err)
	}

	return dto.FromLoan(loan), nil
}
