package usecase

import (
	"context"
	"fmt"

	"github.com/suhailma1ik/KinCashBackend/internal/application/dto"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/port"
)

// GetLoanUseCase serves read-only loan queries.
type GetLoanUseCase struct {
	loans        port.LoanRepository
	installments port.InstallmentRepository
}

// NewGetLoanUseCase wires dependencies.
func NewGetLoanUseCase(loans port.LoanRepository, installments port.InstallmentRepository) *GetLoanUseCase {
	return &GetLoanUseCase{loans: loans, installments: installments}
}

// Execute returns a loan together with its repayment schedule.
func (uc *GetLoanUseCase) Execute(ctx context.Context, loanID string) (dto.LoanDetailResponse, error) {
	loan, err := uc.loans.Get(ctx, loanID)
	if err != nil {
		return dto.LoanDetailResponse{}, fmt.Errorf("find loan: %w", err)
	}

	schedule, err := uc.installments.ListByLoan(ctx, loanID)
	if err != nil {
		return dto.LoanDetailResponse{}, fmt.Errorf("load schedule: %w", err)
	}

	return dto.LoanDetailResponse{
		Loan:     dto.FromLoan(loan),
		Schedule: dto.FromInstallments(schedule),
	}, nil
}

// List returns all non-deleted loans where the user is a party.
func (uc *GetLoanUseCase) List(ctx context.Context, userID string) ([]dto.LoanResponse, error) {
	loans, err := uc.loans.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}

	out := make([]dto.LoanResponse, 0, len(loans))
	for _, l := range loans {
		out = append(out, dto.FromLoan(l))
	}
	return out, nil
}
