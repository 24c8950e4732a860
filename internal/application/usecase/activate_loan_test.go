package usecase_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suhailma1ik/KinCashBackend/internal/application/usecase"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/model"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/port"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/valueobject"
)

var (
	testNow    = time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC)
	testClock  = port.ClockFunc(func() time.Time { return testNow })
	testLogger = slog.New(slog.DiscardHandler)
)

func pendingLoan(t *testing.T) model.Loan {
	t.Helper()
	loan, err := model.NewLoan(
		"lender-1", "borrower-1", "borrower-1",
		decimal.NewFromInt(1000), decimal.NewFromInt(12), 12,
		valueobject.CycleMonthly, 15, decimal.NewFromInt(2),
		testNow,
	)
	require.NoError(t, err)
	return loan
}

func TestActivateLoan_Execute(t *testing.T) {
	t.Run("activates and generates the schedule", func(t *testing.T) {
		store := newMemStore()
		loan := pendingLoan(t)
		store.addLoan(loan)
		publisher := &mockPublisher{}

		uc := usecase.NewActivateLoanUseCase(store, publisher, testClock, testLogger)

		activated, err := uc.Execute(context.Background(), loan.ID())
		require.NoError(t, err)
		assert.True(t, activated)

		saved := store.loans[loan.ID()]
		assert.True(t, saved.Status().Equal(valueobject.LoanStatusActive))
		assert.Equal(t, testNow, saved.ApprovedAt())

		assert.Len(t, store.installments, 12)

		disbursements := store.transactionsOfType(valueobject.TransactionTypeDisbursement)
		require.Len(t, disbursements, 1)
		assert.True(t, disbursements[0].Amount.Equal(loan.Principal()))
		assert.Equal(t, loan.BorrowerID(), disbursements[0].ToUserID)

		assert.Contains(t, publisher.eventTypes(), "lending.loan.activated")
	})

	t.Run("second activation is a no-op", func(t *testing.T) {
		store := newMemStore()
		loan := pendingLoan(t)
		store.addLoan(loan)
		publisher := &mockPublisher{}

		uc := usecase.NewActivateLoanUseCase(store, publisher, testClock, testLogger)

		_, err := uc.Execute(context.Background(), loan.ID())
		require.NoError(t, err)
		firstSchedule := len(store.installments)

		activated, err := uc.Execute(context.Background(), loan.ID())
		require.NoError(t, err)
		assert.False(t, activated)
		assert.Len(t, store.installments, firstSchedule, "existing schedule stays untouched")
		assert.Len(t, store.transactionsOfType(valueobject.TransactionTypeDisbursement), 1)
	})

	t.Run("unknown loan fails", func(t *testing.T) {
		store := newMemStore()
		uc := usecase.NewActivateLoanUseCase(store, &mockPublisher{}, testClock, testLogger)

		_, err := uc.Execute(context.Background(), "missing")
		assert.ErrorIs(t, err, valueobject.ErrNotFound)
	})

	t.Run("publish failure does not fail activation", func(t *testing.T) {
		store := newMemStore()
		loan := pendingLoan(t)
		store.addLoan(loan)
		publisher := &mockPublisher{err: assert.AnError}

		uc := usecase.NewActivateLoanUseCase(store, publisher, testClock, testLogger)

		activated, err := uc.Execute(context.Background(), loan.ID())
		require.NoError(t, err)
		assert.True(t, activated)
		assert.True(t, store.loans[loan.ID()].Status().Equal(valueobject.LoanStatusActive))
	})
}
