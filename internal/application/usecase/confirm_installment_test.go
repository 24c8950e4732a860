package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suhailma1ik/KinCashBackend/internal/application/usecase"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/model"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/valueobject"
)

func loanInstallments(t *testing.T, store *memStore, loanID string) []model.Installment {
	t.Helper()
	installments, err := (&memInstallments{s: store}).ListByLoan(context.Background(), loanID)
	require.NoError(t, err)
	return installments
}

func TestTwoPhaseConfirmation(t *testing.T) {
	t.Run("pending then confirmed", func(t *testing.T) {
		store := newMemStore()
		loan := setupActiveLoan(t, store)
		publisher := &mockPublisher{}

		pendingUC := usecase.NewMarkInstallmentPendingUseCase(store, publisher, testClock, testLogger)
		confirmUC := usecase.NewConfirmInstallmentPaymentUseCase(store, publisher, testClock, testLogger)

		first := loanInstallments(t, store, loan.ID())[0]

		marked, err := pendingUC.Execute(context.Background(), first.ID, decimal.NewFromInt(100))
		require.NoError(t, err)
		assert.True(t, marked)
		assert.True(t, store.installments[first.ID].Status.Equal(valueobject.InstallmentStatusPendingConfirmation))
		assert.Contains(t, publisher.eventTypes(), "lending.installment.pending_confirmation")

		// Claiming again while pending is rejected.
		marked, err = pendingUC.Execute(context.Background(), first.ID, decimal.NewFromInt(50))
		require.NoError(t, err)
		assert.False(t, marked)

		confirmed, err := confirmUC.Execute(context.Background(), first.ID)
		require.NoError(t, err)
		assert.True(t, confirmed)
		assert.True(t, store.installments[first.ID].Status.Equal(valueobject.InstallmentStatusPaid))
		assert.Contains(t, publisher.eventTypes(), "lending.installment.confirmed")

		// Two installments remain open, so the loan stays active.
		assert.True(t, store.loans[loan.ID()].Status().Equal(valueobject.LoanStatusActive))
	})

	t.Run("confirming the last installment closes the loan", func(t *testing.T) {
		store := newMemStore()
		loan := setupActiveLoan(t, store)
		publisher := &mockPublisher{}

		pendingUC := usecase.NewMarkInstallmentPendingUseCase(store, publisher, testClock, testLogger)
		confirmUC := usecase.NewConfirmInstallmentPaymentUseCase(store, publisher, testClock, testLogger)

		for _, inst := range loanInstallments(t, store, loan.ID()) {
			marked, err := pendingUC.Execute(context.Background(), inst.ID, decimal.NewFromInt(100))
			require.NoError(t, err)
			require.True(t, marked)
			confirmed, err := confirmUC.Execute(context.Background(), inst.ID)
			require.NoError(t, err)
			require.True(t, confirmed)
		}

		assert.True(t, store.loans[loan.ID()].Status().Equal(valueobject.LoanStatusPaid))
		assert.Contains(t, publisher.eventTypes(), "lending.loan.closed")
	})

	t.Run("confirm without a pending claim is a no-op", func(t *testing.T) {
		store := newMemStore()
		loan := setupActiveLoan(t, store)

		confirmUC := usecase.NewConfirmInstallmentPaymentUseCase(store, &mockPublisher{}, testClock, testLogger)

		first := loanInstallments(t, store, loan.ID())[0]
		confirmed, err := confirmUC.Execute(context.Background(), first.ID)
		require.NoError(t, err)
		assert.False(t, confirmed)
		assert.True(t, store.installments[first.ID].Status.Equal(valueobject.InstallmentStatusDue))
	})

	t.Run("unknown installment fails", func(t *testing.T) {
		store := newMemStore()
		pendingUC := usecase.NewMarkInstallmentPendingUseCase(store, &mockPublisher{}, testClock, testLogger)

		_, err := pendingUC.Execute(context.Background(), 999, decimal.NewFromInt(100))
		assert.ErrorIs(t, err, valueobject.ErrNotFound)
	})
}

// A transition must act on the installment state as of the loan lock, not
// on whatever the initial lookup read. These tests commit a competing write
// between the lookup and the lock and expect the use case to observe it.
func TestInstallmentTransitions_ReadUnderLock(t *testing.T) {
	t.Run("mark paid does not overwrite a settled installment", func(t *testing.T) {
		store := newMemStore()
		loan := setupActiveLoan(t, store)
		first := loanInstallments(t, store, loan.ID())[0]

		store.onLock = func() {
			inst := store.installments[first.ID]
			require.True(t, inst.MarkAsPaid(decimal.NewFromInt(100), testNow))
			store.installments[first.ID] = inst
		}

		uc := usecase.NewMarkInstallmentPaidUseCase(store, &mockPublisher{}, testClock, testLogger)
		settled, err := uc.Execute(context.Background(), first.ID, decimal.NewFromInt(40))
		require.NoError(t, err)
		assert.False(t, settled, "an installment settled by a competing writer stays settled")

		got := store.installments[first.ID]
		assert.True(t, got.AmountPaid.Equal(decimal.NewFromInt(100)),
			"amount paid must not be overwritten, got %s", got.AmountPaid)
		assert.Equal(t, testNow, got.PaidAt)
	})

	t.Run("claim sees an allocation committed before the lock", func(t *testing.T) {
		store := newMemStore()
		loan := setupActiveLoan(t, store)
		first := loanInstallments(t, store, loan.ID())[0]

		store.onLock = func() {
			inst := store.installments[first.ID]
			require.True(t, inst.MarkAsPaid(decimal.NewFromInt(100), testNow))
			store.installments[first.ID] = inst
		}

		uc := usecase.NewMarkInstallmentPendingUseCase(store, &mockPublisher{}, testClock, testLogger)
		marked, err := uc.Execute(context.Background(), first.ID, decimal.NewFromInt(100))
		require.NoError(t, err)
		assert.False(t, marked)
		assert.True(t, store.installments[first.ID].Status.Equal(valueobject.InstallmentStatusPaid))
	})

	t.Run("confirm acts on the pending claim recorded before the lock", func(t *testing.T) {
		store := newMemStore()
		loan := setupActiveLoan(t, store)
		first := loanInstallments(t, store, loan.ID())[0]

		store.onLock = func() {
			inst := store.installments[first.ID]
			require.True(t, inst.MarkPendingConfirmation(decimal.NewFromInt(100), testNow))
			store.installments[first.ID] = inst
		}

		uc := usecase.NewConfirmInstallmentPaymentUseCase(store, &mockPublisher{}, testClock, testLogger)
		confirmed, err := uc.Execute(context.Background(), first.ID)
		require.NoError(t, err)
		assert.True(t, confirmed, "the claim committed before the lock is visible under it")
		assert.True(t, store.installments[first.ID].Status.Equal(valueobject.InstallmentStatusPaid))
	})
}

func TestMarkInstallmentPaid_Legacy(t *testing.T) {
	t.Run("settles directly without confirmation", func(t *testing.T) {
		store := newMemStore()
		loan := setupActiveLoan(t, store)
		publisher := &mockPublisher{}

		uc := usecase.NewMarkInstallmentPaidUseCase(store, publisher, testClock, testLogger)

		for _, inst := range loanInstallments(t, store, loan.ID()) {
			settled, err := uc.Execute(context.Background(), inst.ID, decimal.NewFromInt(100))
			require.NoError(t, err)
			assert.True(t, settled)
			assert.True(t, store.installments[inst.ID].Status.Equal(valueobject.InstallmentStatusPaid))
		}

		assert.True(t, store.loans[loan.ID()].Status().Equal(valueobject.LoanStatusPaid))
	})

	t.Run("already settled is a no-op", func(t *testing.T) {
		store := newMemStore()
		loan := setupActiveLoan(t, store)

		uc := usecase.NewMarkInstallmentPaidUseCase(store, &mockPublisher{}, testClock, testLogger)

		first := loanInstallments(t, store, loan.ID())[0]
		settled, err := uc.Execute(context.Background(), first.ID, decimal.NewFromInt(100))
		require.NoError(t, err)
		require.True(t, settled)

		settled, err = uc.Execute(context.Background(), first.ID, decimal.NewFromInt(100))
		require.NoError(t, err)
		assert.False(t, settled)
	})
}
