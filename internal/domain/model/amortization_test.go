package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suhailma1ik/KinCashBackend/internal/domain/valueobject"
)

func activeLoan(t *testing.T, principal, rate decimal.Decimal, termMonths int, cycle valueobject.Cycle, dueDay int, approvedAt time.Time) Loan {
	t.Helper()
	loan, err := NewLoan(
		"lender-1", "borrower-1", "lender-1",
		principal, rate, termMonths, cycle, dueDay,
		decimal.Zero, approvedAt,
	)
	require.NoError(t, err)
	active, ok := loan.Activate(approvedAt)
	require.True(t, ok)
	return active
}

func TestCalculateEMI_OneYearMonthly(t *testing.T) {
	// 1000 at 12% for 12 months: r = 0.01, EMI = 88.85.
	emi, err := CalculateEMI(
		decimal.NewFromInt(1000), decimal.NewFromInt(12), 12, valueobject.CycleMonthly,
	)
	require.NoError(t, err)
	assert.True(t, emi.Equal(decimal.NewFromFloat(88.85)),
		"expected EMI of 88.85, got %s", emi)
}

func TestCalculateEMI_ZeroRate(t *testing.T) {
	emi, err := CalculateEMI(
		decimal.NewFromInt(1200), decimal.Zero, 12, valueobject.CycleMonthly,
	)
	require.NoError(t, err)
	assert.True(t, emi.Equal(decimal.NewFromInt(100)),
		"zero-rate EMI should be an even split, got %s", emi)
}

func TestCalculateEMI_InvalidInputs(t *testing.T) {
	_, err := CalculateEMI(decimal.NewFromInt(1000), decimal.NewFromInt(12), 0, valueobject.CycleMonthly)
	assert.ErrorIs(t, err, valueobject.ErrInvalidParameters)

	_, err = CalculateEMI(decimal.Zero, decimal.NewFromInt(12), 12, valueobject.CycleMonthly)
	assert.ErrorIs(t, err, valueobject.ErrInvalidParameters)

	_, err = CalculateEMI(decimal.NewFromInt(1000), decimal.NewFromInt(-1), 12, valueobject.CycleMonthly)
	assert.ErrorIs(t, err, valueobject.ErrInvalidParameters)
}

func TestBuildSchedule_OneYearMonthly(t *testing.T) {
	approved := time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC)
	loan := activeLoan(t,
		decimal.NewFromInt(1000), decimal.NewFromInt(12), 12,
		valueobject.CycleMonthly, 15, approved,
	)

	schedule, err := BuildSchedule(loan, approved)
	require.NoError(t, err)
	require.Len(t, schedule, 12)

	first := schedule[0]
	assert.Equal(t, 1, first.Sequence)
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), first.DueDate)
	assert.True(t, first.AmountDue.Equal(decimal.NewFromFloat(88.85)),
		"first installment should equal the EMI, got %s", first.AmountDue)
	// First month interest = 1000 * 0.01 = 10.00.
	assert.True(t, first.InterestComponent.Equal(decimal.NewFromInt(10)),
		"first interest should be 10.00, got %s", first.InterestComponent)
	assert.True(t, first.Status.Equal(valueobject.InstallmentStatusDue))

	// Principal components must sum to the principal exactly.
	totalPrincipal := decimal.Zero
	totalDue := decimal.Zero
	for _, inst := range schedule {
		totalPrincipal = totalPrincipal.Add(inst.AmountDue.Sub(inst.InterestComponent))
		totalDue = totalDue.Add(inst.AmountDue)
	}
	assert.True(t, totalPrincipal.Equal(decimal.NewFromInt(1000)),
		"principal components should sum to 1000 exactly, got %s", totalPrincipal)

	// Total repaid is EMI * 12 give or take the final-period correction.
	assert.True(t,
		totalDue.Sub(decimal.NewFromFloat(1066.20)).Abs().LessThan(decimal.NewFromFloat(0.05)),
		"total due should be about 1066.20, got %s", totalDue)

	// Due dates advance month by month on the due day.
	for i, inst := range schedule {
		assert.Equal(t, i+1, inst.Sequence)
		assert.Equal(t, 15, inst.DueDate.Day())
	}
}

func TestBuildSchedule_ZeroRateEvenSplit(t *testing.T) {
	approved := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	loan := activeLoan(t,
		decimal.NewFromInt(1200), decimal.Zero, 12,
		valueobject.CycleMonthly, 1, approved,
	)

	schedule, err := BuildSchedule(loan, approved)
	require.NoError(t, err)
	require.Len(t, schedule, 12)

	for _, inst := range schedule {
		assert.True(t, inst.AmountDue.Equal(decimal.NewFromInt(100)),
			"installment %d should be 100.00, got %s", inst.Sequence, inst.AmountDue)
		assert.True(t, inst.InterestComponent.IsZero())
	}
}

func TestBuildSchedule_Weekly(t *testing.T) {
	// Approved on a Wednesday; due day is Friday (5).
	approved := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	loan := activeLoan(t,
		decimal.NewFromInt(5200), decimal.NewFromInt(10), 3,
		valueobject.CycleWeekly, 5, approved,
	)

	schedule, err := BuildSchedule(loan, approved)
	require.NoError(t, err)
	// Three nominal months at four periods each.
	require.Len(t, schedule, 12)

	assert.Equal(t, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), schedule[0].DueDate)
	for i := 1; i < len(schedule); i++ {
		gap := schedule[i].DueDate.Sub(schedule[i-1].DueDate)
		assert.Equal(t, 7*24*time.Hour, gap, "weekly installments should be seven days apart")
	}

	totalPrincipal := decimal.Zero
	for _, inst := range schedule {
		totalPrincipal = totalPrincipal.Add(inst.AmountDue.Sub(inst.InterestComponent))
	}
	assert.True(t, totalPrincipal.Equal(decimal.NewFromInt(5200)),
		"principal components should sum to 5200 exactly, got %s", totalPrincipal)
}

func TestBuildSchedule_WeeklyOnDueWeekday(t *testing.T) {
	// Approved on a Friday with Friday as the due day: first installment is a
	// full week out, not same-day.
	approved := time.Date(2025, 1, 3, 9, 0, 0, 0, time.UTC)
	loan := activeLoan(t,
		decimal.NewFromInt(1000), decimal.Zero, 1,
		valueobject.CycleWeekly, 5, approved,
	)

	schedule, err := BuildSchedule(loan, approved)
	require.NoError(t, err)
	require.NotEmpty(t, schedule)
	assert.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), schedule[0].DueDate)
}

func TestBuildSchedule_MonthlyDueDayRollsForward(t *testing.T) {
	// Approved on the 15th with due day 10: the snapped date is in the past,
	// so the first installment lands on the 10th of the next month.
	approved := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	loan := activeLoan(t,
		decimal.NewFromInt(1000), decimal.Zero, 2,
		valueobject.CycleMonthly, 10, approved,
	)

	schedule, err := BuildSchedule(loan, approved)
	require.NoError(t, err)
	require.Len(t, schedule, 2)
	assert.Equal(t, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), schedule[0].DueDate)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), schedule[1].DueDate)
}

func TestBuildSchedule_MonthlyDueDayClampsToMonthEnd(t *testing.T) {
	// Due day 31 clamps to the short months instead of overflowing.
	approved := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	loan := activeLoan(t,
		decimal.NewFromInt(3000), decimal.Zero, 4,
		valueobject.CycleMonthly, 31, approved,
	)

	schedule, err := BuildSchedule(loan, approved)
	require.NoError(t, err)
	require.Len(t, schedule, 4)
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), schedule[0].DueDate)
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), schedule[1].DueDate)
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), schedule[2].DueDate)
	assert.Equal(t, time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC), schedule[3].DueDate)
}

func TestBuildSchedule_StopsOnceBalanceSettles(t *testing.T) {
	// A rounded-up even split can clear the balance before the nominal term.
	approved := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	loan := activeLoan(t,
		decimal.NewFromFloat(0.02), decimal.Zero, 3,
		valueobject.CycleMonthly, 1, approved,
	)

	schedule, err := BuildSchedule(loan, approved)
	require.NoError(t, err)
	assert.Len(t, schedule, 2, "0.02 at 0.01 per period should settle in two installments")
}

func TestBuildSchedule_RequiresActiveLoan(t *testing.T) {
	pending, err := NewLoan(
		"lender-1", "borrower-1", "lender-1",
		decimal.NewFromInt(1000), decimal.NewFromInt(12), 12,
		valueobject.CycleMonthly, 15, decimal.Zero,
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	_, err = BuildSchedule(pending, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, valueobject.ErrInvalidStatusTransition)
}
