package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/suhailma1ik/KinCashBackend/internal/domain/valueobject"
	"github.com/suhailma1ik/KinCashBackend/pkg/money"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// CalculateEMI computes the level installment amount for a reducing-balance
// loan:
//
//	EMI = P * r * (1+r)^n / ((1+r)^n - 1)
//
// where r is the period rate (annual rate / 12 for MONTHLY, / 52 for WEEKLY)
// and n the period count (term months, or term months * 4 for WEEKLY). A
// zero-rate loan is an even split of the principal. The result is quantized
// to two decimal places.
func CalculateEMI(
	principal, annualRatePct decimal.Decimal,
	termMonths int,
	cycle valueobject.Cycle,
) (decimal.Decimal, error) {
	if termMonths <= 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: term must be positive, got %d", valueobject.ErrInvalidParameters, termMonths)
	}
	if !principal.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: principal must be positive, got %s", valueobject.ErrInvalidParameters, principal)
	}
	if annualRatePct.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%w: rate must not be negative, got %s", valueobject.ErrInvalidParameters, annualRatePct)
	}

	periods := periodCount(termMonths, cycle)
	if annualRatePct.IsZero() {
		return money.Quantize(principal.Div(decimal.NewFromInt(int64(periods)))), nil
	}

	r := periodRate(annualRatePct, cycle)
	pow := one.Add(r).Pow(decimal.NewFromInt(int64(periods)))
	emi := principal.Mul(r).Mul(pow).Div(pow.Sub(one))
	return money.Quantize(emi), nil
}

// BuildSchedule produces the ordered installment list for an activated loan.
//
// The first due date snaps the approval date to the loan's due day: for
// MONTHLY the day-of-month is clamped to the month's length and rolled one
// month forward when the snapped date is already in the past relative to
// now; for WEEKLY it is the next occurrence of the due weekday (a full week
// out when the approval day is that weekday).
//
// Each period's interest is computed on the remaining principal. The final
// installment's principal component is forced to the remaining balance so
// the principal components sum to the loan principal exactly, absorbing
// rounding drift. Generation stops early once the balance reaches zero.
func BuildSchedule(loan Loan, now time.Time) ([]Installment, error) {
	if !loan.Status().Equal(valueobject.LoanStatusActive) || loan.ApprovedAt().IsZero() {
		return nil, fmt.Errorf("%w: schedule requires an active loan with an approval date", valueobject.ErrInvalidStatusTransition)
	}

	emi, err := CalculateEMI(loan.Principal(), loan.InterestRatePct(), loan.TermMonths(), loan.Cycle())
	if err != nil {
		return nil, err
	}

	first := firstDueDate(loan, now)
	periods := periodCount(loan.TermMonths(), loan.Cycle())
	rate := periodRate(loan.InterestRatePct(), loan.Cycle())

	installments := make([]Installment, 0, periods)
	remaining := loan.Principal()

	for i := 0; i < periods; i++ {
		var dueDate time.Time
		if loan.Cycle().Equal(valueobject.CycleMonthly) {
			dueDate = addMonthsClamped(first, i)
		} else {
			dueDate = first.AddDate(0, 0, 7*i)
		}

		interest := money.Quantize(remaining.Mul(rate))

		var principalComponent, amountDue decimal.Decimal
		if i == periods-1 {
			principalComponent = remaining
			amountDue = remaining.Add(interest)
		} else {
			principalComponent = money.Min(emi.Sub(interest), remaining)
			amountDue = emi
		}

		installments = append(installments, Installment{
			LoanID:            loan.ID(),
			Sequence:          i + 1,
			DueDate:           dueDate,
			AmountDue:         money.Quantize(amountDue),
			InterestComponent: interest,
			AmountPaid:        decimal.Zero,
			LateFeeAccrued:    decimal.Zero,
			Status:            valueobject.InstallmentStatusDue,
		})

		remaining = remaining.Sub(principalComponent)
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
	}

	return installments, nil
}

// periodCount returns the number of installments: the nominal term for
// MONTHLY, four periods per nominal month for WEEKLY.
func periodCount(termMonths int, cycle valueobject.Cycle) int {
	if cycle.Equal(valueobject.CycleWeekly) {
		return termMonths * 4
	}
	return termMonths
}

// periodRate converts an annual percentage rate into a per-period fraction.
func periodRate(annualRatePct decimal.Decimal, cycle valueobject.Cycle) decimal.Decimal {
	divisor := decimal.NewFromInt(12)
	if cycle.Equal(valueobject.CycleWeekly) {
		divisor = decimal.NewFromInt(52)
	}
	return annualRatePct.Div(divisor).Div(hundred)
}

// firstDueDate snaps the approval date to the loan's configured due day.
func firstDueDate(loan Loan, now time.Time) time.Time {
	start := dateOf(loan.ApprovedAt())
	today := dateOf(now)

	if loan.Cycle().Equal(valueobject.CycleMonthly) {
		snapped := clampToMonth(start.Year(), start.Month(), loan.DueDay())
		if snapped.Before(today) {
			snapped = clampToMonth(start.Year(), start.Month()+1, loan.DueDay())
		}
		return snapped
	}

	// Weekly: next occurrence of the due weekday, a full week out when the
	// approval day is already that weekday.
	daysAhead := loan.DueDay() - int(start.Weekday())
	if daysAhead <= 0 {
		daysAhead += 7
	}
	return start.AddDate(0, 0, daysAhead)
}

// clampToMonth builds the date year/month/day with the day clamped to the
// month's length. Month overflow is normalized (month 13 becomes January of
// the next year).
func clampToMonth(year int, month time.Month, day int) time.Time {
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfMonth.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfMonth.Year(), firstOfMonth.Month(), day, 0, 0, 0, 0, time.UTC)
}

// addMonthsClamped advances base by n months keeping base's day-of-month,
// clamped to the target month's length (so the 31st falls on the 28th/29th
// in February rather than overflowing into March).
func addMonthsClamped(base time.Time, n int) time.Time {
	return clampToMonth(base.Year(), base.Month()+time.Month(n), base.Day())
}
