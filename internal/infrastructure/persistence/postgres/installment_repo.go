package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/suhailma1ik/KinCashBackend/internal/domain/model"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/valueobject"
	pkgpostgres "github.com/suhailma1ik/KinCashBackend/pkg/postgres"
)

const installmentColumns = `
	id, loan_id, sequence, due_date,
	amount_due, interest_component, amount_paid, late_fee_accrued,
	paid_at, status
`

// InstallmentRepo implements port.InstallmentRepository against PostgreSQL.
type InstallmentRepo struct {
	q pkgpostgres.Querier
}

// ReplaceForLoan discards any existing schedule for the loan and inserts the
// given installments, returning them with their assigned ids.
func (r *InstallmentRepo) ReplaceForLoan(ctx context.Context, loanID string, installments []model.Installment) ([]model.Installment, error) {
	if _, err := r.q.Exec(ctx, `DELETE FROM installments WHERE loan_id = $1`, loanID); err != nil {
		return nil, fmt.Errorf("clear installments: %w", err)
	}

	query := `
		INSERT INTO installments (
			loan_id, sequence, due_date,
			amount_due, interest_component, amount_paid, late_fee_accrued,
			paid_at, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id
	`
	out := make([]model.Installment, len(installments))
	for i, inst := range installments {
		row := r.q.QueryRow(ctx, query,
			loanID, inst.Sequence, inst.DueDate,
			inst.AmountDue, inst.InterestComponent, inst.AmountPaid, inst.LateFeeAccrued,
			nullTime(inst.PaidAt), inst.Status.String(),
		)
		if err := row.Scan(&inst.ID); err != nil {
			return nil, fmt.Errorf("insert installment %d: %w", inst.Sequence, err)
		}
		inst.LoanID = loanID
		out[i] = inst
	}
	return out, nil
}

// Get retrieves a single installment by id.
func (r *InstallmentRepo) Get(ctx context.Context, id int64) (model.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installments WHERE id = $1`
	inst, err := scanInstallmentRow(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Installment{}, fmt.Errorf("installment %d: %w", id, valueobject.ErrNotFound)
	}
	return inst, err
}

// ListByLoan returns the loan's full schedule ordered by due date.
func (r *InstallmentRepo) ListByLoan(ctx context.Context, loanID string) ([]model.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM installments
		WHERE loan_id = $1
		ORDER BY due_date, sequence
	`
	return r.queryInstallments(ctx, query, loanID)
}

// ListUnpaidByLoan returns installments not yet PAID, ordered by due date.
func (r *InstallmentRepo) ListUnpaidByLoan(ctx context.Context, loanID string) ([]model.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM installments
		WHERE loan_id = $1 AND status <> $2
		ORDER BY due_date, sequence
	`
	return r.queryInstallments(ctx, query, loanID, valueobject.InstallmentStatusPaid.String())
}

// Update persists the installment's mutable columns.
func (r *InstallmentRepo) Update(ctx context.Context, inst model.Installment) error {
	query := `
		UPDATE installments SET
			amount_paid      = $2,
			late_fee_accrued = $3,
			paid_at          = $4,
			status           = $5
		WHERE id = $1
	`
	tag, err := r.q.Exec(ctx, query,
		inst.ID, inst.AmountPaid, inst.LateFeeAccrued,
		nullTime(inst.PaidAt), inst.Status.String(),
	)
	if err != nil {
		return fmt.Errorf("update installment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("installment %d: %w", inst.ID, valueobject.ErrNotFound)
	}
	return nil
}

func (r *InstallmentRepo) queryInstallments(ctx context.Context, query string, args ...any) ([]model.Installment, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query installments: %w", err)
	}
	defer rows.Close()

	var installments []model.Installment
	for rows.Next() {
		inst, err := scanInstallmentRow(rows)
		if err != nil {
			return nil, err
		}
		installments = append(installments, inst)
	}
	return installments, rows.Err()
}

func scanInstallmentRow(s scannable) (model.Installment, error) {
	var (
		inst      model.Installment
		paidAt    *time.Time
		statusStr string
	)
	err := s.Scan(
		&inst.ID, &inst.LoanID, &inst.Sequence, &inst.DueDate,
		&inst.AmountDue, &inst.InterestComponent, &inst.AmountPaid, &inst.LateFeeAccrued,
		&paidAt, &statusStr,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Installment{}, err
		}
		return model.Installment{}, fmt.Errorf("scan installment: %w", err)
	}
	inst.PaidAt = timeOf(paidAt)
	inst.Status, err = valueobject.NewInstallmentStatus(statusStr)
	if err != nil {
		return model.Installment{}, fmt.Errorf("parse installment status: %w", err)
	}
	return inst, nil
}
