package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/suhailma1ik/KinCashBackend/internal/domain/model"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/valueobject"
	pkgpostgres "github.com/suhailma1ik/KinCashBackend/pkg/postgres"
)

const loanColumns = `
	id, lender_id, borrower_id, created_by_id,
	principal, interest_rate_pct, term_months,
	cycle, due_day, late_fee_pct, status,
	created_at, approved_at, closed_at,
	is_deleted, deleted_at
`

// LoanRepo implements port.LoanRepository against PostgreSQL.
type LoanRepo struct {
	q pkgpostgres.Querier
}

// Create inserts a new loan row.
func (r *LoanRepo) Create(ctx context.Context, loan model.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`
	_, err := r.q.Exec(ctx, query,
		loan.ID(), loan.LenderID(), loan.BorrowerID(), loan.CreatedByID(),
		loan.Principal(), loan.InterestRatePct(), loan.TermMonths(),
		loan.Cycle().String(), loan.DueDay(), loan.LateFeePct(), loan.Status().String(),
		loan.CreatedAt(), nullTime(loan.ApprovedAt()), nullTime(loan.ClosedAt()),
		loan.IsDeleted(), nullTime(loan.DeletedAt()),
	)
	if err != nil {
		return fmt.Errorf("insert loan: %w", err)
	}
	return nil
}

// Get retrieves a loan by id.
func (r *LoanRepo) Get(ctx context.Context, id string) (model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	loan, err := scanLoanRow(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Loan{}, fmt.Errorf("loan %s: %w", id, valueobject.ErrNotFound)
	}
	return loan, err
}

// Update persists the loan's mutable columns.
func (r *LoanRepo) Update(ctx context.Context, loan model.Loan) error {
	query := `
		UPDATE loans SET
			status      = $2,
			approved_at = $3,
			closed_at   = $4,
			is_deleted  = $5,
			deleted_at  = $6
		WHERE id = $1
	`
	tag, err := r.q.Exec(ctx, query,
		loan.ID(), loan.Status().String(),
		nullTime(loan.ApprovedAt()), nullTime(loan.ClosedAt()),
		loan.IsDeleted(), nullTime(loan.DeletedAt()),
	)
	if err != nil {
		return fmt.Errorf("update loan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("loan %s: %w", loan.ID(), valueobject.ErrNotFound)
	}
	return nil
}

// ListByParticipant returns non-deleted loans where the user is lender or
// borrower, newest first.
func (r *LoanRepo) ListByParticipant(ctx context.Context, userID string) ([]model.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE (lender_id = $1 OR borrower_id = $1) AND NOT is_deleted
		ORDER BY created_at DESC
	`
	return r.queryLoans(ctx, query, userID)
}

// ListActive returns every non-deleted ACTIVE loan.
func (r *LoanRepo) ListActive(ctx context.Context) ([]model.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE status = $1 AND NOT is_deleted
		ORDER BY created_at
	`
	return r.queryLoans(ctx, query, valueobject.LoanStatusActive.String())
}

// Lock takes a per-loan transaction-scoped advisory lock.
func (r *LoanRepo) Lock(ctx context.Context, id string) error {
	return pkgpostgres.AdvisoryLock(ctx, r.q, "loan:"+id)
}

func (r *LoanRepo) queryLoans(ctx context.Context, query string, args ...any) ([]model.Loan, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}
	defer rows.Close()

	var loans []model.Loan
	for rows.Next() {
		loan, err := scanLoanRow(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

func scanLoanRow(s scannable) (model.Loan, error) {
	var (
		id, lenderID, borrowerID, createdByID string
		principal, interestRatePct            decimal.Decimal
		termMonths, dueDay                    int
		cycleStr, statusStr                   string
		lateFeePct                            decimal.Decimal
		createdAt                             time.Time
		approvedAt, closedAt, deletedAt       *time.Time
		isDeleted                             bool
	)

	err := s.Scan(
		&id, &lenderID, &borrowerID, &createdByID,
		&principal, &interestRatePct, &termMonths,
		&cycleStr, &dueDay, &lateFeePct, &statusStr,
		&createdAt, &approvedAt, &closedAt,
		&isDeleted, &deletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Loan{}, err
		}
		return model.Loan{}, fmt.Errorf("scan loan: %w", err)
	}

	cycle, err := valueobject.NewCycle(cycleStr)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse cycle: %w", err)
	}
	status, err := valueobject.NewLoanStatus(statusStr)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse loan status: %w", err)
	}

	return model.ReconstructLoan(
		id, lenderID, borrowerID, createdByID,
		principal, interestRatePct, termMonths,
		cycle, dueDay, lateFeePct, status,
		createdAt, timeOf(approvedAt), timeOf(closedAt),
		isDeleted, timeOf(deletedAt),
	), nil
}
