package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/suhailma1ik/KinCashBackend/internal/domain/model"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/valueobject"
	pkgpostgres "github.com/suhailma1ik/KinCashBackend/pkg/postgres"
)

const paymentColumns = `
	id, loan_id, payer_id, amount, remarks, idempotency_key, paid_at
`

// PaymentRepo implements port.PaymentRepository against PostgreSQL.
type PaymentRepo struct {
	q pkgpostgres.Querier
}

// Create inserts the payment. A conflicting idempotency key makes the insert
// a no-op and Create reports false so the caller skips allocation.
func (r *PaymentRepo) Create(ctx context.Context, p model.Payment) (bool, error) {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (idempotency_key) DO NOTHING
	`
	tag, err := r.q.Exec(ctx, query,
		p.ID, p.LoanID, p.PayerID, p.Amount, p.Remarks, p.IdempotencyKey, p.PaidAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert payment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetByIdempotencyKey retrieves the payment previously recorded under key.
func (r *PaymentRepo) GetByIdempotencyKey(ctx context.Context, key string) (model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE idempotency_key = $1`
	var p model.Payment
	err := r.q.QueryRow(ctx, query, key).Scan(
		&p.ID, &p.LoanID, &p.PayerID, &p.Amount, &p.Remarks, &p.IdempotencyKey, &p.PaidAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Payment{}, fmt.Errorf("payment with key %s: %w", key, valueobject.ErrNotFound)
	}
	if err != nil {
		return model.Payment{}, fmt.Errorf("scan payment: %w", err)
	}
	return p, nil
}

// ListByLoan returns the loan's payments, oldest first.
func (r *PaymentRepo) ListByLoan(ctx context.Context, loanID string) ([]model.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE loan_id = $1
		ORDER BY paid_at
	`
	rows, err := r.q.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.LoanID, &p.PayerID, &p.Amount, &p.Remarks, &p.IdempotencyKey, &p.PaidAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
