package postgres

import (
	"context"
	"fmt"

	"github.com/suhailma1ik/KinCashBackend/internal/domain/model"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/valueobject"
	pkgpostgres "github.com/suhailma1ik/KinCashBackend/pkg/postgres"
)

// TransactionRepo implements port.TransactionRepository against PostgreSQL.
// The table is append-only.
type TransactionRepo struct {
	q pkgpostgres.Querier
}

// Create appends a ledger entry.
func (r *TransactionRepo) Create(ctx context.Context, t model.Transaction) error {
	query := `
		INSERT INTO transactions (id, from_user_id, to_user_id, amount, type, related_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.FromUserID, t.ToUserID, t.Amount, t.Type.String(), t.RelatedID, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// ListByLoan returns the ledger entries related to one loan, oldest first.
func (r *TransactionRepo) ListByLoan(ctx context.Context, loanID string) ([]model.Transaction, error) {
	query := `
		SELECT id, from_user_id, to_user_id, amount, type, related_id, created_at
		FROM transactions
		WHERE related_id = $1
		ORDER BY created_at
	`
	rows, err := r.q.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		var (
			t       model.Transaction
			typeStr string
		)
		if err := rows.Scan(&t.ID, &t.FromUserID, &t.ToUserID, &t.Amount, &typeStr, &t.RelatedID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type, err = valueobject.NewTransactionType(typeStr)
		if err != nil {
			return nil, fmt.Errorf("parse transaction type: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}
