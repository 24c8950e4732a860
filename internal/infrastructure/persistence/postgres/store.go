package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/suhailma1ik/KinCashBackend/internal/domain/port"
	pkgpostgres "github.com/suhailma1ik/KinCashBackend/pkg/postgres"
)

// Store binds the repository ports to a pgx pool and implements
// port.UnitOfWork. Repositories handed to Execute's callback run against a
// single transaction; repositories from Repos run in auto-commit mode and
// are suitable for reads only.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a PostgreSQL-backed store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Execute runs fn inside a transaction. Every repository write made through
// the passed-in bundle commits or rolls back together.
func (s *Store) Execute(ctx context.Context, fn func(r port.Repositories) error) error {
	return pkgpostgres.WithTransaction(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(reposFor(tx))
	})
}

// Repos returns repositories bound directly to the pool, outside any
// transaction.
func (s *Store) Repos() port.Repositories {
	return reposFor(s.pool)
}

func reposFor(q pkgpostgres.Querier) port.Repositories {
	return port.Repositories{
		Loans:        &LoanRepo{q: q},
		Installments: &InstallmentRepo{q: q},
		Payments:     &PaymentRepo{q: q},
		Transactions: &TransactionRepo{q: q},
	}
}
