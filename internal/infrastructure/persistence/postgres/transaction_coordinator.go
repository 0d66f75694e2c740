package postgres

import (
	"context"
	"fmt"

	"github.com/DanielPopoola/ticketing-payments/internal/application"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionCoordinator implements application.Transactor on a pgx pool.
type TransactionCoordinator struct {
	pool *pgxpool.Pool
}

func NewTransactionCoordinator(db *DB) *TransactionCoordinator {
	return &TransactionCoordinator{
		pool: db.Pool,
	}
}

// WithinTransaction executes fn within a database transaction.
// The store it receives runs every statement on that transaction.
func (tc *TransactionCoordinator) WithinTransaction(
	ctx context.Context,
	fn func(ctx context.Context, store application.PaymentStore) error,
) error {
	tx, err := tc.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &PaymentRepository{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
