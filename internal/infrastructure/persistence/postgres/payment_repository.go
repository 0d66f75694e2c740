package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DanielPopoola/ticketing-payments/internal/domain"
	"github.com/jackc/pgx/v5"
)

const paymentColumns = `
	id, reference, order_id, idempotency_key, user_id, amount::text, status,
	transaction_id, failure_reason, created_at, updated_at`

// PaymentRepository implements application.PaymentStore on PostgreSQL.
// Built from a pool it runs every statement on its own; built by the
// TransactionCoordinator it runs inside one transaction.
type PaymentRepository struct {
	q Executor
}

func NewPaymentRepository(db *DB) *PaymentRepository {
	return &PaymentRepository{q: db.Pool}
}

// FindByID retrieves a payment
func (r *PaymentRepository) FindByID(ctx context.Context, id int64) (*domain.Payment, error) {
	query := `SELECT` + paymentColumns + ` FROM payments WHERE id = $1`
	return scanPayment(r.q.QueryRow(ctx, query, id))
}

// FindByIDForUpdate retrieves a payment with row-level lock
func (r *PaymentRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Payment, error) {
	query := `SELECT` + paymentColumns + ` FROM payments WHERE id = $1 FOR UPDATE`
	return scanPayment(r.q.QueryRow(ctx, query, id))
}

// FindByOrderID retrieves the most recent payment for an order
func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	query := `SELECT` + paymentColumns + ` FROM payments
		WHERE order_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`
	return scanPayment(r.q.QueryRow(ctx, query, orderID))
}

func (r *PaymentRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error) {
	query := `SELECT` + paymentColumns + ` FROM payments WHERE idempotency_key = $1`
	return scanPayment(r.q.QueryRow(ctx, query, key))
}

// FindStalePending finds PENDING payments created before olderThan, oldest first
func (r *PaymentRepository) FindStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*domain.Payment, error) {
	query := `SELECT` + paymentColumns + ` FROM payments
		WHERE status = 'PENDING'
		  AND created_at < $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2`

	rows, err := r.q.Query(ctx, query, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("query stale pending payments: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Payment, error) {
		return scanPayment(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan stale pending payments: %w", err)
	}
	return results, nil
}

// Save inserts a new payment (ID == 0) or updates the mutable columns of an
// existing one.
func (r *PaymentRepository) Save(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	if payment.ID == 0 {
		return r.create(ctx, payment)
	}
	return r.update(ctx, payment)
}

func (r *PaymentRepository) create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	query := `
		INSERT INTO payments (
			reference, order_id, idempotency_key, user_id, amount, status,
			transaction_id, failure_reason, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5::text::numeric, $6, $7, $8, $9, $10)
		RETURNING id
	`

	p := toDBModel(payment)
	err := r.q.QueryRow(ctx, query,
		p.Reference,
		p.OrderID,
		p.IdempotencyKey,
		p.UserID,
		p.Amount,
		p.Status,
		p.TransactionID,
		p.FailureReason,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		if isDuplicateIdempotencyKey(err) {
			return nil, domain.ErrDuplicateIdempotencyKey
		}
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	saved := *payment
	saved.ID = p.ID
	return &saved, nil
}

func (r *PaymentRepository) update(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	query := `
		UPDATE payments
		SET status = $1,
			transaction_id = $2,
			failure_reason = $3,
			updated_at = $4
		WHERE id = $5
	`

	p := toDBModel(payment)
	tag, err := r.q.Exec(ctx, query,
		p.Status,
		p.TransactionID,
		p.FailureReason,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrPaymentNotFound
	}

	saved := *payment
	return &saved, nil
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var m PaymentModel
	err := row.Scan(
		&m.ID, &m.Reference, &m.OrderID, &m.IdempotencyKey, &m.UserID, &m.Amount, &m.Status,
		&m.TransactionID, &m.FailureReason, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}
	return toDomainModel(m)
}
