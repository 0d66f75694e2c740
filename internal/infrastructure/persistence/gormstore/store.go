// Package gormstore implements the payment store on GORM, for PostgreSQL or
// SQLite.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DanielPopoola/ticketing-payments/internal/application"
	"github.com/DanielPopoola/ticketing-payments/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Ping checks the underlying connection pool.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, store application.PaymentStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &Store{db: tx})
	})
}

func (s *Store) FindByID(ctx context.Context, id int64) (*domain.Payment, error) {
	var row PaymentRow
	err := s.db.WithContext(ctx).First(&row, id).Error
	return toPayment(row, err)
}

// FindByIDForUpdate adds FOR UPDATE; the SQLite dialect drops the clause and
// relies on its database-wide write lock instead.
func (s *Store) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Payment, error) {
	var row PaymentRow
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&row, id).Error
	return toPayment(row, err)
}

func (s *Store) FindByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	var row PaymentRow
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").Order("id DESC").
		First(&row).Error
	return toPayment(row, err)
}

func (s *Store) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error) {
	var row PaymentRow
	err := s.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&row).Error
	return toPayment(row, err)
}

func (s *Store) FindStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*domain.Payment, error) {
	var rows []PaymentRow
	err := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", string(domain.StatusPending), olderThan).
		Order("created_at ASC").Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query stale pending payments: %w", err)
	}

	payments := make([]*domain.Payment, 0, len(rows))
	for _, row := range rows {
		p, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, nil
}

func (s *Store) Save(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	if payment.ID == 0 {
		return s.create(ctx, payment)
	}
	return s.update(ctx, payment)
}

func (s *Store) create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	row := fromDomain(payment)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		// references are random, so the only unique column a caller can
		// collide on is the idempotency key
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDuplicateIdempotencyKey
		}
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	saved := *payment
	saved.ID = row.ID
	return &saved, nil
}

func (s *Store) update(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	result := s.db.WithContext(ctx).
		Model(&PaymentRow{}).
		Where("id = ?", payment.ID).
		Updates(map[string]any{
			"status":         string(payment.Status),
			"transaction_id": payment.TransactionID,
			"failure_reason": payment.FailureReason,
			"updated_at":     payment.UpdatedAt,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrPaymentNotFound
	}

	saved := *payment
	return &saved, nil
}

func toPayment(row PaymentRow, err error) (*domain.Payment, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return row.toDomain()
}
