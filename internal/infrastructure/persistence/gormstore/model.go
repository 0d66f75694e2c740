package gormstore

import (
	"time"

	"github.com/DanielPopoola/ticketing-payments/internal/domain"
	"github.com/shopspring/decimal"
)

// PaymentRow mirrors the payments table created by the goose migrations so
// both stores can share one PostgreSQL schema.
type PaymentRow struct {
	ID             int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Reference      string          `gorm:"column:reference;size:32;not null;uniqueIndex:payments_reference_key"`
	OrderID        string          `gorm:"column:order_id;size:255;not null;index:idx_payments_order_id"`
	IdempotencyKey string          `gorm:"column:idempotency_key;size:255;not null;uniqueIndex:payments_idempotency_key_key"`
	UserID         int64           `gorm:"column:user_id;not null"`
	Amount         decimal.Decimal `gorm:"column:amount;type:numeric(19,2);not null"`
	Status         string          `gorm:"column:status;size:16;not null"`
	TransactionID  *string         `gorm:"column:transaction_id;size:64"`
	FailureReason  *string         `gorm:"column:failure_reason"`
	CreatedAt      time.Time       `gorm:"column:created_at;not null;autoCreateTime:false"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;not null;autoUpdateTime:false"`
}

func (PaymentRow) TableName() string {
	return "payments"
}

func fromDomain(p *domain.Payment) PaymentRow {
	return PaymentRow{
		ID:             p.ID,
		Reference:      p.Reference,
		OrderID:        p.OrderID,
		IdempotencyKey: p.IdempotencyKey,
		UserID:         p.UserID,
		Amount:         p.Amount,
		Status:         string(p.Status),
		TransactionID:  p.TransactionID,
		FailureReason:  p.FailureReason,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (r PaymentRow) toDomain() (*domain.Payment, error) {
	return domain.Reconstitute(
		r.ID,
		r.Reference,
		r.OrderID,
		r.IdempotencyKey,
		r.UserID,
		r.Amount,
		domain.PaymentStatus(r.Status),
		r.TransactionID,
		r.FailureReason,
		r.CreatedAt,
		r.UpdatedAt,
	)
}
