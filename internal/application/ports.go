package application

import (
	"context"
	"time"

	"github.com/DanielPopoola/ticketing-payments/internal/domain"
	"github.com/shopspring/decimal"
)

// PaymentStore is the port for persistence.
//
// Lookups return domain.ErrPaymentNotFound when nothing matches. Save inserts
// when payment.ID is zero and updates otherwise; an insert whose idempotency
// key is already taken fails with domain.ErrDuplicateIdempotencyKey.
type PaymentStore interface {
	FindByID(ctx context.Context, id int64) (*domain.Payment, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.Payment, error)
	FindByOrderID(ctx context.Context, orderID string) (*domain.Payment, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Payment, error)
	FindStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*domain.Payment, error)
	Save(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
}

// Transactor runs fn against a store bound to a single transaction.
// A nil return commits, anything else rolls back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, store PaymentStore) error) error
}

// Decision is the two-valued gateway outcome.
type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionDeclined Decision = "DECLINED"
)

type Authorization struct {
	Decision      Decision
	TransactionID string
	DeclineReason string
}

func (a Authorization) Approved() bool {
	return a.Decision == DecisionApproved
}

// Gateway is the port for whatever authorizes a charge amount.
type Gateway interface {
	Authorize(ctx context.Context, amount decimal.Decimal) (Authorization, error)
}
