// Package domain encodes the payment entity and its lifecycle
package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the current state of a payment in its lifecycle
type PaymentStatus string

const (
	StatusPending  PaymentStatus = "PENDING"
	StatusSuccess  PaymentStatus = "SUCCESS"
	StatusFailed   PaymentStatus = "FAILED"
	StatusRefunded PaymentStatus = "REFUNDED"
)

// Valid reports whether s is one of the four known states.
func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

// Payment is a value: transitions return a new copy instead of mutating.
type Payment struct {
	ID             int64
	Reference      string
	OrderID        string
	IdempotencyKey string
	UserID         int64
	Amount         decimal.Decimal
	Status         PaymentStatus

	TransactionID *string
	FailureReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewPayment(
	reference string,
	orderID string,
	idempotencyKey string,
	userID int64,
	amount decimal.Decimal,
	now time.Time,
) (*Payment, error) {
	if reference == "" {
		return nil, NewMissingRequiredFieldError("reference")
	}
	if orderID == "" {
		return nil, NewMissingRequiredFieldError("order ID")
	}
	if idempotencyKey == "" {
		return nil, NewMissingRequiredFieldError("idempotency key")
	}
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}

	return &Payment{
		Reference:      reference,
		OrderID:        orderID,
		IdempotencyKey: idempotencyKey,
		UserID:         userID,
		Amount:         amount,
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// AmountScale is the number of decimal places an amount may carry.
const AmountScale = 2

// ValidateAmount accepts positive amounts that fit AmountScale exactly.
// Trailing zeros beyond the scale are allowed.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return NewInvalidAmountError(amount)
	}
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return NewAmountPrecisionError(amount)
	}
	return nil
}

// IsTerminal reports whether no further transition can ever apply.
func (p Payment) IsTerminal() bool {
	switch p.Status {
	case StatusFailed, StatusRefunded:
		return true
	default:
		return false
	}
}

// Reconstitute - Special constructor for loading from storage
func Reconstitute(
	id int64, reference, orderID, idempotencyKey string, userID int64,
	amount decimal.Decimal, status PaymentStatus,
	transactionID, failureReason *string,
	createdAt, updatedAt time.Time,
) (*Payment, error) {
	if !status.Valid() {
		return nil, errors.New("unknown payment status " + string(status))
	}
	return &Payment{
		ID:             id,
		Reference:      reference,
		OrderID:        orderID,
		IdempotencyKey: idempotencyKey,
		UserID:         userID,
		Amount:         amount,
		Status:         status,
		TransactionID:  transactionID,
		FailureReason:  failureReason,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}
