package postgres

import "time"

// PaymentModel is the row shape of the payments table. Amount travels as
// text to keep NUMERIC exact.
type PaymentModel struct {
	ID             int64
	Reference      string
	OrderID        string
	IdempotencyKey string
	UserID         int64
	Amount         string
	Status         string
	TransactionID  *string
	FailureReason  *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
