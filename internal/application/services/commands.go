package services

import "github.com/shopspring/decimal"

type ChargeCommand struct {
	OrderID        string
	Amount         decimal.Decimal
	IdempotencyKey string
	UserID         int64
}

type RefundCommand struct {
	PaymentID int64
	Reason    string
}
