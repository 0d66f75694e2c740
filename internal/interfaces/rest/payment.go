package rest

import (
	"time"

	"github.com/DanielPopoola/ticketing-payments/internal/domain"
)

// PaymentRecord is the JSON view of a payment.
type PaymentRecord struct {
	ID            int64     `json:"id"`
	Reference     string    `json:"reference"`
	OrderID       string    `json:"orderId"`
	Amount        string    `json:"amount"`
	Status        string    `json:"status"`
	TransactionID *string   `json:"transactionId"`
	FailureReason *string   `json:"failureReason"`
	CreatedAt     time.Time `json:"createdAt"`
}

func ToPaymentRecord(p *domain.Payment) PaymentRecord {
	return PaymentRecord{
		ID:            p.ID,
		Reference:     p.Reference,
		OrderID:       p.OrderID,
		Amount:        p.Amount.StringFixed(domain.AmountScale),
		Status:        string(p.Status),
		TransactionID: p.TransactionID,
		FailureReason: p.FailureReason,
		CreatedAt:     p.CreatedAt,
	}
}
