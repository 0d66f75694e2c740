package postgres

import (
	"fmt"

	"github.com/DanielPopoola/ticketing-payments/internal/domain"
	"github.com/shopspring/decimal"
)

// toDomainModel: maps db model to domain entity
func toDomainModel(m PaymentModel) (*domain.Payment, error) {
	amount, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q of payment %d: %w", m.Amount, m.ID, err)
	}

	return domain.Reconstitute(
		m.ID,
		m.Reference,
		m.OrderID,
		m.IdempotencyKey,
		m.UserID,
		amount,
		domain.PaymentStatus(m.Status),
		m.TransactionID,
		m.FailureReason,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

// toDBModel: maps domain entity to db model
func toDBModel(p *domain.Payment) PaymentModel {
	return PaymentModel{
		ID:             p.ID,
		Reference:      p.Reference,
		OrderID:        p.OrderID,
		IdempotencyKey: p.IdempotencyKey,
		UserID:         p.UserID,
		Amount:         p.Amount.String(),
		Status:         string(p.Status),
		TransactionID:  p.TransactionID,
		FailureReason:  p.FailureReason,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
