package handlers

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/DanielPopoola/ticketing-payments/internal/application"
	"github.com/DanielPopoola/ticketing-payments/internal/application/services"
	"github.com/DanielPopoola/ticketing-payments/internal/interfaces/rest"
	"github.com/DanielPopoola/ticketing-payments/internal/interfaces/rest/middleware"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type ChargeRequest struct {
	OrderID string          `json:"orderId" validate:"required,max=255"`
	Amount  decimal.Decimal `json:"amount"`
}

// Charge handles POST /api/v1/payments/charge. A replayed key answers 200
// with the stored payment, whatever its status.
func (h *Handlers) Charge(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		rest.WriteError(w, application.NewUnauthorizedError(errors.New("no authenticated user")))
		return
	}

	var req ChargeRequest
	if err := h.decode(r, &req); err != nil {
		rest.WriteError(w, err)
		return
	}

	payment, err := h.payments.Charge(r.Context(), services.ChargeCommand{
		OrderID:        req.OrderID,
		Amount:         req.Amount,
		IdempotencyKey: r.Header.Get(IdempotencyKeyHeader),
		UserID:         userID,
	})
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	rest.WriteData(w, rest.ToPaymentRecord(payment))
}
