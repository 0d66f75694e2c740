package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator"

	"github.com/DanielPopoola/ticketing-payments/internal/application"
	"github.com/DanielPopoola/ticketing-payments/internal/application/services"
	"github.com/DanielPopoola/ticketing-payments/internal/domain"
)

// PaymentService is the part of services.PaymentService the handlers call.
type PaymentService interface {
	Charge(ctx context.Context, cmd services.ChargeCommand) (*domain.Payment, error)
	Refund(ctx context.Context, cmd services.RefundCommand) (*domain.Payment, error)
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error)
}

type Handlers struct {
	payments PaymentService
	validate *validator.Validate
}

func NewHandlers(payments PaymentService) *Handlers {
	return &Handlers{
		payments: payments,
		validate: validator.New(),
	}
}

// decode reads a JSON body into dst and runs its validate tags.
func (h *Handlers) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return application.NewBadRequestError(fmt.Errorf("invalid request body: %w", err))
	}
	if err := h.validate.Struct(dst); err != nil {
		return application.NewBadRequestError(err)
	}
	return nil
}
