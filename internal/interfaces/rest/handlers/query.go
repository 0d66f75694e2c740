package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/oapi-codegen/runtime"

	"github.com/DanielPopoola/ticketing-payments/internal/application"
	"github.com/DanielPopoola/ticketing-payments/internal/interfaces/rest"
)

// GetPaymentByID handles GET /api/v1/payments/{id}.
func (h *Handlers) GetPaymentByID(w http.ResponseWriter, r *http.Request) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		rest.WriteError(w, application.NewBadRequestError(fmt.Errorf("invalid format for parameter id: %w", err)))
		return
	}

	payment, err := h.payments.GetByID(r.Context(), id)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	rest.WriteData(w, rest.ToPaymentRecord(payment))
}

// GetPaymentByOrder handles GET /api/v1/payments/order/{orderId}.
func (h *Handlers) GetPaymentByOrder(w http.ResponseWriter, r *http.Request) {
	var orderID string
	err := runtime.BindStyledParameterWithOptions("simple", "orderId", chi.URLParam(r, "orderId"), &orderID, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		rest.WriteError(w, application.NewBadRequestError(fmt.Errorf("invalid format for parameter orderId: %w", err)))
		return
	}

	payment, err := h.payments.GetByOrderID(r.Context(), orderID)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	rest.WriteData(w, rest.ToPaymentRecord(payment))
}
