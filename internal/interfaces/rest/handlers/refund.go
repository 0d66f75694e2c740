package handlers

import (
	"net/http"

	"github.com/DanielPopoola/ticketing-payments/internal/application/services"
	"github.com/DanielPopoola/ticketing-payments/internal/interfaces/rest"
)

type RefundRequest struct {
	PaymentID int64  `json:"paymentId" validate:"required,gt=0"`
	Reason    string `json:"reason" validate:"omitempty,max=500"`
}

func (h *Handlers) Refund(w http.ResponseWriter, r *http.Request) {
	var req RefundRequest
	if err := h.decode(r, &req); err != nil {
		rest.WriteError(w, err)
		return
	}

	payment, err := h.payments.Refund(r.Context(), services.RefundCommand{
		PaymentID: req.PaymentID,
		Reason:    req.Reason,
	})
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	rest.WriteData(w, rest.ToPaymentRecord(payment))
}
