package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/DanielPopoola/ticketing-payments/internal/interfaces/rest"
)

// Pinger is implemented by every payment store backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store Pinger
}

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health reports 503 when the store does not answer a ping within two
// seconds.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Checks:    map[string]string{"store": "ok"},
	}
	status := http.StatusOK

	if err := h.store.Ping(ctx); err != nil {
		resp.Status = "unhealthy"
		resp.Checks["store"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	rest.WriteJSON(w, status, resp)
}

func (h *HealthHandler) Ping(w http.ResponseWriter, _ *http.Request) {
	rest.WriteJSON(w, http.StatusOK, map[string]string{"message": "pong"})
}
