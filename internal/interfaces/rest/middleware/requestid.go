package middleware

import (
	"context"
	"net/http"

	chimw "github.com/go-chi/chi/middleware"
	"github.com/google/uuid"

	"github.com/DanielPopoola/ticketing-payments/pkg/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestID reuses the caller's X-Request-ID or generates one, echoes it on
// the response and attaches it to the request logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := context.WithValue(r.Context(), chimw.RequestIDKey, id)
		ctx = logger.With(ctx, "request_id", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
