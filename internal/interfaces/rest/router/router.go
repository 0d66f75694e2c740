// Package router assembles the HTTP handler: middleware chain, API routes,
// health checks and API docs.
package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"
	chimw "github.com/go-chi/chi/middleware"

	"github.com/DanielPopoola/ticketing-payments/internal/api"
	"github.com/DanielPopoola/ticketing-payments/internal/interfaces/rest/handlers"
	"github.com/DanielPopoola/ticketing-payments/internal/interfaces/rest/middleware"
	"github.com/DanielPopoola/ticketing-payments/pkg/logger"
)

type Config struct {
	Payments       handlers.PaymentService
	Store          handlers.Pinger
	Spec           *openapi3.T
	Logger         *slog.Logger
	JWTSecret      []byte
	UserClaim      string
	RequestTimeout time.Duration
}

func New(cfg Config) (http.Handler, error) {
	validate, err := middleware.OpenAPIValidator(cfg.Spec)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(withLogger(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	health := handlers.NewHealthHandler(cfg.Store)
	r.Get("/health", health.Health)
	r.Get("/ping", health.Ping)

	if err := api.RegisterDocsRoutes(r, cfg.Spec); err != nil {
		return nil, fmt.Errorf("register docs routes: %w", err)
	}

	h := handlers.NewHandlers(cfg.Payments)
	r.Route("/api/v1/payments", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret, cfg.UserClaim))
		r.Use(validate)

		r.Post("/charge", h.Charge)
		r.Post("/refund", h.Refund)
		r.Get("/order/{orderId}", h.GetPaymentByOrder)
		r.Get("/{id}", h.GetPaymentByID)
	})

	return r, nil
}

// withLogger seeds every request context with the base logger so later
// middleware can add fields to it.
func withLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(logger.Into(r.Context(), base)))
		})
	}
}
