package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/DanielPopoola/ticketing-payments/internal/application"
	"github.com/DanielPopoola/ticketing-payments/internal/domain"
	"github.com/DanielPopoola/ticketing-payments/pkg/logger"
	"github.com/google/uuid"
)

type PaymentService struct {
	store      application.PaymentStore
	transactor application.Transactor
	gateway    application.Gateway
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*PaymentService)

// WithClock replaces time.Now as the source of creation and update times.
func WithClock(now func() time.Time) Option {
	return func(s *PaymentService) {
		s.now = now
	}
}

func NewPaymentService(
	store application.PaymentStore,
	transactor application.Transactor,
	gateway application.Gateway,
	logger *slog.Logger,
	opts ...Option,
) *PaymentService {
	s := &PaymentService{
		store:      store,
		transactor: transactor,
		gateway:    gateway,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Charge creates the payment for an idempotency key at most once and drives
// it to SUCCESS or FAILED through the gateway. Replays return the stored
// record unchanged, whatever its status.
func (s *PaymentService) Charge(ctx context.Context, cmd ChargeCommand) (*domain.Payment, error) {
	if err := validateCharge(cmd); err != nil {
		return nil, application.NewBadRequestError(err)
	}

	log := logger.From(ctx, s.logger).With(
		"idempotency_key", cmd.IdempotencyKey,
		"order_id", cmd.OrderID,
	)

	existing, err := s.store.FindByIdempotencyKey(ctx, cmd.IdempotencyKey)
	if err == nil {
		log.Info("idempotent replay", "payment_id", existing.ID, "status", existing.Status)
		return existing, nil
	}
	if !errors.Is(err, domain.ErrPaymentNotFound) {
		return nil, application.NewInternalError(err)
	}

	var payment *domain.Payment
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context, store application.PaymentStore) error {
		var txErr error
		payment, txErr = s.charge(ctx, store, cmd)
		return txErr
	})

	if errors.Is(err, domain.ErrDuplicateIdempotencyKey) {
		// a concurrent request with the same key committed first
		winner, findErr := s.store.FindByIdempotencyKey(ctx, cmd.IdempotencyKey)
		if findErr != nil {
			log.Error("idempotency conflict could not be resolved", "error", findErr)
			return nil, application.NewConflictError(cmd.IdempotencyKey, err)
		}
		log.Info("idempotency conflict resolved", "payment_id", winner.ID, "status", winner.Status)
		return winner, nil
	}
	if err != nil {
		log.Error("charge failed", "error", err)
		return nil, toServiceError(err)
	}

	log.Info("charge completed",
		"payment_id", payment.ID,
		"reference", payment.Reference,
		"status", payment.Status,
	)
	return payment, nil
}

func (s *PaymentService) charge(ctx context.Context, store application.PaymentStore, cmd ChargeCommand) (*domain.Payment, error) {
	payment, err := domain.NewPayment(
		newReference(),
		cmd.OrderID,
		cmd.IdempotencyKey,
		cmd.UserID,
		cmd.Amount,
		s.now().UTC(),
	)
	if err != nil {
		return nil, err
	}

	payment, err = store.Save(ctx, payment)
	if err != nil {
		return nil, err
	}

	auth, err := s.gateway.Authorize(ctx, payment.Amount)
	if err != nil {
		return nil, err
	}

	event := domain.GatewayDeclined(auth.DeclineReason, s.now().UTC())
	if auth.Approved() {
		event = domain.GatewayApproved(auth.TransactionID, s.now().UTC())
	}

	next, err := domain.Transition(*payment, event)
	if err != nil {
		return nil, err
	}

	return store.Save(ctx, &next)
}

// Refund moves a SUCCESS payment to REFUNDED under a row lock.
func (s *PaymentService) Refund(ctx context.Context, cmd RefundCommand) (*domain.Payment, error) {
	log := logger.From(ctx, s.logger).With("payment_id", cmd.PaymentID)

	var refunded *domain.Payment
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context, store application.PaymentStore) error {
		payment, err := store.FindByIDForUpdate(ctx, cmd.PaymentID)
		if err != nil {
			return err
		}

		next, err := domain.Transition(*payment, domain.RefundRequested(cmd.Reason, s.now().UTC()))
		if err != nil {
			return err
		}

		refunded, err = store.Save(ctx, &next)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			return nil, application.NewNotFoundError("Payment not found", err)
		}
		log.Warn("refund rejected", "error", err)
		return nil, toServiceError(err)
	}

	log.Info("payment refunded", "reference", refunded.Reference)
	return refunded, nil
}

func (s *PaymentService) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	payment, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			return nil, application.NewNotFoundError("Payment not found", err)
		}
		return nil, application.NewInternalError(err)
	}
	return payment, nil
}

// GetByOrderID returns the most recent payment for the order.
func (s *PaymentService) GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	payment, err := s.store.FindByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			return nil, application.NewNotFoundError("Payment not found for order", err)
		}
		return nil, application.NewInternalError(err)
	}
	return payment, nil
}

func validateCharge(cmd ChargeCommand) error {
	if strings.TrimSpace(cmd.OrderID) == "" {
		return domain.NewMissingRequiredFieldError("order ID")
	}
	if strings.TrimSpace(cmd.IdempotencyKey) == "" {
		return domain.NewMissingRequiredFieldError("idempotency key")
	}
	return domain.ValidateAmount(cmd.Amount)
}

func toServiceError(err error) error {
	if _, ok := application.IsServiceError(err); ok {
		return err
	}
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return application.NewBadRequestError(err)
	}
	return application.NewInternalError(err)
}

func newReference() string {
	return "PAY-" + strings.ToUpper(uuid.NewString()[:8])
}
