package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/ticketing-payments/internal/application"
	"github.com/DanielPopoola/ticketing-payments/internal/domain"
)

const AbandonedReason = "charge did not complete"

// Result summarises one reconciliation sweep.
type Result struct {
	Scanned int
	Failed  int
	Skipped int
}

// Reconciler fails PENDING payments that no unit of work is going to finish.
// It runs once per invocation; there is no background loop.
type Reconciler struct {
	store      application.PaymentStore
	transactor application.Transactor
	olderThan  time.Duration
	batchSize  int
	logger     *slog.Logger
	now        func() time.Time
}

func NewReconciler(
	store application.PaymentStore,
	transactor application.Transactor,
	olderThan time.Duration,
	batchSize int,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		store:      store,
		transactor: transactor,
		olderThan:  olderThan,
		batchSize:  batchSize,
		logger:     logger,
		now:        time.Now,
	}
}

// RunOnce executes a single reconciliation cycle.
func (r *Reconciler) RunOnce(ctx context.Context) (Result, error) {
	var result Result

	cutoff := r.now().UTC().Add(-r.olderThan)
	pending, err := r.store.FindStalePending(ctx, cutoff, r.batchSize)
	if err != nil {
		return result, fmt.Errorf("find stale pending payments: %w", err)
	}
	result.Scanned = len(pending)

	if len(pending) == 0 {
		r.logger.Info("no stale payments to reconcile", "cutoff", cutoff)
		return result, nil
	}

	r.logger.Info("reconciling stale payments", "count", len(pending), "cutoff", cutoff)

	for _, p := range pending {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		failed, err := r.abandon(ctx, p.ID)
		if err != nil {
			r.logger.Error("reconciliation failed for payment", "id", p.ID, "error", err)
			result.Skipped++
			continue
		}
		if !failed {
			result.Skipped++
			continue
		}
		result.Failed++
		r.logger.Info("marked stale payment as failed", "id", p.ID, "reference", p.Reference)
	}

	return result, nil
}

// abandon re-reads the row under lock so a charge that settled in the
// meantime is left alone.
func (r *Reconciler) abandon(ctx context.Context, id int64) (bool, error) {
	var failed bool
	err := r.transactor.WithinTransaction(ctx, func(ctx context.Context, store application.PaymentStore) error {
		payment, err := store.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !domain.CanApply(payment.Status, domain.EventChargeAbandoned) {
			return nil
		}

		next, err := domain.Transition(*payment, domain.ChargeAbandoned(AbandonedReason, r.now().UTC()))
		if err != nil {
			return err
		}
		if _, err := store.Save(ctx, &next); err != nil {
			return err
		}
		failed = true
		return nil
	})
	return failed, err
}
