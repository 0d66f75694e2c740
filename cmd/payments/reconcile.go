package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/DanielPopoola/ticketing-payments/internal/worker"
)

func reconcileCmd() *cobra.Command {
	var (
		olderThan time.Duration
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Fail PENDING payments that never completed",
		Long: `Scan PENDING payments created before now minus --older-than and move
each one to FAILED with reason "charge did not complete".

Flags override reconcile.older_than and reconcile.batch_size.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd.Context(), olderThan, batchSize)
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "minimum age of a PENDING payment")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "maximum payments handled in one run")
	return cmd
}

func runReconcile(ctx context.Context, olderThan time.Duration, batchSize int) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if olderThan <= 0 {
		olderThan = cfg.Reconcile.OlderThan
	}
	if batchSize <= 0 {
		batchSize = cfg.Reconcile.BatchSize
	}

	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open payment store", "error", err)
		return err
	}
	defer b.close()

	reconciler := worker.NewReconciler(b.store, b.transactor, olderThan, batchSize, logger)
	result, err := reconciler.RunOnce(ctx)
	if err != nil {
		logger.Error("reconciliation failed", "error", err)
		return err
	}

	logger.Info("reconciliation finished",
		"scanned", result.Scanned,
		"failed", result.Failed,
		"skipped", result.Skipped,
	)
	return nil
}
