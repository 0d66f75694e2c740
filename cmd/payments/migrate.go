package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/DanielPopoola/ticketing-payments/internal/config"
	"github.com/DanielPopoola/ticketing-payments/internal/infrastructure/persistence/migrations"
)

func migrateCmd() *cobra.Command {
	var rollback bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the PostgreSQL schema migrations",
		Long: `Apply every pending migration to the database in the database.* settings.

With --rollback the latest migration is reverted instead. The gorm-sqlite
and memory drivers create their schema on start and need no migration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), rollback)
		},
	}

	cmd.Flags().BoolVar(&rollback, "rollback", false, "revert the latest migration")
	return cmd
}

func runMigrate(ctx context.Context, rollback bool) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	switch cfg.Store.Driver {
	case config.DriverPostgres, config.DriverGormPostgres:
	default:
		logger.Info("store driver needs no migrations", "driver", cfg.Store.Driver)
		return nil
	}

	dsn := cfg.Database.DSN()
	if rollback {
		logger.Info("rolling back latest migration", "database", cfg.Database.Name)
		if err := migrations.Down(ctx, dsn); err != nil {
			logger.Error("rollback failed", "error", err)
			return err
		}
		logger.Info("rollback complete")
		return nil
	}

	logger.Info("applying migrations", "database", cfg.Database.Name)
	if err := migrations.Up(ctx, dsn); err != nil {
		logger.Error("migration failed", "error", err)
		return err
	}
	logger.Info("migrations complete")
	return nil
}
