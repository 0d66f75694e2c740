package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DanielPopoola/ticketing-payments/internal/application"
	"github.com/DanielPopoola/ticketing-payments/internal/config"
	"github.com/DanielPopoola/ticketing-payments/internal/infrastructure/persistence/gormstore"
	"github.com/DanielPopoola/ticketing-payments/internal/infrastructure/persistence/memory"
	"github.com/DanielPopoola/ticketing-payments/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/ticketing-payments/internal/interfaces/rest/handlers"
	"gorm.io/gorm"
)

// backend is the payment store selected by store.driver.
type backend struct {
	store      application.PaymentStore
	transactor application.Transactor
	pinger     handlers.Pinger
	close      func()
}

func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	logger.Info("opening payment store", "driver", cfg.Store.Driver)

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, &cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		return &backend{
			store:      postgres.NewPaymentRepository(db),
			transactor: postgres.NewTransactionCoordinator(db),
			pinger:     db,
			close:      db.Close,
		}, nil

	case config.DriverGormPostgres:
		db, err := gormstore.OpenPostgres(cfg.Database.DSN())
		if err != nil {
			return nil, err
		}
		return gormBackend(db, logger), nil

	case config.DriverGormSQLite:
		db, err := gormstore.OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return gormBackend(db, logger), nil

	case config.DriverMemory:
		logger.Warn("using the in-memory store; payments are lost on exit")
		store := memory.NewStore()
		return &backend{
			store:      store,
			transactor: store,
			pinger:     store,
			close:      func() {},
		}, nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func gormBackend(db *gorm.DB, logger *slog.Logger) *backend {
	store := gormstore.NewStore(db)
	return &backend{
		store:      store,
		transactor: store,
		pinger:     store,
		close: func() {
			sqlDB, err := db.DB()
			if err != nil {
				return
			}
			if err := sqlDB.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		},
	}
}

// loadConfig loads the configuration and installs the configured logger as
// the slog default.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)
	return cfg, logger, nil
}
