package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/DanielPopoola/ticketing-payments/internal/api"
	"github.com/DanielPopoola/ticketing-payments/internal/application/services"
	"github.com/DanielPopoola/ticketing-payments/internal/infrastructure/gateway"
	"github.com/DanielPopoola/ticketing-payments/internal/interfaces/rest/router"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	logger.Info("starting payments service",
		"env", cfg.Primary.Env,
		"port", cfg.Server.Port,
		"store", cfg.Store.Driver,
		"gateway", cfg.Gateway.Mode,
		"log_level", cfg.Logger.Level,
	)

	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open payment store", "error", err)
		return err
	}
	defer b.close()

	gw, err := gateway.New(cfg.Gateway)
	if err != nil {
		return err
	}

	spec, err := api.LoadSpec(ctx)
	if err != nil {
		return err
	}

	paymentService := services.NewPaymentService(b.store, b.transactor, gw, logger)

	handler, err := router.New(router.Config{
		Payments:       paymentService,
		Store:          b.pinger,
		Spec:           spec,
		Logger:         logger,
		JWTSecret:      []byte(cfg.Auth.JWTSecret),
		UserClaim:      cfg.Auth.UserClaim,
		RequestTimeout: cfg.Server.RequestTimeout,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("server error", "error", err)
			return err
		}
	case <-quit:
	}

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return err
	}

	logger.Info("server exited")
	return nil
}
