package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"rentledger/internal/backend"
	"rentledger/internal/config"
	applog "rentledger/internal/log"
	"rentledger/internal/services"
	"rentledger/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     applog.LevelFromEnv(),
		Component: "billing-worker",
	})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := backend.NewFactory(logger.Logger).Open(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer store.Close()

	ledger := services.NewLedgerService(store, nil)
	processor := services.NewBillingProcessor(store, ledger)
	w := worker.NewBillingWorker(processor, cfg.BillingInterval)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	logger.Info("Starting billing worker",
		"interval", cfg.BillingInterval, "backend", cfg.DataBackend)
	if err := w.Run(ctx); err != nil {
		logger.Error("Billing worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Billing worker stopped gracefully")
}
