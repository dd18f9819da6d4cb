package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"rentledger/internal/amqp"
	"rentledger/internal/backend"
	"rentledger/internal/config"
	"rentledger/internal/export"
	"rentledger/internal/export/sheets"
	applog "rentledger/internal/log"
	"rentledger/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     applog.LevelFromEnv(),
		Component: "export-worker",
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

	var writer export.StatementWriter
	if cfg.SheetsSpreadsheetID != "" {
		writer, err = sheets.New(ctx, sheets.Config{
			SpreadsheetID:   cfg.SheetsSpreadsheetID,
			SheetName:       cfg.SheetsStatementSheet,
			CredentialsFile: cfg.SheetsCredentialsFile,
			CredentialsJSON: cfg.SheetsCredentialsJSON,
		})
		if err != nil {
			logger.Error("Failed to initialize Sheets statement writer", "error", err)
			os.Exit(1)
		}
		logger.Info("Statement writer ready",
			"spreadsheet_id", cfg.SheetsSpreadsheetID, "sheet", cfg.SheetsStatementSheet)
	} else {
		// Without a spreadsheet the worker still drains the queue, which
		// keeps local and demo setups honest about export state.
		writer = export.NewMemoryWriter()
		logger.Warn("SHEETS_SPREADSHEET_ID not set, using in-memory statement writer")
	}

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, relying on periodic scan only", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("Consuming ledger events", "queue", cfg.AMQPQueue)
		}
	}

	w := worker.NewExportWorker(store, writer, cfg.ExportBatchSize)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	logger.Info("Starting export worker",
		"interval", cfg.ExportInterval, "batch_size", cfg.ExportBatchSize)
	if err := w.Run(ctx, amqpClient, cfg.ExportInterval); err != nil {
		logger.Error("Export worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Export worker stopped gracefully")
}
