package main

import (
	"context"
	"errors"
	"os"
	"time"

	"projecthub/internal/cli"
	"projecthub/internal/log"
	"projecthub/internal/services"
	"projecthub/internal/sheets"
	gsheet "projecthub/internal/sheets/google"
	memsheet "projecthub/internal/sheets/memory"
	"projecthub/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentWorker)

	logger.Info("Starting projecthub-relay")

	journal := cli.OpenJournal(logger, cfg.JournalDBPath)
	defer journal.Close()

	var ledger sheets.LedgerWriter
	if cfg.LedgerEnabled() {
		l, err := gsheet.NewLedger(context.Background(), gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.LedgerSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		}, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets ledger", log.FieldError, err)
			os.Exit(1)
		}
		ledger = l
		logger.Info("Google Sheets ledger initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.LedgerSheetName)
	} else {
		ledger = memsheet.New()
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, using in-memory ledger")
	}

	relayWorker := worker.NewRelayWorker(journal, ledger, logger)

	var publisher services.Publisher
	amqpClient := cli.ConnectAMQP(logger, cfg)
	if amqpClient != nil {
		publisher = amqpClient
	}

	processor := services.NewRelayProcessor(journal, publisher, relayWorker, services.RelayProcessorConfig{
		Interval:    cfg.RelayInterval,
		BatchSize:   cfg.RelayBatchSize,
		IdleAfter:   cfg.RelayInterval,
		MaxAttempts: services.DefaultRelayProcessorConfig().MaxAttempts,
	}, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := processor.Stop(ctx); err != nil {
			logger.Warn("Relay processor stop error", log.FieldError, err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err)
			}
		}
	})

	// Catch up on entries left pending while the relay was down.
	if n, err := processor.ProcessBatch(ctx); err != nil {
		logger.Error("Startup relay pass failed", log.FieldError, err)
	} else if n > 0 {
		logger.Info("Startup relay pass complete", log.FieldCount, n)
	}

	if err := processor.Start(ctx); err != nil {
		logger.Error("Failed to start relay processor", log.FieldError, err)
		os.Exit(1)
	}

	if amqpClient != nil {
		go func() {
			err := amqpClient.ConsumeRecordCreated(ctx, relayWorker.HandleRecordCreated)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", log.FieldError, err)
			}
		}()
	} else {
		logger.Info("Skipping AMQP message consumption - relying on periodic relay passes")
	}

	cli.WaitForShutdown(ctx, done)
}
