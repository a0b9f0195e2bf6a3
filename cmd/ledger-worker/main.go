package main

import (
	"context"
	"errors"
	"os"
	"time"

	"ledgerbot/internal/amqp"
	"ledgerbot/internal/backend"
	"ledgerbot/internal/cli"
	"ledgerbot/internal/config"
	"ledgerbot/internal/log"
	gsheet "ledgerbot/internal/sheets/google"
	"ledgerbot/internal/worker"

	"golang.org/x/sync/errgroup"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig((*config.Config).ValidateWorker)
	logger := cli.SetupLogger(cfg).WithComponent(log.ComponentWorker)

	logger.Info("Starting ledger-worker",
		"db_path", cfg.SQLiteDBPath,
		"batch_size", cfg.SyncBatchSize,
		"interval", cfg.SyncInterval)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	sheetsCtx, cancelSheets := context.WithTimeout(context.Background(), 30*time.Second)
	sheetsClient, err := gsheet.New(sheetsCtx, backendCfg.SheetsOptions())
	cancelSheets()
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(repo, sheetsClient, cfg.SyncBatchSize)

	ctx, stop := cli.ShutdownContext(logger)
	defer stop()

	// Catch up on records written while the worker was down.
	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", log.FieldError, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeRecordSync(ctx, syncWorker.HandleSyncMessage)
	})
	g.Go(func() error {
		return syncWorker.Run(ctx, cfg.SyncInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		repo.Close()
		amqpClient.Close()
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
