package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"ledger/internal/amqp"
	"ledger/internal/cli"
	"ledger/internal/log"
	"ledger/internal/services"
	"ledger/internal/sheets"
	gsheet "ledger/internal/sheets/google"
	mem "ledger/internal/sheets/memory"
	"ledger/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}

	logger := cli.SetupLogger(os.Stdout, cfg.LogLevel, log.ComponentWorker)
	logger.Info("Starting ledger-worker", log.FieldOperation, log.OpStartup)

	store, err := cli.OpenStore(logger, cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	var mirror sheets.RecordMirror
	if cfg.SheetsEnabled() {
		client, err := gsheet.New(context.Background(), gsheet.Options{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
			Logger:          logger,
		})
		if err != nil {
			return fmt.Errorf("initialize Google Sheets client: %w", err)
		}
		mirror = client
		logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		mirror = mem.New()
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, mirroring in memory")
	}

	monitor := services.NewBudgetMonitor(store, logger)
	sweeper := services.NewBudgetSweeper(monitor, cfg.BudgetCheckInterval, logger)

	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			return fmt.Errorf("initialize AMQP client: %w", err)
		}
		defer amqpClient.Close()
	} else {
		logger.Warn("AMQP disabled - no AMQP_URL provided, running budget sweeps only")
	}

	ctx, cancel := cli.GracefulShutdown(logger, shutdownTimeout, nil)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	if amqpClient != nil {
		syncWorker := worker.NewSyncWorker(store, mirror, monitor, logger)
		g.Go(func() error {
			return amqpClient.ConsumeRecordEvents(gctx, syncWorker.HandleRecordEvent)
		})
	}
	g.Go(func() error {
		return sweeper.Run(gctx)
	})

	err = g.Wait()
	logger.Info("Worker shutdown complete", log.FieldOperation, log.OpShutdown)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
