package main

import (
	"context"
	"errors"
	"os"
	"time"

	"subboard/internal/amqp"
	"subboard/internal/cli"
	applog "subboard/internal/log"
	gmetrics "subboard/internal/metrics/google"
	"subboard/internal/metrics/memory"
	"subboard/internal/ports"
	"subboard/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(applog.ComponentWorker)
	logger.Info("Starting subboard-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	cat := cli.LoadCatalog(logger, cfg.CatalogPath)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Upstream: the spreadsheet when configured, otherwise the seed files.
	var upstream ports.MetricsReader
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gmetrics.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleMetricsSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
			os.Exit(1)
		}
		upstream = client
		logger.Info("Google Sheets upstream initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		upstream = memory.NewFromFiles(cfg.DataDir)
		logger.Info("Google Sheets disabled, refreshing from seed data", "data_dir", cfg.DataDir)
	}

	w := worker.NewSnapshotWorker(upstream, repo, cat, worker.Config{
		Interval:  cfg.RefreshInterval,
		Retention: cfg.SnapshotRetention,
	})
	w.OnSaved(func(reportID string) {
		logger.Debug("Snapshot stored", applog.FieldReportID, reportID)
	})

	amqpClient := cli.ConnectAMQP(logger, cfg)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		refreshed, failed := w.Stats()
		logger.Info("Shutting down worker", "refreshed", refreshed, "failed", failed)
		if amqpClient != nil {
			_ = amqpClient.Close()
		}
	})

	if amqpClient != nil {
		go func() {
			err := amqpClient.Consume(ctx, amqp.Handlers{Refresh: w.HandleRefresh})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", applog.FieldError, err)
			}
		}()
	} else {
		logger.Info("Skipping AMQP message consumption - events disabled")
	}

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", applog.FieldError, err)
	}
	cli.WaitForShutdown(ctx, done)
}
