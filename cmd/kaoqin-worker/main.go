package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/takayashoshi888/nihaokaoqing/internal/amqp"
	"github.com/takayashoshi888/nihaokaoqing/internal/config"
	applog "github.com/takayashoshi888/nihaokaoqing/internal/log"
	"github.com/takayashoshi888/nihaokaoqing/internal/sheets"
	"github.com/takayashoshi888/nihaokaoqing/internal/sheets/google"
	sheetsmem "github.com/takayashoshi888/nihaokaoqing/internal/sheets/memory"
	"github.com/takayashoshi888/nihaokaoqing/internal/storage"
	"github.com/takayashoshi888/nihaokaoqing/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logCfg := applog.DefaultConfig()
	logCfg.Component = applog.ComponentWorker
	logger := applog.New(logCfg)
	slog.SetDefault(logger.Logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Without a spreadsheet configured the worker still drains the queue,
	// mirroring rows into memory so sync state advances during development.
	var (
		writer  sheets.ExpenseWriter
		remover sheets.ExpenseRemover
	)
	if cfg.GoogleSpreadsheetID != "" {
		client, err := google.NewClient(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		writer = client
		remover = client
		logger.Info("Google Sheets sync enabled",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet_name", cfg.GoogleSheetName)
	} else {
		store := sheetsmem.New()
		writer = store
		remover = store
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, using in-memory sheet store")
	}

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client, running scan-only", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
		}
	} else {
		logger.Warn("AMQP_URL not set, running scan-only")
	}

	syncWorker := worker.NewSyncWorker(repo, writer, remover, nil, cfg.SyncBatchSize, cfg.SyncInterval)

	logger.Info("Starting sync worker",
		"batch_size", cfg.SyncBatchSize,
		"interval", cfg.SyncInterval.String())

	if err := syncWorker.Run(ctx, amqpClient); err != nil {
		logger.Error("Sync worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Sync worker stopped gracefully")
}
