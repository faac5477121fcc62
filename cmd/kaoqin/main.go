package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/takayashoshi888/nihaokaoqing/internal/amqp"
	"github.com/takayashoshi888/nihaokaoqing/internal/assistant"
	"github.com/takayashoshi888/nihaokaoqing/internal/config"
	apphttp "github.com/takayashoshi888/nihaokaoqing/internal/http"
	applog "github.com/takayashoshi888/nihaokaoqing/internal/log"
	"github.com/takayashoshi888/nihaokaoqing/internal/metrics"
	"github.com/takayashoshi888/nihaokaoqing/internal/services"
	"github.com/takayashoshi888/nihaokaoqing/internal/storage"
)

func main() {
	// Load .env for local development; absent in production is fine.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	slog.SetDefault(logger.Logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// The sync publisher is optional: without AMQP config the app runs
	// SQLite-only and the worker's scan never sees a queue.
	var publisher services.SyncPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client, continuing without sync publishing", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP sync publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	attendanceSvc := services.NewAttendanceService(repo)
	expenseSvc := services.NewExpenseService(repo, publisher)
	summarizer := assistant.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel)

	srv, err := apphttp.NewServer(":"+cfg.Port, repo, attendanceSvc, expenseSvc, summarizer, collector, registry)
	if err != nil {
		logger.Error("Failed to build server", "error", err)
		os.Exit(1)
	}

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting kaoqin server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
