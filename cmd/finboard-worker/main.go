package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finboard/internal/amqp"
	"finboard/internal/config"
	applog "finboard/internal/log"
	"finboard/internal/storage"
	"finboard/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentWorker)
	applog.SetDefault(logger)

	logger.Info("Starting finboard-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	client := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	defer client.Close()

	auditor := worker.NewAuditWorker(store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		err := client.ConsumeTransactionEvents(ctx, func(event *amqp.TransactionEvent) error {
			return auditor.HandleEvent(ctx, event)
		})
		if err != nil && err != context.Canceled {
			logger.Error("Event consumption failed", "error", err)
		}
		cancel()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()

	// Give the consume loop a moment to ack in-flight deliveries.
	time.Sleep(2 * time.Second)

	stats := auditor.Stats()
	logger.Info("Worker stopped",
		"created", stats.Created,
		"updated", stats.Updated,
		"deleted", stats.Deleted,
		"unknown", stats.Unknown)
}
