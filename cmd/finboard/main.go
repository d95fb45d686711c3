package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"finboard/internal/amqp"
	"finboard/internal/auth"
	"finboard/internal/config"
	"finboard/internal/files"
	apphttp "finboard/internal/http"
	applog "finboard/internal/log"
	"finboard/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.SeedCount > 0 {
		if err := storage.Seed(ctx, store, cfg.SeedCount, time.Now().UnixNano()); err != nil {
			logger.Warn("Seeding failed", "error", err)
		}
	}

	avatars, err := files.NewAvatarStore(cfg.UploadDir)
	if err != nil {
		logger.Error("Failed to initialize avatar store", "error", err, "dir", cfg.UploadDir)
		os.Exit(1)
	}

	authSvc := auth.NewService(store, store, cfg.SessionTTL, cfg.BcryptCost)

	var events apphttp.EventPublisher
	if cfg.AMQPURL != "" {
		client := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		defer client.Close()
		events = client
		logger.Info("AMQP eventing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP eventing disabled - no AMQP_URL provided")
	}

	srv := apphttp.NewServer(":"+cfg.Port, store, authSvc, avatars, events)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting finboard server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	// Drop expired sessions on a timer so the table stays small.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.SessionPurgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if _, err := store.PurgeExpiredSessions(ctx); err != nil {
					logger.Warn("Session purge failed", "error", err)
				}
			}
		}
	})

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
			return nil
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func openStore(cfg *config.Config, logger *applog.Logger) (storage.Store, error) {
	switch cfg.DataBackend {
	case "memory":
		logger.Info("Initialized memory backend", "backend", cfg.DataBackend)
		return storage.NewMemoryStore(), nil
	default:
		store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, err
		}
		logger.Info("Initialized sqlite backend", "backend", cfg.DataBackend, "path", cfg.SQLiteDBPath)
		return store, nil
	}
}
