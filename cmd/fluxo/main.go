package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"fluxo/internal/amqp"
	"fluxo/internal/config"
	apphttp "fluxo/internal/http"
	applog "fluxo/internal/log"
	"fluxo/internal/reports"
	"fluxo/internal/reports/memory"
	"fluxo/internal/storage"
)

func main() {
	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", applog.FieldError, err)
		os.Exit(1)
	}

	var (
		reader reports.Reader
		closer interface{ Close() error }
	)
	switch cfg.DataBackend {
	case "sqlite":
		store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open SQLite ledger", applog.FieldError, err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		reader, closer = store, store
		logger.Info("Initialized SQLite backend", applog.FieldBackend, cfg.DataBackend, "path", cfg.SQLiteDBPath)
	case "postgres":
		store, err := storage.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			logger.Error("Failed to connect to Postgres ledger", applog.FieldError, err)
			os.Exit(1)
		}
		reader, closer = store, store
		logger.Info("Initialized Postgres backend", applog.FieldBackend, cfg.DataBackend)
	default:
		reader = memory.NewDemo()
		logger.Info("Initialized memory backend", applog.FieldBackend, cfg.DataBackend)
	}
	if closer != nil {
		defer closer.Close()
	}

	srv := apphttp.NewServer(":"+cfg.Port, reader, apphttp.Options{
		CacheTTL:        cfg.CacheTTL,
		CacheMaxReports: cfg.CacheMaxReports,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting fluxo server", "port", cfg.Port, applog.FieldBackend, cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP broker", applog.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()

		amqpLog := logger.WithComponent(applog.ComponentAMQP)
		g.Go(func() error {
			err := client.ConsumeLedgerRefresh(ctx, func(msg *amqp.LedgerRefreshMessage) error {
				amqpLog.Info("Ledger refreshed upstream, dropping memoized reports",
					"source", msg.Source, "tables", msg.Tables)
				srv.InvalidateReports()
				return nil
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
		logger.Info("Ledger refresh consumer enabled", "queue", cfg.AMQPQueue)
	}

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
