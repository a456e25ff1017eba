// Command worker runs the conversion pipeline against durable adapters: a
// Redis Streams (or in-memory) queue, a filesystem object store, and a
// Bun-backed relational store.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"

	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-noteflow/internal/jobs"
	"github.com/goliatone/go-noteflow/internal/logging"
	"github.com/goliatone/go-noteflow/internal/logging/gologger"
	"github.com/goliatone/go-noteflow/internal/notes"
	"github.com/goliatone/go-noteflow/internal/queue"
	"github.com/goliatone/go-noteflow/internal/runtimeconfig"
	"github.com/goliatone/go-noteflow/internal/search"
	"github.com/goliatone/go-noteflow/internal/storage"
	"github.com/goliatone/go-noteflow/pkg/interfaces"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "worker:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := loadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	provider, err := gologger.NewProvider(gologger.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
		Focus:     cfg.Logging.Focus,
	})
	if err != nil {
		return err
	}
	logger := logging.ModuleLogger(provider, "")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := openStore(cfg.Storage, provider)
	if err != nil {
		return err
	}

	consumer := jobs.NewConsumer(store, notes.NewBunStatusWriter(db),
		jobs.WithConsumerLogger(logging.ConsumerLogger(provider)),
		jobs.WithIndexer(search.NewMemoryIndexer()),
		jobs.WithRetryPolicy(jobs.RetryPolicy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BackoffBase: cfg.Retry.BackoffBase,
		}),
	)

	logger.Info("worker starting",
		"queue_provider", cfg.Queue.Provider,
		"storage_provider", cfg.Storage.Provider,
		"db_driver", cfg.Database.Driver,
	)

	switch strings.ToLower(cfg.Queue.Provider) {
	case "redis":
		return runRedis(ctx, cfg, consumer, provider, logger)
	default:
		return runMemory(ctx, cfg, consumer, provider, logger)
	}
}

func runRedis(ctx context.Context, cfg runtimeconfig.Config, consumer *jobs.Consumer, provider interfaces.LoggerProvider, logger interfaces.Logger) error {
	q, err := queue.NewRedisQueue(queue.RedisConfig{
		Addr:     cfg.Queue.Redis.Addr,
		DB:       cfg.Queue.Redis.DB,
		Stream:   cfg.Queue.Redis.Stream,
		Group:    cfg.Queue.Redis.Group,
		Consumer: cfg.Queue.Redis.Consumer,
	}, queue.WithRedisLogger(logging.QueueLogger(provider)))
	if err != nil {
		return err
	}
	defer q.Close()

	go func() {
		if err := q.RunRetryPump(ctx); err != nil && ctx.Err() == nil {
			logger.Error("retry pump stopped", "error", err)
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			logger.Info("worker stopping")
			return nil
		}
		summary, err := q.Consume(ctx, consumer, cfg.Queue.BatchSize)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("worker stopping")
				return nil
			}
			logger.Error("consume pass failed", "error", err)
			time.Sleep(time.Second)
			continue
		}
		if len(summary.Outcomes) > 0 {
			logger.Info("batch processed", "succeeded", summary.Succeeded, "failed", summary.Failed)
		}
	}
}

func runMemory(ctx context.Context, cfg runtimeconfig.Config, consumer *jobs.Consumer, provider interfaces.LoggerProvider, logger interfaces.Logger) error {
	q := queue.NewMemoryQueue(queue.WithMemoryLogger(logging.QueueLogger(provider)))

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("worker stopping")
			return nil
		case <-ticker.C:
			summary, err := q.Deliver(ctx, consumer, cfg.Queue.BatchSize)
			if err != nil {
				logger.Error("deliver pass failed", "error", err)
				continue
			}
			if len(summary.Outcomes) > 0 {
				logger.Info("batch processed", "succeeded", summary.Succeeded, "failed", summary.Failed)
			}
		}
	}
}

func openDatabase(cfg runtimeconfig.DatabaseConfig) (*bun.DB, error) {
	switch strings.ToLower(cfg.Driver) {
	case "postgres":
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		sqldb, err := sql.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	}
}

func openStore(cfg runtimeconfig.StorageConfig, provider interfaces.LoggerProvider) (interfaces.ObjectStore, error) {
	switch strings.ToLower(cfg.Provider) {
	case "memory":
		return storage.NewMemoryStore(), nil
	default:
		return storage.NewFSStore(cfg.Root, storage.WithFSLogger(logging.StorageLogger(provider)))
	}
}

func loadConfig() runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()

	cfg.Queue.Provider = getEnv("NOTEFLOW_QUEUE_PROVIDER", cfg.Queue.Provider)
	cfg.Queue.BatchSize = getEnvInt("NOTEFLOW_BATCH_SIZE", cfg.Queue.BatchSize)
	cfg.Queue.Redis.Addr = getEnv("NOTEFLOW_REDIS_ADDR", cfg.Queue.Redis.Addr)
	cfg.Queue.Redis.DB = getEnvInt("NOTEFLOW_REDIS_DB", cfg.Queue.Redis.DB)
	cfg.Queue.Redis.Stream = getEnv("NOTEFLOW_REDIS_STREAM", cfg.Queue.Redis.Stream)
	cfg.Queue.Redis.Group = getEnv("NOTEFLOW_REDIS_GROUP", cfg.Queue.Redis.Group)
	cfg.Queue.Redis.Consumer = getEnv("NOTEFLOW_REDIS_CONSUMER", cfg.Queue.Redis.Consumer)

	cfg.Storage.Provider = getEnv("NOTEFLOW_STORAGE_PROVIDER", cfg.Storage.Provider)
	cfg.Storage.Root = getEnv("NOTEFLOW_STORAGE_ROOT", cfg.Storage.Root)

	cfg.Database.Driver = getEnv("NOTEFLOW_DB_DRIVER", cfg.Database.Driver)
	cfg.Database.DSN = getEnv("NOTEFLOW_DB_DSN", cfg.Database.DSN)

	cfg.Retry.MaxAttempts = getEnvInt("NOTEFLOW_RETRY_MAX_ATTEMPTS", cfg.Retry.MaxAttempts)
	cfg.Retry.BackoffBase = getEnvInt("NOTEFLOW_RETRY_BACKOFF_BASE", cfg.Retry.BackoffBase)

	cfg.Logging.Level = getEnv("NOTEFLOW_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("NOTEFLOW_LOG_FORMAT", cfg.Logging.Format)

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
