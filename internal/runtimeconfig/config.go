package runtimeconfig

import (
	"errors"
	"strings"
)

var ErrQueueProviderUnknown = errors.New("noteflow config: queue provider is invalid")
var ErrRedisAddrRequired = errors.New("noteflow config: redis address is required for the redis queue provider")
var ErrStorageProviderUnknown = errors.New("noteflow config: storage provider is invalid")
var ErrStorageRootRequired = errors.New("noteflow config: storage root is required for the fs storage provider")
var ErrDatabaseDriverUnknown = errors.New("noteflow config: database driver is invalid")
var ErrDatabaseDSNRequired = errors.New("noteflow config: database dsn is required")
var ErrRetryMaxAttemptsInvalid = errors.New("noteflow config: retry max attempts must be positive")
var ErrRetryBackoffBaseInvalid = errors.New("noteflow config: retry backoff base must be positive")
var ErrBatchSizeInvalid = errors.New("noteflow config: queue batch size must be positive")
var ErrLoggingProviderUnknown = errors.New("noteflow config: logging provider is invalid")

// Config aggregates adapter bindings for the conversion pipeline. Fields
// intentionally use simple types so host applications can extend them
// later.
type Config struct {
	Retry    RetryConfig
	Queue    QueueConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Logging  LoggingConfig
}

// RetryConfig bounds redelivery of failed jobs.
type RetryConfig struct {
	MaxAttempts int
	BackoffBase int
}

// QueueConfig selects and parameterizes the queue adapter.
type QueueConfig struct {
	Provider  string
	BatchSize int
	Redis     RedisConfig
}

// RedisConfig carries the stream coordinates for the redis provider.
type RedisConfig struct {
	Addr     string
	DB       int
	Stream   string
	Group    string
	Consumer string
}

// StorageConfig selects the durable-store backend.
type StorageConfig struct {
	Provider string
	Root     string
}

// DatabaseConfig selects the relational-store connection.
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns a runnable local configuration: in-memory queue,
// filesystem storage, sqlite, structured logging.
func DefaultConfig() Config {
	return Config{
		Retry: RetryConfig{
			MaxAttempts: 3,
			BackoffBase: 2,
		},
		Queue: QueueConfig{
			Provider:  "memory",
			BatchSize: 10,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Stream: "notes:jobs",
				Group:  "notes:converters",
			},
		},
		Storage: StorageConfig{
			Provider: "fs",
			Root:     "./data/objects",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "file:noteflow.db?cache=shared",
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "json",
		},
	}
}

// Validate checks cross-field consistency. It returns the first violation
// found.
func (c Config) Validate() error {
	if c.Retry.MaxAttempts < 1 {
		return ErrRetryMaxAttemptsInvalid
	}
	if c.Retry.BackoffBase < 1 {
		return ErrRetryBackoffBaseInvalid
	}
	if c.Queue.BatchSize < 1 {
		return ErrBatchSizeInvalid
	}

	switch strings.ToLower(strings.TrimSpace(c.Queue.Provider)) {
	case "memory":
	case "redis":
		if strings.TrimSpace(c.Queue.Redis.Addr) == "" {
			return ErrRedisAddrRequired
		}
	default:
		return ErrQueueProviderUnknown
	}

	switch strings.ToLower(strings.TrimSpace(c.Storage.Provider)) {
	case "memory":
	case "fs":
		if strings.TrimSpace(c.Storage.Root) == "" {
			return ErrStorageRootRequired
		}
	default:
		return ErrStorageProviderUnknown
	}

	switch strings.ToLower(strings.TrimSpace(c.Database.Driver)) {
	case "sqlite", "postgres":
		if strings.TrimSpace(c.Database.DSN) == "" {
			return ErrDatabaseDSNRequired
		}
	default:
		return ErrDatabaseDriverUnknown
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Provider)) {
	case "", "noop", "gologger":
	default:
		return ErrLoggingProviderUnknown
	}

	return nil
}
