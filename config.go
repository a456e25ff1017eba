package noteflow

import "github.com/goliatone/go-noteflow/internal/runtimeconfig"

var (
	ErrQueueProviderUnknown    = runtimeconfig.ErrQueueProviderUnknown
	ErrRedisAddrRequired       = runtimeconfig.ErrRedisAddrRequired
	ErrStorageProviderUnknown  = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageRootRequired     = runtimeconfig.ErrStorageRootRequired
	ErrDatabaseDriverUnknown   = runtimeconfig.ErrDatabaseDriverUnknown
	ErrDatabaseDSNRequired     = runtimeconfig.ErrDatabaseDSNRequired
	ErrRetryMaxAttemptsInvalid = runtimeconfig.ErrRetryMaxAttemptsInvalid
	ErrRetryBackoffBaseInvalid = runtimeconfig.ErrRetryBackoffBaseInvalid
	ErrBatchSizeInvalid        = runtimeconfig.ErrBatchSizeInvalid
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
)

type (
	Config         = runtimeconfig.Config
	RetryConfig    = runtimeconfig.RetryConfig
	QueueConfig    = runtimeconfig.QueueConfig
	RedisConfig    = runtimeconfig.RedisConfig
	StorageConfig  = runtimeconfig.StorageConfig
	DatabaseConfig = runtimeconfig.DatabaseConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
