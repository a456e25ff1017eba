package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-noteflow/pkg/interfaces"
)

const (
	rootModule       = "notes"
	serializerModule = "notes.serializer"
	consumerModule   = "notes.consumer"
	queueModule      = "notes.queue"
	storageModule    = "notes.storage"
	indexerModule    = "notes.indexer"
)

const (
	fieldJobKind   = "job_kind"
	fieldNoteID    = "note_id"
	fieldUserID    = "user_id"
	fieldMessageID = "message_id"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// SerializerLogger returns the logger namespace reserved for the Markdown serializer.
func SerializerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, serializerModule)
}

// ConsumerLogger returns the logger namespace reserved for the queue consumer.
func ConsumerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, consumerModule)
}

// QueueLogger returns the logger namespace reserved for queue runtime adapters.
func QueueLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, queueModule)
}

// StorageLogger returns the logger namespace reserved for durable-store implementations.
func StorageLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storageModule)
}

// IndexerLogger returns the logger namespace reserved for the search collaborator.
func IndexerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, indexerModule)
}

// WithJobContext enriches the provided logger with common conversion-job
// fields such as job kind, note id, and user id. Empty values are ignored.
func WithJobContext(logger interfaces.Logger, kind, noteID, userID string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(kind); trimmed != "" {
		fields[fieldJobKind] = trimmed
	}
	if trimmed := strings.TrimSpace(noteID); trimmed != "" {
		fields[fieldNoteID] = trimmed
	}
	if trimmed := strings.TrimSpace(userID); trimmed != "" {
		fields[fieldUserID] = trimmed
	}
	return WithFields(logger, fields)
}

// WithMessageID attaches the queue message identifier to the logger.
func WithMessageID(logger interfaces.Logger, messageID string) interfaces.Logger {
	trimmed := strings.TrimSpace(messageID)
	if trimmed == "" {
		return logger
	}
	return WithFields(logger, map[string]any{fieldMessageID: trimmed})
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
