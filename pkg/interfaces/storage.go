package interfaces

import (
	"context"
	"errors"
)

// ErrObjectNotFound reports a missing object when reading from the durable store.
var ErrObjectNotFound = errors.New("storage: object not found")

// ObjectStore is the durable store contract consumed by the conversion
// pipeline: keyed byte payloads with overwrite semantics. Implementations
// must make Put a full replace so duplicate deliveries stay idempotent.
type ObjectStore interface {
	// Put writes the payload at key, replacing any previous object.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get returns the object stored at key, or ErrObjectNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Exists reports whether an object is stored at key.
	Exists(ctx context.Context, key string) (bool, error)
}
