package notes

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type statusKey struct {
	noteID uuid.UUID
	userID uuid.UUID
}

// MarkdownStatus is the recorded outcome of a conversion for one note.
type MarkdownStatus struct {
	Version     int64
	GeneratedAt time.Time
}

// MemoryStatusWriter is an in-memory StatusWriter for tests and the
// embedded runtime.
type MemoryStatusWriter struct {
	mu      sync.RWMutex
	rows    map[statusKey]MarkdownStatus
	failErr error
}

var _ StatusWriter = (*MemoryStatusWriter)(nil)

func NewMemoryStatusWriter() *MemoryStatusWriter {
	return &MemoryStatusWriter{rows: map[statusKey]MarkdownStatus{}}
}

// Fail forces every subsequent call to return err. Pass nil to recover.
func (w *MemoryStatusWriter) Fail(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failErr = err
}

func (w *MemoryStatusWriter) MarkMarkdownGenerated(ctx context.Context, noteID, userID uuid.UUID, generatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failErr != nil {
		return w.failErr
	}

	key := statusKey{noteID: noteID, userID: userID}
	status := w.rows[key]
	status.Version++
	status.GeneratedAt = generatedAt.UTC()
	w.rows[key] = status
	return nil
}

// Status reports the recorded state for a note, for test assertions.
func (w *MemoryStatusWriter) Status(noteID, userID uuid.UUID) (MarkdownStatus, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	status, ok := w.rows[statusKey{noteID: noteID, userID: userID}]
	return status, ok
}
