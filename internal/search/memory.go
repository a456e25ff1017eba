// Package search holds the indexing collaborator fed by index-for-search
// jobs. The pipeline hands over extracted plain text only; querying and
// ranking live in a separate service.
package search

import (
	"context"
	"sync"

	"github.com/goliatone/go-noteflow/pkg/interfaces"
)

type documentKey struct {
	userID string
	noteID string
}

// MemoryIndexer is an in-memory Indexer used by tests and the embedded
// runtime. Index replaces any previous text for the same note.
type MemoryIndexer struct {
	mu      sync.RWMutex
	docs    map[documentKey]string
	failErr error
}

var _ interfaces.Indexer = (*MemoryIndexer)(nil)

func NewMemoryIndexer() *MemoryIndexer {
	return &MemoryIndexer{docs: map[documentKey]string{}}
}

// Fail forces every subsequent call to return err. Pass nil to recover.
func (i *MemoryIndexer) Fail(err error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.failErr = err
}

func (i *MemoryIndexer) Index(ctx context.Context, userID, noteID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.failErr != nil {
		return i.failErr
	}

	i.docs[documentKey{userID: userID, noteID: noteID}] = text
	return nil
}

// Document reports the indexed text for a note, for test assertions.
func (i *MemoryIndexer) Document(userID, noteID string) (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	text, ok := i.docs[documentKey{userID: userID, noteID: noteID}]
	return text, ok
}

// Size reports how many notes are indexed.
func (i *MemoryIndexer) Size() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.docs)
}
