package interfaces

import "context"

// Indexer is the downstream search collaborator fed by index-for-search
// jobs. The pipeline only hands over extracted plain text; scoring and
// retrieval live outside this module.
type Indexer interface {
	// Index stores or replaces the searchable text for a note. Implementations
	// must upsert so duplicate deliveries stay idempotent.
	Index(ctx context.Context, userID, noteID, text string) error
}
