package notes

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// StatusWriter is the relational-store contract the conversion pipeline
// depends on. The update must be an idempotent upsert keyed by note and
// user: duplicate deliveries re-run it safely.
type StatusWriter interface {
	MarkMarkdownGenerated(ctx context.Context, noteID, userID uuid.UUID, generatedAt time.Time) error
}

// NewNoteRepository exposes generic CRUD over the notes table for callers
// outside the conversion path (admin tooling, tests).
func NewNoteRepository(db *bun.DB) repository.Repository[*Note] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Note]{
		NewRecord: func() *Note { return &Note{} },
		GetID: func(n *Note) uuid.UUID {
			return n.ID
		},
		SetID: func(n *Note, id uuid.UUID) {
			n.ID = id
		},
		GetIdentifier: func() string {
			return ""
		},
		GetIdentifierValue: func(*Note) string {
			return ""
		},
	})
}
