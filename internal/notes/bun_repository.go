package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunStatusWriter persists markdown status updates through the notes
// repository, falling back to an atomic conflict-aware insert when the row
// does not exist yet.
type BunStatusWriter struct {
	db   *bun.DB
	repo repository.Repository[*Note]
}

var _ StatusWriter = (*BunStatusWriter)(nil)

// NewBunStatusWriter constructs a Bun-backed status writer.
func NewBunStatusWriter(db *bun.DB) *BunStatusWriter {
	w := &BunStatusWriter{db: db}
	if db != nil {
		w.repo = NewNoteRepository(db)
	}
	return w
}

// MarkMarkdownGenerated records that a note's Markdown was written, bumping
// the version counter. An existing row is updated through the repository; a
// missing row is created so a conversion that races note creation still
// lands. Re-running the update for a duplicate delivery bumps the counter
// again but keeps the row keyed and consistent.
func (w *BunStatusWriter) MarkMarkdownGenerated(ctx context.Context, noteID, userID uuid.UUID, generatedAt time.Time) error {
	if w.db == nil {
		return errors.New("notes: status writer requires a database")
	}
	if noteID == uuid.Nil {
		return errors.New("notes: note id is required")
	}
	if userID == uuid.Nil {
		return errors.New("notes: user id is required")
	}

	generatedAt = generatedAt.UTC()

	existing, err := w.repo.GetByID(ctx, noteID.String())
	if err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return w.insertFresh(ctx, noteID, userID, generatedAt)
		}
		return fmt.Errorf("notes: load note %s: %w", noteID, err)
	}
	if existing.UserID != userID {
		return fmt.Errorf("notes: note %s does not belong to user %s", noteID, userID)
	}

	existing.MarkdownVersion++
	existing.MarkdownGeneratedAt = &generatedAt
	existing.UpdatedAt = generatedAt
	_, err = w.repo.Update(ctx, existing,
		repository.UpdateByID(noteID.String()),
		repository.UpdateColumns("markdown_version", "markdown_generated_at", "updated_at"),
	)
	return err
}

// insertFresh lands the first conversion for a note whose row is missing.
// Concurrent duplicate deliveries can both miss the existence check; the
// conflict clause folds the losing insert into an increment of the winner's
// row instead of failing on the primary key.
func (w *BunStatusWriter) insertFresh(ctx context.Context, noteID, userID uuid.UUID, generatedAt time.Time) error {
	model := Note{
		ID:                  noteID,
		UserID:              userID,
		MarkdownVersion:     1,
		MarkdownGeneratedAt: &generatedAt,
		CreatedAt:           generatedAt,
		UpdatedAt:           generatedAt,
	}
	_, err := w.db.NewInsert().
		Model(&model).
		On("CONFLICT (id) DO UPDATE").
		Set("markdown_version = markdown_version + 1").
		Set("markdown_generated_at = EXCLUDED.markdown_generated_at").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}
