package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-noteflow/internal/markdown"
	"github.com/goliatone/go-noteflow/internal/notes"
	"github.com/goliatone/go-noteflow/internal/storage"
	"github.com/goliatone/go-noteflow/pkg/interfaces"
)

const markdownContentType = "text/markdown"

// NewConvertToMarkdownHandler builds the handler for convert jobs: run the
// serializer, overwrite the note's durable object, flag completion in the
// relational store. Both writes are upserts so duplicate deliveries re-run
// safely.
func NewConvertToMarkdownHandler(
	store interfaces.ObjectStore,
	status notes.StatusWriter,
	clock func() time.Time,
	opts ...HandlerOption[ConvertToMarkdownCommand],
) *Handler[ConvertToMarkdownCommand] {
	if clock == nil {
		clock = time.Now
	}

	exec := func(ctx context.Context, cmd ConvertToMarkdownCommand) error {
		rendered := markdown.ConvertDocument(cmd.Content, cmd.noteMetadata())

		key := storage.NoteContentKey(cmd.UserID.String(), cmd.NoteID.String())
		if err := store.Put(ctx, key, []byte(rendered), markdownContentType); err != nil {
			return fmt.Errorf("write markdown %s: %w", key, err)
		}

		if err := status.MarkMarkdownGenerated(ctx, cmd.NoteID, cmd.UserID, clock()); err != nil {
			return fmt.Errorf("flag markdown generated: %w", err)
		}
		return nil
	}

	return NewHandler(exec, opts...)
}

// NewIndexForSearchHandler builds the handler for index jobs. Precondition:
// the note's Markdown already exists in the durable store; a missing object
// fails with ErrMarkdownMissing and follows the normal retry path, since a
// convert job for the note may still be in flight.
func NewIndexForSearchHandler(
	store interfaces.ObjectStore,
	indexer interfaces.Indexer,
	renderer *markdown.GoldmarkRenderer,
	opts ...HandlerOption[IndexForSearchCommand],
) *Handler[IndexForSearchCommand] {
	if renderer == nil {
		renderer = markdown.NewGoldmarkRenderer()
	}

	exec := func(ctx context.Context, cmd IndexForSearchCommand) error {
		if indexer == nil {
			return ErrIndexerUnavailable
		}

		key := storage.NoteContentKey(cmd.UserID.String(), cmd.NoteID.String())
		data, err := store.Get(ctx, key)
		if errors.Is(err, interfaces.ErrObjectNotFound) {
			return fmt.Errorf("%w: %s", ErrMarkdownMissing, key)
		}
		if err != nil {
			return fmt.Errorf("read markdown %s: %w", key, err)
		}

		_, body, err := markdown.ParseDocument(data)
		if err != nil {
			return fmt.Errorf("parse markdown %s: %w", key, err)
		}

		if err := indexer.Index(ctx, cmd.UserID.String(), cmd.NoteID.String(), renderer.PlainText([]byte(body))); err != nil {
			return fmt.Errorf("index note: %w", err)
		}
		return nil
	}

	return NewHandler(exec, opts...)
}
