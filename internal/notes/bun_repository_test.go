package notes_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-noteflow/internal/notes"
	"github.com/goliatone/go-noteflow/pkg/testsupport"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := testsupport.NewBunSQLiteDB()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.NewCreateTable().Model((*notes.Note)(nil)).IfNotExists().Exec(context.Background()); err != nil {
		t.Fatalf("create notes table: %v", err)
	}
	return db
}

func TestMarkMarkdownGeneratedIncrementsVersion(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	writer := notes.NewBunStatusWriter(db)
	repo := notes.NewNoteRepository(db)

	noteID := uuid.New()
	userID := uuid.New()
	now := time.Now().UTC()

	seed := &notes.Note{
		ID:        noteID,
		UserID:    userID,
		Title:     "draft",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := repo.Create(ctx, seed); err != nil {
		t.Fatalf("seed note: %v", err)
	}

	first := now.Add(time.Second)
	if err := writer.MarkMarkdownGenerated(ctx, noteID, userID, first); err != nil {
		t.Fatalf("first update: %v", err)
	}

	second := now.Add(2 * time.Second)
	if err := writer.MarkMarkdownGenerated(ctx, noteID, userID, second); err != nil {
		t.Fatalf("second update: %v", err)
	}

	var stored notes.Note
	if err := db.NewSelect().Model(&stored).Where("n.id = ?", noteID).Scan(ctx); err != nil {
		t.Fatalf("load note: %v", err)
	}
	if stored.MarkdownVersion != 2 {
		t.Fatalf("expected version 2 after two updates, got %d", stored.MarkdownVersion)
	}
	if stored.MarkdownGeneratedAt == nil || !stored.MarkdownGeneratedAt.Equal(second) {
		t.Fatalf("expected generated_at %v, got %v", second, stored.MarkdownGeneratedAt)
	}
	if stored.Title != "draft" {
		t.Fatalf("expected title to be untouched, got %q", stored.Title)
	}
}

func TestMarkMarkdownGeneratedCreatesMissingRow(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	writer := notes.NewBunStatusWriter(db)

	noteID := uuid.New()
	userID := uuid.New()
	generatedAt := time.Now().UTC()

	if err := writer.MarkMarkdownGenerated(ctx, noteID, userID, generatedAt); err != nil {
		t.Fatalf("expected insert path to succeed, got %v", err)
	}

	var stored notes.Note
	if err := db.NewSelect().Model(&stored).Where("n.id = ?", noteID).Scan(ctx); err != nil {
		t.Fatalf("load note: %v", err)
	}
	if stored.MarkdownVersion != 1 {
		t.Fatalf("expected version 1 on fresh row, got %d", stored.MarkdownVersion)
	}
	if stored.UserID != userID {
		t.Fatalf("expected user id %s, got %s", userID, stored.UserID)
	}
}

func TestMarkMarkdownGeneratedRejectsForeignNote(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	writer := notes.NewBunStatusWriter(db)
	repo := notes.NewNoteRepository(db)

	noteID := uuid.New()
	owner := uuid.New()
	now := time.Now().UTC()

	seed := &notes.Note{ID: noteID, UserID: owner, CreatedAt: now, UpdatedAt: now}
	if _, err := repo.Create(ctx, seed); err != nil {
		t.Fatalf("seed note: %v", err)
	}

	if err := writer.MarkMarkdownGenerated(ctx, noteID, uuid.New(), now); err == nil {
		t.Fatal("expected mismatched owner to be rejected")
	}

	var stored notes.Note
	if err := db.NewSelect().Model(&stored).Where("n.id = ?", noteID).Scan(ctx); err != nil {
		t.Fatalf("load note: %v", err)
	}
	if stored.MarkdownVersion != 0 {
		t.Fatalf("expected version to stay untouched, got %d", stored.MarkdownVersion)
	}
}

func TestMarkMarkdownGeneratedValidatesIDs(t *testing.T) {
	ctx := context.Background()
	writer := notes.NewBunStatusWriter(newTestDB(t))

	if err := writer.MarkMarkdownGenerated(ctx, uuid.Nil, uuid.New(), time.Now()); err == nil {
		t.Fatal("expected nil note id to be rejected")
	}
	if err := writer.MarkMarkdownGenerated(ctx, uuid.New(), uuid.Nil, time.Now()); err == nil {
		t.Fatal("expected nil user id to be rejected")
	}
}

func TestMemoryStatusWriter(t *testing.T) {
	ctx := context.Background()
	writer := notes.NewMemoryStatusWriter()

	noteID := uuid.New()
	userID := uuid.New()
	generatedAt := time.Now().UTC()

	if err := writer.MarkMarkdownGenerated(ctx, noteID, userID, generatedAt); err != nil {
		t.Fatalf("expected update to succeed, got %v", err)
	}
	if err := writer.MarkMarkdownGenerated(ctx, noteID, userID, generatedAt.Add(time.Second)); err != nil {
		t.Fatalf("expected second update to succeed, got %v", err)
	}

	status, ok := writer.Status(noteID, userID)
	if !ok {
		t.Fatal("expected status to be recorded")
	}
	if status.Version != 2 {
		t.Fatalf("expected version 2, got %d", status.Version)
	}

	boom := errors.New("db down")
	writer.Fail(boom)
	if err := writer.MarkMarkdownGenerated(ctx, noteID, userID, generatedAt); !errors.Is(err, boom) {
		t.Fatalf("expected injected failure, got %v", err)
	}
}
