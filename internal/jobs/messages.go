package jobs

import (
	"encoding/json"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-noteflow/internal/blocks"
	"github.com/goliatone/go-noteflow/internal/markdown"
)

// Wire values for the envelope type discriminator.
const (
	JobTypeConvertToMarkdown = "convert-to-markdown"
	JobTypeIndexForSearch    = "index-for-search"
)

const (
	convertMessageType = "notes.convert_to_markdown"
	indexMessageType   = "notes.index_for_search"
)

// ConversionJob is the queue message body produced whenever a note's block
// content changes. Immutable once enqueued.
type ConversionJob struct {
	Type     string          `json:"type"`
	NoteID   string          `json:"noteId"`
	UserID   string          `json:"userId"`
	Content  json.RawMessage `json:"content,omitempty"`
	Title    string          `json:"title,omitempty"`
	Metadata *JobMetadata    `json:"metadata,omitempty"`
}

// JobMetadata is the optional note metadata rendered into front matter.
type JobMetadata struct {
	Tags      []string `json:"tags"`
	Folder    string   `json:"folder,omitempty"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// ParseJob decodes a validated envelope body. Callers run ValidateEnvelope
// first; this only fails on malformed JSON.
func ParseJob(body []byte) (ConversionJob, error) {
	var job ConversionJob
	if err := json.Unmarshal(body, &job); err != nil {
		return ConversionJob{}, wrapEnvelopeError(err)
	}
	return job, nil
}

// ConvertToMarkdownCommand runs the serializer for one note and persists the
// result.
type ConvertToMarkdownCommand struct {
	NoteID   uuid.UUID
	UserID   uuid.UUID
	Content  []blocks.Block
	Title    string
	Metadata *JobMetadata
}

// Type implements command.Message.
func (ConvertToMarkdownCommand) Type() string { return convertMessageType }

// Validate ensures identifiers are present before handlers execute.
func (cmd ConvertToMarkdownCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.NoteID, validation.By(requiredUUID("notes.convert_to_markdown.note_id_required", "note id is required"))),
		validation.Field(&cmd.UserID, validation.By(requiredUUID("notes.convert_to_markdown.user_id_required", "user id is required"))),
	)
}

// IndexForSearchCommand hands a note's already-converted Markdown to the
// search collaborator.
type IndexForSearchCommand struct {
	NoteID uuid.UUID
	UserID uuid.UUID
}

// Type implements command.Message.
func (IndexForSearchCommand) Type() string { return indexMessageType }

// Validate ensures identifiers are present before handlers execute.
func (cmd IndexForSearchCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.NoteID, validation.By(requiredUUID("notes.index_for_search.note_id_required", "note id is required"))),
		validation.Field(&cmd.UserID, validation.By(requiredUUID("notes.index_for_search.user_id_required", "user id is required"))),
	)
}

func requiredUUID(code, message string) validation.RuleFunc {
	return func(value any) error {
		id, ok := value.(uuid.UUID)
		if !ok || id == uuid.Nil {
			return validation.NewError(code, message)
		}
		return nil
	}
}

// ConvertCommand builds the typed convert message from the wire envelope.
// Malformed identifiers or block content are permanent envelope errors.
func (j ConversionJob) ConvertCommand() (ConvertToMarkdownCommand, error) {
	noteID, userID, err := j.parseIDs()
	if err != nil {
		return ConvertToMarkdownCommand{}, err
	}

	doc, err := blocks.Decode(j.Content)
	if err != nil {
		return ConvertToMarkdownCommand{}, wrapEnvelopeError(fmt.Errorf("decode block content: %w", err))
	}

	return ConvertToMarkdownCommand{
		NoteID:   noteID,
		UserID:   userID,
		Content:  doc,
		Title:    j.Title,
		Metadata: j.Metadata,
	}, nil
}

// IndexCommand builds the typed index message from the wire envelope.
func (j ConversionJob) IndexCommand() (IndexForSearchCommand, error) {
	noteID, userID, err := j.parseIDs()
	if err != nil {
		return IndexForSearchCommand{}, err
	}
	return IndexForSearchCommand{NoteID: noteID, UserID: userID}, nil
}

func (j ConversionJob) parseIDs() (uuid.UUID, uuid.UUID, error) {
	noteID, err := uuid.Parse(j.NoteID)
	if err != nil {
		return uuid.Nil, uuid.Nil, wrapEnvelopeError(fmt.Errorf("parse note id %q: %w", j.NoteID, err))
	}
	userID, err := uuid.Parse(j.UserID)
	if err != nil {
		return uuid.Nil, uuid.Nil, wrapEnvelopeError(fmt.Errorf("parse user id %q: %w", j.UserID, err))
	}
	return noteID, userID, nil
}

// noteMetadata maps the wire metadata onto the serializer's front matter
// input. Nil metadata means no front matter, even when a title is present.
func (cmd ConvertToMarkdownCommand) noteMetadata() *markdown.NoteMetadata {
	if cmd.Metadata == nil {
		return nil
	}
	return &markdown.NoteMetadata{
		Title:     cmd.Title,
		Tags:      cmd.Metadata.Tags,
		Folder:    cmd.Metadata.Folder,
		CreatedAt: cmd.Metadata.CreatedAt,
		UpdatedAt: cmd.Metadata.UpdatedAt,
	}
}
