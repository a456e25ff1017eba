package notes

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Note is the relational record this pipeline updates after a successful
// conversion. The table is owned by the CRUD service; only the markdown
// status columns belong to this module.
type Note struct {
	bun.BaseModel `bun:"table:notes,alias:n"`

	ID                  uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	UserID              uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id"`
	Title               string     `bun:"title" json:"title"`
	MarkdownVersion     int64      `bun:"markdown_version,notnull,default:0" json:"markdown_version"`
	MarkdownGeneratedAt *time.Time `bun:"markdown_generated_at,nullzero" json:"markdown_generated_at,omitempty"`
	DeletedAt           *time.Time `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	CreatedAt           time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt           time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}
