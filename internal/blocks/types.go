package blocks

import (
	"encoding/json"
	"strconv"
)

// Block kinds emitted by the editor. The set is open: the editor schema
// evolves independently of this pipeline, so consumers must treat any other
// value as an unknown kind rather than an error.
const (
	KindParagraph        = "paragraph"
	KindHeading          = "heading"
	KindBulletListItem   = "bulletListItem"
	KindNumberedListItem = "numberedListItem"
	KindCheckListItem    = "checkListItem"
	KindCodeBlock        = "codeBlock"
	KindBlockquote       = "blockquote"
	KindImage            = "image"
	KindTable            = "table"
)

// Inline node kinds.
const (
	InlineKindText = "text"
	InlineKindLink = "link"
)

// Block is a top-level node in the rich-text document tree. It is data only;
// serialization behaviour lives in internal/markdown. Trees are treated as
// immutable inputs.
type Block struct {
	Kind    string         `json:"type"`
	Content []InlineNode   `json:"content,omitempty"`
	Attrs   map[string]any `json:"props,omitempty"`
}

// InlineNode is a text-or-link node inside a block. Link nodes carry their
// label as nested inline content; text nodes carry formatting attributes.
// Nodes of any other kind contribute nothing unless they hold text or
// recognizable content.
type InlineNode struct {
	Kind    string       `json:"type"`
	Text    string       `json:"text,omitempty"`
	Attrs   InlineAttrs  `json:"styles,omitempty"`
	Href    string       `json:"href,omitempty"`
	Content []InlineNode `json:"content,omitempty"`
}

// InlineAttrs are the formatting marks recognized on text nodes.
type InlineAttrs struct {
	Bold          bool `json:"bold,omitempty"`
	Italic        bool `json:"italic,omitempty"`
	Strikethrough bool `json:"strikethrough,omitempty"`
	Code          bool `json:"code,omitempty"`
	Underline     bool `json:"underline,omitempty"`
}

// Decode parses the editor's block array. Unknown block or inline kinds
// decode fine; only malformed JSON fails.
func Decode(data []byte) ([]Block, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var out []Block
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StringAttr returns the named attribute as a string, or fallback when the
// attribute is absent or not a string.
func (b Block) StringAttr(key, fallback string) string {
	if b.Attrs == nil {
		return fallback
	}
	if value, ok := b.Attrs[key].(string); ok {
		return value
	}
	return fallback
}

// IntAttr returns the named attribute as an int. JSON numbers arrive as
// float64; numeric strings from older editor versions are accepted too.
func (b Block) IntAttr(key string, fallback int) int {
	if b.Attrs == nil {
		return fallback
	}
	switch value := b.Attrs[key].(type) {
	case int:
		return value
	case int64:
		return int(value)
	case float64:
		return int(value)
	case json.Number:
		if n, err := value.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

// BoolAttr returns the named attribute as a bool, or fallback when the
// attribute is absent or not a bool.
func (b Block) BoolAttr(key string, fallback bool) bool {
	if b.Attrs == nil {
		return fallback
	}
	if value, ok := b.Attrs[key].(bool); ok {
		return value
	}
	return fallback
}
