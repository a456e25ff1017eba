package markdown

import (
	"strings"

	"github.com/goliatone/go-noteflow/internal/blocks"
)

// NoteMetadata is the optional document header rendered as YAML front matter
// ahead of the Markdown body. Timestamps are carried as preformatted strings;
// the serializer does not reinterpret them.
type NoteMetadata struct {
	Title     string
	Tags      []string
	Folder    string
	CreatedAt string
	UpdatedAt string
}

// ConvertDocument renders a block document as Markdown. When metadata is
// supplied the output starts with a front matter header. The result is
// trimmed; an empty document yields the empty string.
func ConvertDocument(doc []blocks.Block, meta *NoteMetadata) string {
	var out strings.Builder

	if meta != nil {
		writeFrontMatter(&out, meta)
	}

	previousWasListItem := false
	wroteBlock := false
	for _, block := range doc {
		rendered := convertBlock(block)
		if rendered == "" {
			continue
		}

		if wroteBlock {
			// Consecutive list items stay tight; everything else gets a
			// blank line between blocks.
			if previousWasListItem && isListItem(block.Kind) {
				out.WriteString("\n")
			} else {
				out.WriteString("\n\n")
			}
		}

		out.WriteString(rendered)
		previousWasListItem = isListItem(block.Kind)
		wroteBlock = true
	}

	return strings.TrimSpace(out.String())
}

func isListItem(kind string) bool {
	switch kind {
	case blocks.KindBulletListItem, blocks.KindNumberedListItem, blocks.KindCheckListItem:
		return true
	}
	return false
}

func convertBlock(block blocks.Block) string {
	switch block.Kind {
	case blocks.KindHeading:
		level := block.IntAttr("level", 1)
		if level < 1 {
			level = 1
		}
		return strings.Repeat("#", level) + " " + convertInlineContent(block.Content)

	case blocks.KindParagraph:
		return convertInlineContent(block.Content)

	case blocks.KindBulletListItem:
		return "- " + convertInlineContent(block.Content)

	case blocks.KindNumberedListItem:
		// Every item emits the literal "1." and relies on the downstream
		// renderer to number the list. Do not auto-increment.
		return "1. " + convertInlineContent(block.Content)

	case blocks.KindCheckListItem:
		if block.BoolAttr("checked", false) {
			return "- [x] " + convertInlineContent(block.Content)
		}
		return "- [ ] " + convertInlineContent(block.Content)

	case blocks.KindCodeBlock:
		language := block.StringAttr("language", "")
		return "```" + language + "\n" + flattenText(block.Content) + "\n```"

	case blocks.KindBlockquote:
		return "> " + convertInlineContent(block.Content)

	case blocks.KindImage:
		alt := block.StringAttr("alt", "")
		src := block.StringAttr("src", block.StringAttr("url", ""))
		return "![" + alt + "](" + src + ")"

	case blocks.KindTable:
		// Placeholder rendering: cell contents are not walked yet.
		return "| Column 1 | Column 2 |\n| --- | --- |\n| Data | Data |"

	default:
		// Unknown kinds flatten to plain text so documents produced by a
		// newer editor still convert.
		return flattenText(block.Content)
	}
}

// convertInlineContent renders text and link nodes. Formatting marks layer in
// a fixed order: bold/italic innermost, then strikethrough, then code, then
// underline. Reordering the layers changes output for multi-mark nodes.
func convertInlineContent(nodes []blocks.InlineNode) string {
	var out strings.Builder

	for _, node := range nodes {
		if node.Kind == blocks.InlineKindLink {
			out.WriteString("[" + convertInlineContent(node.Content) + "](" + node.Href + ")")
			continue
		}

		if node.Text != "" {
			out.WriteString(applyMarks(node.Text, node.Attrs))
			continue
		}

		// Unrecognized nodes contribute their nested content, if any.
		if len(node.Content) > 0 {
			out.WriteString(convertInlineContent(node.Content))
		}
	}

	return out.String()
}

func applyMarks(text string, attrs blocks.InlineAttrs) string {
	switch {
	case attrs.Bold && attrs.Italic:
		text = "***" + text + "***"
	case attrs.Bold:
		text = "**" + text + "**"
	case attrs.Italic:
		text = "*" + text + "*"
	}
	if attrs.Strikethrough {
		text = "~~" + text + "~~"
	}
	if attrs.Code {
		text = "`" + text + "`"
	}
	if attrs.Underline {
		text = "<u>" + text + "</u>"
	}
	return text
}

// flattenText extracts raw text with no formatting marks. Used for code
// blocks and for the unknown-kind fallback.
func flattenText(nodes []blocks.InlineNode) string {
	var out strings.Builder
	for _, node := range nodes {
		if node.Text != "" {
			out.WriteString(node.Text)
			continue
		}
		if len(node.Content) > 0 {
			out.WriteString(flattenText(node.Content))
		}
	}
	return out.String()
}

func writeFrontMatter(out *strings.Builder, meta *NoteMetadata) {
	out.WriteString("---\n")
	out.WriteString("title: " + meta.Title + "\n")
	if len(meta.Tags) > 0 {
		out.WriteString("tags: " + strings.Join(meta.Tags, ", ") + "\n")
	}
	if meta.Folder != "" {
		out.WriteString("folder: " + meta.Folder + "\n")
	}
	out.WriteString("created: " + meta.CreatedAt + "\n")
	out.WriteString("updated: " + meta.UpdatedAt + "\n")
	out.WriteString("---\n\n")
}
