package markdown_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/goliatone/go-noteflow/internal/blocks"
	"github.com/goliatone/go-noteflow/internal/markdown"
)

func textNode(text string) blocks.InlineNode {
	return blocks.InlineNode{Kind: blocks.InlineKindText, Text: text}
}

func styledNode(text string, attrs blocks.InlineAttrs) blocks.InlineNode {
	return blocks.InlineNode{Kind: blocks.InlineKindText, Text: text, Attrs: attrs}
}

func simpleBlock(kind, text string) blocks.Block {
	return blocks.Block{Kind: kind, Content: []blocks.InlineNode{textNode(text)}}
}

func TestConvertDocumentEmpty(t *testing.T) {
	if got := markdown.ConvertDocument(nil, nil); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
	if got := markdown.ConvertDocument([]blocks.Block{}, nil); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestConvertDocumentHeadings(t *testing.T) {
	doc := []blocks.Block{
		{Kind: blocks.KindHeading, Attrs: map[string]any{"level": float64(1)}, Content: []blocks.InlineNode{textNode("Main Title")}},
		{Kind: blocks.KindHeading, Attrs: map[string]any{"level": float64(2)}, Content: []blocks.InlineNode{textNode("Subtitle")}},
	}

	want := "# Main Title\n\n## Subtitle"
	if got := markdown.ConvertDocument(doc, nil); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestConvertDocumentHeadingLevelDefaultsToOne(t *testing.T) {
	doc := []blocks.Block{simpleBlock(blocks.KindHeading, "Untitled")}
	if got := markdown.ConvertDocument(doc, nil); got != "# Untitled" {
		t.Fatalf("expected default level 1, got %q", got)
	}
}

func TestConvertDocumentBulletList(t *testing.T) {
	doc := []blocks.Block{
		simpleBlock(blocks.KindBulletListItem, "First item"),
		simpleBlock(blocks.KindBulletListItem, "Second item"),
	}

	want := "- First item\n- Second item"
	if got := markdown.ConvertDocument(doc, nil); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestConvertDocumentNumberedListKeepsLiteralOrdinal(t *testing.T) {
	doc := []blocks.Block{
		simpleBlock(blocks.KindNumberedListItem, "A"),
		simpleBlock(blocks.KindNumberedListItem, "B"),
	}

	want := "1. A\n1. B"
	if got := markdown.ConvertDocument(doc, nil); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestConvertDocumentCheckList(t *testing.T) {
	doc := []blocks.Block{
		{Kind: blocks.KindCheckListItem, Attrs: map[string]any{"checked": true}, Content: []blocks.InlineNode{textNode("Done")}},
		{Kind: blocks.KindCheckListItem, Attrs: map[string]any{"checked": false}, Content: []blocks.InlineNode{textNode("Todo")}},
	}

	want := "- [x] Done\n- [ ] Todo"
	if got := markdown.ConvertDocument(doc, nil); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestConvertDocumentCodeBlock(t *testing.T) {
	doc := []blocks.Block{
		{Kind: blocks.KindCodeBlock, Attrs: map[string]any{"language": "javascript"}, Content: []blocks.InlineNode{textNode("console.log(1);")}},
	}

	want := "```javascript\nconsole.log(1);\n```"
	if got := markdown.ConvertDocument(doc, nil); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestConvertDocumentCodeBlockWithoutLanguage(t *testing.T) {
	doc := []blocks.Block{simpleBlock(blocks.KindCodeBlock, "x")}

	want := "```\nx\n```"
	if got := markdown.ConvertDocument(doc, nil); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestConvertDocumentBlockquoteAndImage(t *testing.T) {
	doc := []blocks.Block{
		simpleBlock(blocks.KindBlockquote, "quoted"),
		{Kind: blocks.KindImage, Attrs: map[string]any{"alt": "diagram", "src": "https://img.example/d.png"}},
		{Kind: blocks.KindImage, Attrs: map[string]any{"url": "https://img.example/n.png"}},
	}

	want := "> quoted\n\n![diagram](https://img.example/d.png)\n\n![](https://img.example/n.png)"
	if got := markdown.ConvertDocument(doc, nil); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestConvertDocumentTablePlaceholder(t *testing.T) {
	doc := []blocks.Block{{Kind: blocks.KindTable}}

	want := "| Column 1 | Column 2 |\n| --- | --- |\n| Data | Data |"
	if got := markdown.ConvertDocument(doc, nil); got != want {
		t.Fatalf("expected placeholder table, got %q", got)
	}
}

func TestInlineMarkLayering(t *testing.T) {
	cases := []struct {
		name  string
		attrs blocks.InlineAttrs
		want  string
	}{
		{"bold", blocks.InlineAttrs{Bold: true}, "**text**"},
		{"italic", blocks.InlineAttrs{Italic: true}, "*text*"},
		{"bold italic", blocks.InlineAttrs{Bold: true, Italic: true}, "***text***"},
		{"strikethrough", blocks.InlineAttrs{Strikethrough: true}, "~~text~~"},
		{"code", blocks.InlineAttrs{Code: true}, "`text`"},
		{"underline", blocks.InlineAttrs{Underline: true}, "<u>text</u>"},
		{"bold strikethrough", blocks.InlineAttrs{Bold: true, Strikethrough: true}, "~~**text**~~"},
		{"bold italic code", blocks.InlineAttrs{Bold: true, Italic: true, Code: true}, "`***text***`"},
		{"everything", blocks.InlineAttrs{Bold: true, Italic: true, Strikethrough: true, Code: true, Underline: true}, "<u>`~~***text***~~`</u>"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := []blocks.Block{{
				Kind:    blocks.KindParagraph,
				Content: []blocks.InlineNode{styledNode("text", tc.attrs)},
			}}
			if got := markdown.ConvertDocument(doc, nil); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestLinkWithStyledLabel(t *testing.T) {
	doc := []blocks.Block{{
		Kind: blocks.KindParagraph,
		Content: []blocks.InlineNode{{
			Kind:    blocks.InlineKindLink,
			Href:    "https://x",
			Content: []blocks.InlineNode{styledNode("label", blocks.InlineAttrs{Bold: true})},
		}},
	}}

	want := "[**label**](https://x)"
	if got := markdown.ConvertDocument(doc, nil); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestUnknownBlockKindFlattens(t *testing.T) {
	doc := []blocks.Block{{
		Kind: "futureWidget",
		Content: []blocks.InlineNode{
			styledNode("plain ", blocks.InlineAttrs{Bold: true}),
			{Kind: "fancySpan", Content: []blocks.InlineNode{textNode("nested")}},
		},
	}}

	want := "plain nested"
	if got := markdown.ConvertDocument(doc, nil); got != want {
		t.Fatalf("expected flattened text %q, got %q", want, got)
	}
}

func TestEmptyInlineNodesContributeNothing(t *testing.T) {
	doc := []blocks.Block{{
		Kind: blocks.KindParagraph,
		Content: []blocks.InlineNode{
			textNode("before"),
			{Kind: "mention"},
			textNode(" after"),
		},
	}}

	if got := markdown.ConvertDocument(doc, nil); got != "before after" {
		t.Fatalf("expected empty nodes to be skipped, got %q", got)
	}
}

func TestConvertDocumentWithMetadata(t *testing.T) {
	meta := &markdown.NoteMetadata{
		Title:     "Weekly Plan",
		Tags:      []string{"work", "planning"},
		Folder:    "projects",
		CreatedAt: "2026-08-20T10:00:00Z",
		UpdatedAt: "2026-08-21T09:30:00Z",
	}
	doc := []blocks.Block{simpleBlock(blocks.KindParagraph, "body text")}

	want := strings.Join([]string{
		"---",
		"title: Weekly Plan",
		"tags: work, planning",
		"folder: projects",
		"created: 2026-08-20T10:00:00Z",
		"updated: 2026-08-21T09:30:00Z",
		"---",
		"",
		"body text",
	}, "\n")

	if got := markdown.ConvertDocument(doc, meta); got != want {
		t.Fatalf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestConvertDocumentMetadataOmitsEmptyTagsAndFolder(t *testing.T) {
	meta := &markdown.NoteMetadata{
		Title:     "Untagged",
		CreatedAt: "2026-08-20T10:00:00Z",
		UpdatedAt: "2026-08-20T10:00:00Z",
	}
	got := markdown.ConvertDocument([]blocks.Block{simpleBlock(blocks.KindParagraph, "x")}, meta)

	if strings.Contains(got, "tags:") {
		t.Fatalf("expected tags line to be omitted, got:\n%s", got)
	}
	if strings.Contains(got, "folder:") {
		t.Fatalf("expected folder line to be omitted, got:\n%s", got)
	}
}

func TestConvertDocumentIsDeterministic(t *testing.T) {
	doc := []blocks.Block{
		simpleBlock(blocks.KindHeading, "Title"),
		simpleBlock(blocks.KindParagraph, "body"),
		simpleBlock(blocks.KindBulletListItem, "item"),
	}

	first := markdown.ConvertDocument(doc, nil)
	for i := 0; i < 5; i++ {
		if got := markdown.ConvertDocument(doc, nil); got != first {
			t.Fatalf("conversion is not deterministic: %q vs %q", first, got)
		}
	}
}

func TestConvertDocumentLargeInputPreservesOrder(t *testing.T) {
	doc := make([]blocks.Block, 0, 1000)
	for i := 0; i < 1000; i++ {
		doc = append(doc, simpleBlock(blocks.KindParagraph, fmt.Sprintf("paragraph %d", i)))
	}

	got := markdown.ConvertDocument(doc, nil)
	lines := strings.Split(got, "\n\n")
	if len(lines) != 1000 {
		t.Fatalf("expected 1000 paragraphs, got %d", len(lines))
	}
	for i, line := range lines {
		if want := fmt.Sprintf("paragraph %d", i); line != want {
			t.Fatalf("paragraph %d out of order: got %q", i, line)
		}
	}
}
