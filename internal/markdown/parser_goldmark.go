package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// GoldmarkRenderer turns serialized Markdown back into HTML previews and
// plain text for the search indexer. WithUnsafe is required because the
// serializer emits raw <u> tags for underlined spans.
type GoldmarkRenderer struct {
	md goldmark.Markdown
}

// NewGoldmarkRenderer constructs a renderer with GFM extensions enabled so
// strikethrough, task lists, and tables round-trip.
func NewGoldmarkRenderer() *GoldmarkRenderer {
	return &GoldmarkRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Render converts Markdown to HTML.
func (r *GoldmarkRenderer) Render(source []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(source, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PlainText extracts the readable text from Markdown by walking the parsed
// tree. Formatting marks drop out; code block contents are preserved.
func (r *GoldmarkRenderer) PlainText(source []byte) string {
	doc := r.md.Parser().Parse(text.NewReader(source))

	var out strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				out.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					out.WriteByte('\n')
				}
			}
		case *ast.String:
			if entering {
				out.Write(node.Value)
			}
		case *ast.FencedCodeBlock:
			if entering {
				writeCodeLines(&out, source, node)
			}
		case *ast.CodeBlock:
			if entering {
				writeCodeLines(&out, source, node)
			}
		default:
			if !entering && n.Type() == ast.TypeBlock {
				out.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(out.String())
}

func writeCodeLines(out *strings.Builder, source []byte, block ast.Node) {
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		out.Write(segment.Value(source))
	}
}
