package markdown

import (
	"bytes"
	"strings"

	"github.com/adrg/frontmatter"
)

type frontMatterEnvelope struct {
	Title   string `yaml:"title"`
	Tags    string `yaml:"tags"`
	Folder  string `yaml:"folder"`
	Created string `yaml:"created"`
	Updated string `yaml:"updated"`
}

// ParseDocument splits a serialized note into its metadata header and
// Markdown body. Documents without a front matter header return nil metadata
// and the full content as the body.
func ParseDocument(raw []byte) (*NoteMetadata, string, error) {
	var envelope frontMatterEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(raw), &envelope)
	if err != nil {
		return nil, "", err
	}

	trimmed := string(bytes.TrimSpace(body))
	if envelope == (frontMatterEnvelope{}) {
		return nil, trimmed, nil
	}

	meta := &NoteMetadata{
		Title:     envelope.Title,
		Tags:      splitTags(envelope.Tags),
		Folder:    envelope.Folder,
		CreatedAt: envelope.Created,
		UpdatedAt: envelope.Updated,
	}
	return meta, trimmed, nil
}

func splitTags(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
