// Package markdown converts block documents into canonical Markdown and
// provides the front matter and rendering helpers built on top of that
// output. The serializer is pure and total: it never fails, it degrades
// gracefully on unknown block kinds, and identical input always produces
// identical output.
package markdown
