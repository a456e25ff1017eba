package storage

import (
	"fmt"
	"time"
)

// NoteContentKey is the durable-store location of a note's serialized
// Markdown. Keys are namespaced per user so concurrent writes for different
// notes never collide.
func NoteContentKey(userID, noteID string) string {
	return fmt.Sprintf("users/%s/notes/%s/content.md", userID, noteID)
}

// DeadLetterKey is the archive location for a permanently failed message.
// The millisecond prefix keeps records sortable by failure time.
func DeadLetterKey(failedAt time.Time, messageID string) string {
	return fmt.Sprintf("dead-letter-queue/%d-%s.json", failedAt.UnixMilli(), messageID)
}
