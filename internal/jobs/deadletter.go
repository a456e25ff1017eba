package jobs

import (
	"encoding/json"
	"fmt"
	"time"
)

// DeadLetterRecord is the archived snapshot of a message whose retry budget
// was exhausted. Written exactly once per permanently failed message, right
// before the final acknowledgement.
type DeadLetterRecord struct {
	MessageID    string          `json:"messageId"`
	OriginalJob  json.RawMessage `json:"originalJob"`
	ErrorMessage string          `json:"errorMessage"`
	ErrorStack   string          `json:"errorStack,omitempty"`
	Attempts     int             `json:"attempts"`
	Timestamp    string          `json:"timestamp"`
}

// NewDeadLetterRecord snapshots a failed delivery. The original body is
// embedded verbatim when it is valid JSON, otherwise as a JSON string so
// the archive stays parseable.
func NewDeadLetterRecord(messageID string, body []byte, attempts int, failedAt time.Time, cause error) DeadLetterRecord {
	record := DeadLetterRecord{
		MessageID: messageID,
		Attempts:  attempts,
		Timestamp: failedAt.UTC().Format(time.RFC3339Nano),
	}

	if json.Valid(body) {
		record.OriginalJob = json.RawMessage(append([]byte(nil), body...))
	} else if quoted, err := json.Marshal(string(body)); err == nil {
		record.OriginalJob = quoted
	}

	if cause != nil {
		record.ErrorMessage = cause.Error()
		if detailed := fmt.Sprintf("%+v", cause); detailed != record.ErrorMessage {
			record.ErrorStack = detailed
		}
	}

	return record
}

// Marshal renders the record for archival.
func (r DeadLetterRecord) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
