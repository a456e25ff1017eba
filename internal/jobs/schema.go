package jobs

import (
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// envelopeSchema is the wire contract for queue message bodies. Producers
// own the payload; the consumer rejects bodies that cannot possibly be
// processed so they dead-letter instead of burning the retry budget.
const envelopeSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"title": "ConversionJob",
	"type": "object",
	"required": ["type", "noteId", "userId"],
	"properties": {
		"type": {
			"enum": ["convert-to-markdown", "index-for-search"]
		},
		"noteId": {"type": "string", "minLength": 1},
		"userId": {"type": "string", "minLength": 1},
		"content": {"type": "array"},
		"title": {"type": "string"},
		"metadata": {
			"type": "object",
			"required": ["tags", "created_at", "updated_at"],
			"properties": {
				"tags": {"type": "array", "items": {"type": "string"}},
				"folder": {"type": "string"},
				"created_at": {"type": "string"},
				"updated_at": {"type": "string"}
			}
		}
	}
}`

var compiledEnvelopeSchema = jsonschema.MustCompileString("conversion-job.json", envelopeSchema)

// ValidateEnvelope checks a raw message body against the wire schema. Any
// violation is a permanent failure.
func ValidateEnvelope(body []byte) error {
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return wrapEnvelopeError(err)
	}
	if err := compiledEnvelopeSchema.Validate(value); err != nil {
		return wrapEnvelopeError(err)
	}
	return nil
}
