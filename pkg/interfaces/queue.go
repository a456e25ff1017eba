package interfaces

import (
	"context"
	"time"
)

// Delivery represents one at-least-once delivery of a queued message. The
// queue runtime owns the attempt counter: it starts at 1 on the first
// delivery, increases on every redelivery, and resets only when a message is
// enqueued fresh.
type Delivery struct {
	MessageID string
	Body      []byte
	Attempts  int
}

// DecisionKind enumerates the terminal verdicts the consumer can reach for a
// single delivery.
type DecisionKind string

const (
	// DecisionAck acknowledges the message; it will not be delivered again.
	DecisionAck DecisionKind = "ack"
	// DecisionRetry leaves the message unacknowledged so the runtime
	// redelivers it after Delay.
	DecisionRetry DecisionKind = "retry"
	// DecisionDeadLetter acknowledges the message after its dead-letter
	// record has been archived. From the runtime's perspective it behaves
	// like an ack; the kind is kept distinct for observability.
	DecisionDeadLetter DecisionKind = "dead_letter"
)

// Decision instructs the queue runtime what to do with a processed delivery.
type Decision struct {
	Kind  DecisionKind
	Delay time.Duration
}

// DeliveryOutcome pairs a delivery with the decision the consumer reached
// and, for failures, the error that drove it.
type DeliveryOutcome struct {
	MessageID string
	Decision  Decision
	Err       error
}

// BatchSummary reports per-message outcomes plus aggregate counts. A batch
// never succeeds or fails as a whole; callers inspect the counts.
type BatchSummary struct {
	Succeeded int
	Failed    int
	Outcomes  []DeliveryOutcome
}

// BatchConsumer processes a batch of deliveries as independent units of
// work. Implementations must not let one delivery's failure short-circuit
// the rest of the batch.
type BatchConsumer interface {
	ProcessBatch(ctx context.Context, batch []Delivery) BatchSummary
}
