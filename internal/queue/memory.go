// Package queue holds the runtime adapters that feed delivery batches to
// the jobs consumer and apply its decisions to actual queue primitives.
// Adapters own delivery mechanics only; retry and dead-letter policy lives
// with the consumer.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-noteflow/internal/logging"
	"github.com/goliatone/go-noteflow/pkg/interfaces"
)

type memoryMessage struct {
	id          string
	body        []byte
	attempts    int
	availableAt time.Time
}

// MemoryQueue is an in-process queue with at-least-once semantics: a
// delivered message stays in the queue until the consumer's decision
// removes it. Used by tests and the embedded runtime.
type MemoryQueue struct {
	mu       sync.Mutex
	messages []*memoryMessage
	clock    func() time.Time
	nextID   func() string
	logger   interfaces.Logger
}

// MemoryOption configures a MemoryQueue instance.
type MemoryOption func(*MemoryQueue)

// WithMemoryClock injects the time source used for retry scheduling.
func WithMemoryClock(clock func() time.Time) MemoryOption {
	return func(q *MemoryQueue) {
		if clock != nil {
			q.clock = clock
		}
	}
}

// WithMemoryIDGenerator overrides message id generation, mainly for tests.
func WithMemoryIDGenerator(next func() string) MemoryOption {
	return func(q *MemoryQueue) {
		if next != nil {
			q.nextID = next
		}
	}
}

// WithMemoryLogger injects the adapter logger.
func WithMemoryLogger(logger interfaces.Logger) MemoryOption {
	return func(q *MemoryQueue) {
		if logger != nil {
			q.logger = logger
		}
	}
}

func NewMemoryQueue(opts ...MemoryOption) *MemoryQueue {
	q := &MemoryQueue{
		clock:  time.Now,
		nextID: uuid.NewString,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue adds a fresh message. Attempts start at zero; they count
// deliveries, not enqueues.
func (q *MemoryQueue) Enqueue(ctx context.Context, body []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	msg := &memoryMessage{
		id:          q.nextID(),
		body:        append([]byte(nil), body...),
		availableAt: q.clock(),
	}
	q.messages = append(q.messages, msg)
	return msg.id, nil
}

// Deliver hands one batch of due messages to the consumer and applies its
// decisions: ack and dead-letter remove the message, retry reschedules it
// after the decided delay with its attempt count preserved.
func (q *MemoryQueue) Deliver(ctx context.Context, consumer interfaces.BatchConsumer, batchSize int) (interfaces.BatchSummary, error) {
	if err := ctx.Err(); err != nil {
		return interfaces.BatchSummary{}, err
	}
	if batchSize < 1 {
		batchSize = 1
	}

	q.mu.Lock()
	now := q.clock()
	batch := make([]interfaces.Delivery, 0, batchSize)
	claimed := make(map[string]*memoryMessage, batchSize)
	for _, msg := range q.messages {
		if len(batch) == batchSize {
			break
		}
		if msg.availableAt.After(now) {
			continue
		}
		msg.attempts++
		claimed[msg.id] = msg
		batch = append(batch, interfaces.Delivery{
			MessageID: msg.id,
			Body:      append([]byte(nil), msg.body...),
			Attempts:  msg.attempts,
		})
	}
	q.mu.Unlock()

	if len(batch) == 0 {
		return interfaces.BatchSummary{}, nil
	}

	summary := consumer.ProcessBatch(ctx, batch)

	q.mu.Lock()
	defer q.mu.Unlock()
	for _, outcome := range summary.Outcomes {
		msg, ok := claimed[outcome.MessageID]
		if !ok {
			continue
		}
		switch outcome.Decision.Kind {
		case interfaces.DecisionAck, interfaces.DecisionDeadLetter:
			q.remove(msg.id)
		case interfaces.DecisionRetry:
			msg.availableAt = q.clock().Add(outcome.Decision.Delay)
			q.logger.Debug("message rescheduled",
				"message_id", msg.id,
				"attempts", msg.attempts,
				"delay", outcome.Decision.Delay.String(),
			)
		}
	}
	return summary, nil
}

// Size reports how many messages remain queued, due or not.
func (q *MemoryQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}

func (q *MemoryQueue) remove(id string) {
	for i, msg := range q.messages {
		if msg.id == id {
			q.messages = append(q.messages[:i], q.messages[i+1:]...)
			return
		}
	}
}
