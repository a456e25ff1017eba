package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-noteflow/internal/jobs"
	"github.com/goliatone/go-noteflow/internal/notes"
	"github.com/goliatone/go-noteflow/internal/queue"
	"github.com/goliatone/go-noteflow/internal/storage"
	"github.com/goliatone/go-noteflow/pkg/interfaces"
)

type harness struct {
	queue  *queue.MemoryQueue
	store  *storage.MemoryStore
	status *notes.MemoryStatusWriter
	now    time.Time
}

func newHarness(t *testing.T) (*harness, *jobs.Consumer) {
	t.Helper()

	h := &harness{
		store:  storage.NewMemoryStore(),
		status: notes.NewMemoryStatusWriter(),
		now:    time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return h.now }
	h.queue = queue.NewMemoryQueue(queue.WithMemoryClock(clock))

	consumer := jobs.NewConsumer(h.store, h.status, jobs.WithClock(clock))
	return h, consumer
}

func (h *harness) advance(d time.Duration) {
	h.now = h.now.Add(d)
}

func convertJobBody(t *testing.T) []byte {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"type":   jobs.JobTypeConvertToMarkdown,
		"noteId": uuid.NewString(),
		"userId": uuid.NewString(),
		"content": []map[string]any{
			{"type": "paragraph", "content": []map[string]any{{"type": "text", "text": "queued"}}},
		},
	})
	if err != nil {
		t.Fatalf("marshal job: %v", err)
	}
	return body
}

func TestMemoryQueueAcksSuccessfulMessage(t *testing.T) {
	ctx := context.Background()
	h, consumer := newHarness(t)

	if _, err := h.queue.Enqueue(ctx, convertJobBody(t)); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	summary, err := h.queue.Deliver(ctx, consumer, 10)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if summary.Succeeded != 1 {
		t.Fatalf("expected one success, got %+v", summary)
	}
	if h.queue.Size() != 0 {
		t.Fatalf("expected acked message to leave the queue, got %d remaining", h.queue.Size())
	}
}

func TestMemoryQueueHonorsRetryDelay(t *testing.T) {
	ctx := context.Background()
	h, consumer := newHarness(t)
	h.store.Fail(errors.New("store down"))

	if _, err := h.queue.Enqueue(ctx, convertJobBody(t)); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	summary, err := h.queue.Deliver(ctx, consumer, 10)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if summary.Failed != 1 {
		t.Fatalf("expected first delivery to fail, got %+v", summary)
	}
	if h.queue.Size() != 1 {
		t.Fatal("expected retried message to stay queued")
	}

	// Not due yet: no redelivery before the backoff elapses.
	summary, err = h.queue.Deliver(ctx, consumer, 10)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(summary.Outcomes) != 0 {
		t.Fatalf("expected no due messages, got %d", len(summary.Outcomes))
	}

	h.advance(time.Second)
	h.store.Fail(nil)

	summary, err = h.queue.Deliver(ctx, consumer, 10)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if summary.Succeeded != 1 {
		t.Fatalf("expected redelivery to succeed, got %+v", summary)
	}
	if len(summary.Outcomes) != 1 || summary.Outcomes[0].Decision.Kind != interfaces.DecisionAck {
		t.Fatalf("expected ack on second attempt, got %+v", summary.Outcomes)
	}
	if h.queue.Size() != 0 {
		t.Fatal("expected queue to drain after success")
	}
}

func TestMemoryQueueDeadLettersAndDrains(t *testing.T) {
	ctx := context.Background()
	h, consumer := newHarness(t)
	h.store.Fail(errors.New("store down for good"))

	if _, err := h.queue.Enqueue(ctx, convertJobBody(t)); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	kinds := []interfaces.DecisionKind{}
	for i := 0; i < 3; i++ {
		summary, err := h.queue.Deliver(ctx, consumer, 10)
		if err != nil {
			t.Fatalf("deliver %d: %v", i+1, err)
		}
		if len(summary.Outcomes) != 1 {
			t.Fatalf("deliver %d: expected one outcome, got %d", i+1, len(summary.Outcomes))
		}
		kinds = append(kinds, summary.Outcomes[0].Decision.Kind)
		h.advance(summary.Outcomes[0].Decision.Delay)
	}

	want := []interfaces.DecisionKind{interfaces.DecisionRetry, interfaces.DecisionRetry, interfaces.DecisionDeadLetter}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("delivery %d: expected %q, got %q", i+1, want[i], kinds[i])
		}
	}
	if h.queue.Size() != 0 {
		t.Fatal("expected dead-lettered message to leave the queue")
	}

	// Dead-letter archive writes go to the store: the failure above blocks
	// them too, which the consumer swallows. Verify no markdown landed.
	for _, key := range h.store.Keys() {
		if strings.HasPrefix(key, "users/") {
			t.Fatalf("expected no markdown writes, found %s", key)
		}
	}
}

func TestMemoryQueueBatchSizeBound(t *testing.T) {
	ctx := context.Background()
	h, consumer := newHarness(t)

	for i := 0; i < 5; i++ {
		if _, err := h.queue.Enqueue(ctx, convertJobBody(t)); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}

	summary, err := h.queue.Deliver(ctx, consumer, 2)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(summary.Outcomes) != 2 {
		t.Fatalf("expected batch of 2, got %d", len(summary.Outcomes))
	}
	if h.queue.Size() != 3 {
		t.Fatalf("expected 3 messages left, got %d", h.queue.Size())
	}
}

func TestMemoryQueueAttemptsResetOnFreshEnqueue(t *testing.T) {
	ctx := context.Background()
	h, consumer := newHarness(t)
	h.store.Fail(errors.New("down"))

	if _, err := h.queue.Enqueue(ctx, convertJobBody(t)); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if _, err := h.queue.Deliver(ctx, consumer, 10); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	// A fresh enqueue of the same payload is a new message with its own
	// attempt counter.
	body := convertJobBody(t)
	if _, err := h.queue.Enqueue(ctx, body); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	summary, err := h.queue.Deliver(ctx, consumer, 10)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(summary.Outcomes) != 1 {
		t.Fatalf("expected only the fresh message to be due, got %d", len(summary.Outcomes))
	}
	if summary.Outcomes[0].Decision.Kind != interfaces.DecisionRetry {
		t.Fatalf("expected first-attempt retry, got %q", summary.Outcomes[0].Decision.Kind)
	}
	if summary.Outcomes[0].Decision.Delay != time.Second {
		t.Fatalf("expected first-attempt delay 1s, got %v", summary.Outcomes[0].Decision.Delay)
	}
}
