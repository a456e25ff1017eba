package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-noteflow/internal/logging"
	"github.com/goliatone/go-noteflow/internal/markdown"
	"github.com/goliatone/go-noteflow/internal/notes"
	"github.com/goliatone/go-noteflow/internal/storage"
	"github.com/goliatone/go-noteflow/pkg/interfaces"
)

// Consumer processes batches of conversion jobs. Each delivery is handled
// as an independent unit of work: one message's failure never blocks the
// rest of the batch. The consumer only returns decisions; the queue adapter
// that invoked it applies them to the runtime primitives.
type Consumer struct {
	store    interfaces.ObjectStore
	policy   RetryPolicy
	clock    func() time.Time
	logger   interfaces.Logger
	indexer  interfaces.Indexer
	renderer *markdown.GoldmarkRenderer
	timeout  time.Duration

	convert *Handler[ConvertToMarkdownCommand]
	index   *Handler[IndexForSearchCommand]
}

var _ interfaces.BatchConsumer = (*Consumer)(nil)

// ConsumerOption configures a Consumer instance.
type ConsumerOption func(*Consumer)

// WithRetryPolicy overrides the default retry bounds, mainly for tests with
// injected clocks.
func WithRetryPolicy(policy RetryPolicy) ConsumerOption {
	return func(c *Consumer) {
		c.policy = policy.normalized()
	}
}

// WithClock injects the time source used for status updates and dead-letter
// timestamps.
func WithClock(clock func() time.Time) ConsumerOption {
	return func(c *Consumer) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithConsumerLogger injects the logger shared by the consumer and its
// handlers.
func WithConsumerLogger(logger interfaces.Logger) ConsumerOption {
	return func(c *Consumer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithIndexer wires the search collaborator used by index-for-search jobs.
// Without it those jobs fail permanently.
func WithIndexer(indexer interfaces.Indexer) ConsumerOption {
	return func(c *Consumer) {
		c.indexer = indexer
	}
}

// WithHandlerTimeout bounds a single job execution. Zero disables the bound.
func WithHandlerTimeout(timeout time.Duration) ConsumerOption {
	return func(c *Consumer) {
		c.timeout = timeout
	}
}

// NewConsumer wires the conversion pipeline around a durable store and a
// relational status writer.
func NewConsumer(store interfaces.ObjectStore, status notes.StatusWriter, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		store:   store,
		policy:  DefaultRetryPolicy(),
		clock:   time.Now,
		logger:  logging.NoOp(),
		timeout: defaultHandlerTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.renderer == nil {
		c.renderer = markdown.NewGoldmarkRenderer()
	}

	c.convert = NewConvertToMarkdownHandler(store, status, c.clock,
		WithOperation[ConvertToMarkdownCommand]("convert_to_markdown"),
		WithHandlerLogger[ConvertToMarkdownCommand](c.logger),
		WithTimeout[ConvertToMarkdownCommand](c.timeout),
	)
	c.index = NewIndexForSearchHandler(store, c.indexer, c.renderer,
		WithOperation[IndexForSearchCommand]("index_for_search"),
		WithHandlerLogger[IndexForSearchCommand](c.logger),
		WithTimeout[IndexForSearchCommand](c.timeout),
	)
	return c
}

// ProcessBatch handles up to the adapter's batch size of deliveries
// concurrently and reports per-message outcomes plus success/failure
// counts. A message counts as succeeded only when its processing succeeded;
// retried and dead-lettered messages count as failed.
func (c *Consumer) ProcessBatch(ctx context.Context, batch []interfaces.Delivery) interfaces.BatchSummary {
	outcomes := make([]interfaces.DeliveryOutcome, len(batch))

	var wg sync.WaitGroup
	for i := range batch {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = c.processDelivery(ctx, batch[i])
		}(i)
	}
	wg.Wait()

	summary := interfaces.BatchSummary{Outcomes: outcomes}
	for _, outcome := range outcomes {
		if outcome.Err == nil {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}
	return summary
}

func (c *Consumer) processDelivery(ctx context.Context, delivery interfaces.Delivery) interfaces.DeliveryOutcome {
	logger := logging.WithMessageID(c.logger, delivery.MessageID)

	err := c.handle(ctx, delivery, logger)
	decision := Decide(delivery.Attempts, c.policy, err)

	switch decision.Kind {
	case interfaces.DecisionAck:
		logger.Debug("message acknowledged")
	case interfaces.DecisionRetry:
		logger.Warn("message scheduled for retry",
			"attempt", delivery.Attempts,
			"delay", decision.Delay.String(),
			"error", err,
		)
	case interfaces.DecisionDeadLetter:
		logger.Error("message dead-lettered", "attempts", delivery.Attempts, "error", err)
		c.archive(ctx, delivery, err, logger)
	}

	return interfaces.DeliveryOutcome{
		MessageID: delivery.MessageID,
		Decision:  decision,
		Err:       err,
	}
}

func (c *Consumer) handle(ctx context.Context, delivery interfaces.Delivery, logger interfaces.Logger) error {
	if err := ValidateEnvelope(delivery.Body); err != nil {
		return err
	}
	job, err := ParseJob(delivery.Body)
	if err != nil {
		return err
	}

	logger = logging.WithJobContext(logger, job.Type, job.NoteID, job.UserID)
	logger.Debug("job received", "attempt", delivery.Attempts)

	switch job.Type {
	case JobTypeConvertToMarkdown:
		cmd, err := job.ConvertCommand()
		if err != nil {
			return err
		}
		return c.convert.Execute(ctx, cmd)
	case JobTypeIndexForSearch:
		cmd, err := job.IndexCommand()
		if err != nil {
			return err
		}
		return c.index.Execute(ctx, cmd)
	default:
		// Unreachable once the envelope passed schema validation; kept so a
		// schema change cannot silently drop messages.
		return fmt.Errorf("%w: %q", ErrUnknownJobType, job.Type)
	}
}

// archive writes the dead-letter record. Failures here are logged and
// swallowed: the message is acknowledged regardless, otherwise it would
// redeliver forever with archival as its only remaining action.
func (c *Consumer) archive(ctx context.Context, delivery interfaces.Delivery, cause error, logger interfaces.Logger) {
	failedAt := c.clock()
	record := NewDeadLetterRecord(delivery.MessageID, delivery.Body, delivery.Attempts, failedAt, cause)

	payload, err := record.Marshal()
	if err != nil {
		logger.Error("dead-letter record marshal failed", "error", err)
		return
	}

	key := storage.DeadLetterKey(failedAt, delivery.MessageID)
	if err := c.store.Put(ctx, key, payload, "application/json"); err != nil {
		logger.Error("dead-letter archive failed", "key", key, "error", err)
	}
}
