// Package noteflow converts rich-text note documents into canonical
// Markdown through an asynchronous, at-least-once queue pipeline. This
// facade wires the in-memory adapters for embedded use and tests; the
// worker binary under cmd/worker wires the durable ones.
package noteflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/goliatone/go-noteflow/internal/jobs"
	"github.com/goliatone/go-noteflow/internal/logging"
	"github.com/goliatone/go-noteflow/internal/notes"
	"github.com/goliatone/go-noteflow/internal/queue"
	"github.com/goliatone/go-noteflow/internal/search"
	"github.com/goliatone/go-noteflow/internal/storage"
	"github.com/goliatone/go-noteflow/pkg/interfaces"
)

// Re-exported job surface so hosts do not import internal packages.
type (
	ConversionJob = jobs.ConversionJob
	JobMetadata   = jobs.JobMetadata
)

const (
	JobTypeConvertToMarkdown = jobs.JobTypeConvertToMarkdown
	JobTypeIndexForSearch    = jobs.JobTypeIndexForSearch
)

const drainIdleWait = 50 * time.Millisecond

// Pipeline is the embedded, fully in-process form of the conversion
// pipeline: an in-memory queue, object store, status writer, and indexer
// wired to the batch consumer.
type Pipeline struct {
	cfg      Config
	queue    *queue.MemoryQueue
	consumer *jobs.Consumer
	store    *storage.MemoryStore
	status   *notes.MemoryStatusWriter
	indexer  *search.MemoryIndexer
	clock    func() time.Time

	queueOpts    []queue.MemoryOption
	consumerOpts []jobs.ConsumerOption
}

// Option configures a Pipeline instance.
type Option func(*Pipeline)

// WithLoggerProvider wires structured logging through the pipeline modules.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(p *Pipeline) {
		if provider != nil {
			p.consumerOpts = append(p.consumerOpts,
				jobs.WithConsumerLogger(logging.ConsumerLogger(provider)))
			p.queueOpts = append(p.queueOpts,
				queue.WithMemoryLogger(logging.QueueLogger(provider)))
		}
	}
}

// WithPipelineClock injects the time source, mainly for deterministic
// tests.
func WithPipelineClock(clock func() time.Time) Option {
	return func(p *Pipeline) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// New builds an embedded pipeline from cfg. Only the retry and batch-size
// settings apply; the embedded form always uses the in-memory adapters.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:     cfg,
		store:   storage.NewMemoryStore(),
		status:  notes.NewMemoryStatusWriter(),
		indexer: search.NewMemoryIndexer(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.queueOpts = append(p.queueOpts, queue.WithMemoryClock(p.clock))
	p.queue = queue.NewMemoryQueue(p.queueOpts...)

	p.consumerOpts = append(p.consumerOpts,
		jobs.WithClock(p.clock),
		jobs.WithIndexer(p.indexer),
		jobs.WithRetryPolicy(jobs.RetryPolicy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BackoffBase: cfg.Retry.BackoffBase,
		}),
	)
	p.consumer = jobs.NewConsumer(p.store, p.status, p.consumerOpts...)
	return p, nil
}

// Enqueue adds one conversion job to the queue and returns its message id.
func (p *Pipeline) Enqueue(ctx context.Context, job ConversionJob) (string, error) {
	body, err := json.Marshal(job)
	if err != nil {
		return "", err
	}
	return p.queue.Enqueue(ctx, body)
}

// ProcessOnce delivers a single batch to the consumer.
func (p *Pipeline) ProcessOnce(ctx context.Context) (interfaces.BatchSummary, error) {
	return p.queue.Deliver(ctx, p.consumer, p.cfg.Queue.BatchSize)
}

// Drain processes batches until the queue is empty or the context ends.
// Messages parked on a retry delay are waited out.
func (p *Pipeline) Drain(ctx context.Context) error {
	for p.queue.Size() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		summary, err := p.ProcessOnce(ctx)
		if err != nil {
			return err
		}
		if len(summary.Outcomes) == 0 {
			// Everything left is waiting on backoff.
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(drainIdleWait):
			}
		}
	}
	return nil
}

// Markdown reads the converted output for a note, if present.
func (p *Pipeline) Markdown(ctx context.Context, userID, noteID string) ([]byte, error) {
	return p.store.Get(ctx, storage.NoteContentKey(userID, noteID))
}

// Store exposes the in-memory object store for host inspection.
func (p *Pipeline) Store() *storage.MemoryStore { return p.store }

// Status exposes the in-memory status writer for host inspection.
func (p *Pipeline) Status() *notes.MemoryStatusWriter { return p.status }

// Indexer exposes the in-memory search indexer for host inspection.
func (p *Pipeline) Indexer() *search.MemoryIndexer { return p.indexer }
