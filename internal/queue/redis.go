package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-noteflow/internal/logging"
	"github.com/goliatone/go-noteflow/pkg/interfaces"
)

const (
	defaultStream         = "notes:jobs"
	defaultGroup          = "notes:converters"
	defaultBlockInterval  = 5 * time.Second
	retryPumpInterval     = time.Second
	defaultReclaimMinIdle = time.Minute
)

// RedisConfig selects the stream and consumer-group coordinates for a
// Redis-backed queue.
type RedisConfig struct {
	Addr     string
	DB       int
	Stream   string
	Group    string
	Consumer string
}

// RedisQueue adapts Redis Streams to the batch consumer contract. Messages
// enter through XADD, deliveries come from XREADGROUP, and retries park in
// a sorted set scored by their due time until the retry pump moves them
// back onto the stream. Attempt counts live in a hash keyed by the stable
// message id so they survive the retry round trip. Deliveries abandoned in
// the pending list, say by a crashed worker, are reclaimed by the retry
// pump after a minimum idle time.
type RedisQueue struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
	retrySet string
	attempts string
	clock    func() time.Time
	logger   interfaces.Logger
	block    time.Duration
	minIdle  time.Duration
}

// RedisOption configures a RedisQueue instance.
type RedisOption func(*RedisQueue)

// WithRedisClock injects the time source used for retry scheduling.
func WithRedisClock(clock func() time.Time) RedisOption {
	return func(q *RedisQueue) {
		if clock != nil {
			q.clock = clock
		}
	}
}

// WithRedisLogger injects the adapter logger.
func WithRedisLogger(logger interfaces.Logger) RedisOption {
	return func(q *RedisQueue) {
		if logger != nil {
			q.logger = logger
		}
	}
}

// WithBlockInterval bounds how long a Consume call blocks waiting for
// messages.
func WithBlockInterval(block time.Duration) RedisOption {
	return func(q *RedisQueue) {
		if block > 0 {
			q.block = block
		}
	}
}

// WithReclaimMinIdle sets how long an unacknowledged delivery must sit in
// the pending list before the retry pump reclaims it. Keep it comfortably
// above the handler timeout or in-flight deliveries get duplicated.
func WithReclaimMinIdle(minIdle time.Duration) RedisOption {
	return func(q *RedisQueue) {
		if minIdle > 0 {
			q.minIdle = minIdle
		}
	}
}

// NewRedisQueue connects to Redis and ensures the stream and consumer
// group exist.
func NewRedisQueue(cfg RedisConfig, opts ...RedisOption) (*RedisQueue, error) {
	if cfg.Stream == "" {
		cfg.Stream = defaultStream
	}
	if cfg.Group == "" {
		cfg.Group = defaultGroup
	}
	if cfg.Consumer == "" {
		cfg.Consumer = "consumer-" + uuid.NewString()
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("queue: redis connect: %w", err)
	}
	if err := client.XGroupCreateMkStream(ctx, cfg.Stream, cfg.Group, "$").Err(); err != nil &&
		!strings.Contains(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("queue: create consumer group: %w", err)
	}

	q := &RedisQueue{
		client:   client,
		stream:   cfg.Stream,
		group:    cfg.Group,
		consumer: cfg.Consumer,
		retrySet: cfg.Stream + ":retry",
		attempts: cfg.Stream + ":attempts",
		clock:    time.Now,
		logger:   logging.NoOp(),
		block:    defaultBlockInterval,
		minIdle:  defaultReclaimMinIdle,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

// retryEnvelope is the parked form of a message awaiting redelivery.
type retryEnvelope struct {
	MessageID string          `json:"messageId"`
	Body      json.RawMessage `json:"body"`
}

// Enqueue adds a fresh message to the stream. The generated id is the
// stable identity across retries; attempts for it start from zero.
func (q *RedisQueue) Enqueue(ctx context.Context, body []byte) (string, error) {
	id := uuid.NewString()
	if err := q.addToStream(ctx, id, body); err != nil {
		return "", err
	}
	return id, nil
}

// Consume reads one batch from the consumer group, hands it to the
// consumer, and applies the decisions. Every stream entry is acknowledged:
// retries re-enter as parked copies, so the original entry never lingers in
// the pending list.
func (q *RedisQueue) Consume(ctx context.Context, consumer interfaces.BatchConsumer, batchSize int) (interfaces.BatchSummary, error) {
	if batchSize < 1 {
		batchSize = 1
	}

	entries, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.group,
		Consumer: q.consumer,
		Streams:  []string{q.stream, ">"},
		Count:    int64(batchSize),
		Block:    q.block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return interfaces.BatchSummary{}, nil
	}
	if err != nil {
		return interfaces.BatchSummary{}, fmt.Errorf("queue: read group: %w", err)
	}

	batch := make([]interfaces.Delivery, 0, batchSize)
	entryIDs := make(map[string]string, batchSize)
	for _, stream := range entries {
		for _, msg := range stream.Messages {
			id, body := streamEntry(msg)

			attempts, err := q.client.HIncrBy(ctx, q.attempts, id, 1).Result()
			if err != nil {
				q.logger.Error("attempt counter failed", "message_id", id, "error", err)
				attempts = 1
			}

			entryIDs[id] = msg.ID
			batch = append(batch, interfaces.Delivery{
				MessageID: id,
				Body:      body,
				Attempts:  int(attempts),
			})
		}
	}
	if len(batch) == 0 {
		return interfaces.BatchSummary{}, nil
	}

	summary := consumer.ProcessBatch(ctx, batch)

	for i, outcome := range summary.Outcomes {
		entryID := entryIDs[outcome.MessageID]
		switch outcome.Decision.Kind {
		case interfaces.DecisionAck, interfaces.DecisionDeadLetter:
			if err := q.client.HDel(ctx, q.attempts, outcome.MessageID).Err(); err != nil {
				q.logger.Error("attempt cleanup failed", "message_id", outcome.MessageID, "error", err)
			}
		case interfaces.DecisionRetry:
			if err := q.parkForRetry(ctx, batch[i], outcome.Decision.Delay); err != nil {
				// Leave the entry unacked; the reclaim pass picks it up from
				// the pending list once it has idled long enough.
				q.logger.Error("retry park failed", "message_id", outcome.MessageID, "error", err)
				continue
			}
		}
		if err := q.client.XAck(ctx, q.stream, q.group, entryID).Err(); err != nil {
			q.logger.Error("ack failed", "message_id", outcome.MessageID, "error", err)
		}
	}
	return summary, nil
}

func (q *RedisQueue) parkForRetry(ctx context.Context, delivery interfaces.Delivery, delay time.Duration) error {
	envelope, err := json.Marshal(retryEnvelope{
		MessageID: delivery.MessageID,
		Body:      json.RawMessage(delivery.Body),
	})
	if err != nil {
		return err
	}
	dueAt := q.clock().Add(delay).Unix()
	return q.client.ZAdd(ctx, q.retrySet, redis.Z{
		Score:  float64(dueAt),
		Member: string(envelope),
	}).Err()
}

// RunRetryPump moves due parked messages back onto the stream and reclaims
// deliveries abandoned in the pending list, until the context is cancelled.
// Run it once per deployment alongside the consumers.
func (q *RedisQueue) RunRetryPump(ctx context.Context) error {
	ticker := time.NewTicker(retryPumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := q.pumpDueRetries(ctx); err != nil {
				q.logger.Error("retry pump pass failed", "error", err)
			}
			if err := q.reclaimStale(ctx); err != nil {
				q.logger.Error("reclaim pass failed", "error", err)
			}
		}
	}
}

// reclaimStale re-injects deliveries stuck in the consumer group's pending
// list: a worker that crashed before acknowledging, or a retry whose park
// failed. Re-adding under the stable message id keeps the attempt counter,
// so the redelivery continues where the lost one stopped.
func (q *RedisQueue) reclaimStale(ctx context.Context) error {
	msgs, _, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   q.stream,
		Group:    q.group,
		Consumer: q.consumer,
		MinIdle:  q.minIdle,
		Start:    "0-0",
		Count:    100,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	for _, msg := range msgs {
		id, body := streamEntry(msg)
		if len(body) == 0 {
			q.logger.Error("dropping pending entry without body", "entry_id", msg.ID)
		} else if err := q.addToStream(ctx, id, body); err != nil {
			q.logger.Error("reclaim release failed", "message_id", id, "error", err)
			continue
		}
		if err := q.client.XAck(ctx, q.stream, q.group, msg.ID).Err(); err != nil {
			q.logger.Error("reclaim ack failed", "message_id", id, "error", err)
		}
	}
	return nil
}

func (q *RedisQueue) pumpDueRetries(ctx context.Context) error {
	now := q.clock().Unix()
	due, err := q.client.ZRangeByScore(ctx, q.retrySet, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   fmt.Sprint(now),
		Count: 100,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	for _, raw := range due {
		var envelope retryEnvelope
		if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
			q.logger.Error("dropping unparseable retry envelope", "error", err)
			q.client.ZRem(ctx, q.retrySet, raw)
			continue
		}
		if err := q.addToStream(ctx, envelope.MessageID, envelope.Body); err != nil {
			q.logger.Error("retry release failed", "message_id", envelope.MessageID, "error", err)
			continue
		}
		if err := q.client.ZRem(ctx, q.retrySet, raw).Err(); err != nil {
			q.logger.Error("retry cleanup failed", "message_id", envelope.MessageID, "error", err)
		}
	}
	return nil
}

// streamEntry extracts the stable message id and raw body from a stream
// entry. Entries written by Enqueue and the pumps carry both values; the
// stream entry id is the fallback identity for foreign writes.
func streamEntry(msg redis.XMessage) (string, []byte) {
	id, _ := msg.Values["id"].(string)
	if id == "" {
		id = msg.ID
	}
	body, _ := msg.Values["body"].(string)
	return id, []byte(body)
}

func (q *RedisQueue) addToStream(ctx context.Context, id string, body []byte) error {
	err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]any{
			"id":   id,
			"body": string(body),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("queue: stream add: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (q *RedisQueue) Close() error {
	return q.client.Close()
}
