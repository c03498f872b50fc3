package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"skgov/internal/platform/metrics"
)

// outboxBatchSize bounds how many rows one poll publishes.
const outboxBatchSize = 100

// OutboxWorker drains the audit_outbox table into Kafka. Rows are claimed
// with SKIP LOCKED so multiple instances can run side by side; delivery is
// at-least-once and consumers dedupe on the event id.
type OutboxWorker struct {
	db       *sql.DB
	client   *kgo.Client
	topic    string
	interval time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewOutboxWorker(db *sql.DB, brokers []string, topic string, interval time.Duration, logger *slog.Logger, m *metrics.Metrics) (*OutboxWorker, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &OutboxWorker{
		db:       db,
		client:   client,
		topic:    topic,
		interval: interval,
		logger:   logger,
		metrics:  m,
	}, nil
}

// EnsureTopic creates the audit topic if it does not exist yet.
func (w *OutboxWorker) EnsureTopic(ctx context.Context) error {
	adm := kadm.NewClient(w.client)
	resp, err := adm.CreateTopics(ctx, 1, 1, nil, w.topic)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create audit topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

// Run polls until the context is cancelled. Publish failures are logged and
// retried on the next tick; rows are only marked published after Kafka
// acknowledges them.
func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.publishBatch(ctx); err != nil {
				w.logger.ErrorContext(ctx, "audit outbox publish failed", "error", err)
			}
		}
	}
}

func (w *OutboxWorker) publishBatch(ctx context.Context) error {
	dbtx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin outbox batch: %w", err)
	}
	defer func() { _ = dbtx.Rollback() }()

	const claim = `
		SELECT id, aggregate_id, payload
		FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`
	rows, err := dbtx.QueryContext(ctx, claim, outboxBatchSize)
	if err != nil {
		return fmt.Errorf("claim outbox rows: %w", err)
	}
	defer rows.Close()

	var (
		ids     []string
		records []*kgo.Record
	)
	for rows.Next() {
		var (
			id          string
			aggregateID string
			payload     []byte
		)
		if err := rows.Scan(&id, &aggregateID, &payload); err != nil {
			return fmt.Errorf("scan outbox row: %w", err)
		}
		ids = append(ids, id)
		records = append(records, &kgo.Record{
			Key:   []byte(aggregateID),
			Value: payload,
		})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate outbox rows: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	if err := w.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("produce audit events: %w", err)
	}

	const mark = `UPDATE audit_outbox SET published_at = now() WHERE id = ANY($1)`
	if _, err := dbtx.ExecContext(ctx, mark, pq.Array(ids)); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("commit outbox batch: %w", err)
	}

	w.metrics.AddOutboxPublished(len(records))
	w.logger.DebugContext(ctx, "audit outbox batch published", "count", len(records))
	return nil
}

// Close flushes and releases the Kafka client.
func (w *OutboxWorker) Close() {
	w.client.Close()
}
