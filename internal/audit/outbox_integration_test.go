//go:build integration

package audit

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"skgov/pkg/testutil/containers"
)

func TestOutboxWorkerPublishes(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	pg := containers.NewPostgresContainer(t, "../../migrations")
	t.Cleanup(func() {
		_ = pg.DB.Close()
		_ = pg.Container.Terminate(context.Background())
	})
	rp := containers.NewRedpandaContainer(t)

	const topic = "skgov.audit.test"
	worker, err := NewOutboxWorker(pg.DB, rp.Brokers, topic, 50*time.Millisecond, logger, nil)
	require.NoError(t, err)
	t.Cleanup(worker.Close)
	require.NoError(t, worker.EnsureTopic(ctx))

	publisher := NewPublisher(NewPostgres(pg.DB))
	eventID, err := publisher.Emit(ctx, Event{
		Actor:        "staff-42",
		Action:       ActionResponseValidated,
		ResourceType: ResourceSurveyResponse,
		ResourceID:   "resp-1",
		Details:      map[string]any{"barangay": "Poblacion"},
		RequestID:    "req-1",
	})
	require.NoError(t, err)

	require.NoError(t, worker.publishBatch(ctx))

	var published int
	require.NoError(t, pg.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_outbox WHERE published_at IS NOT NULL`).Scan(&published))
	require.Equal(t, 1, published)

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	t.Cleanup(consumer.Close)

	fetchCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(fetchCtx)
	require.NoError(t, fetches.Err())
	records := fetches.Records()
	require.Len(t, records, 1)
	require.Equal(t, "resp-1", string(records[0].Key))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(records[0].Value, &payload))
	require.Equal(t, eventID.String(), payload["id"])
	require.Equal(t, string(ActionResponseValidated), payload["action"])
	require.Equal(t, "staff-42", payload["actor"])

	// Re-running the batch publishes nothing new.
	require.NoError(t, worker.publishBatch(ctx))
	require.NoError(t, pg.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_outbox WHERE published_at IS NOT NULL`).Scan(&published))
	require.Equal(t, 1, published)
}
