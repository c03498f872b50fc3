package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the append-only persistence behind the publisher. The PostgreSQL
// implementation writes to the transactional outbox; the in-memory one backs
// unit tests.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

// Emit records one audit event, assigning identity and timestamp when the
// caller left them zero. Returns the event id.
func (p *Publisher) Emit(ctx context.Context, event Event) (uuid.UUID, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := p.store.Append(ctx, event); err != nil {
		return uuid.Nil, err
	}
	return event.ID, nil
}
