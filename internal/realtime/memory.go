package realtime

import (
	"context"
	"errors"
	"sync"
)

// Emit records one broadcast for test assertions.
type Emit struct {
	Target  string
	Event   string
	Payload any
}

// RecordingBroadcaster collects emits in memory. Setting Fail makes every
// emit error, for exercising fan-out isolation.
type RecordingBroadcaster struct {
	mu    sync.Mutex
	emits []Emit
	Fail  bool
}

func NewRecordingBroadcaster() *RecordingBroadcaster {
	return &RecordingBroadcaster{}
}

func (b *RecordingBroadcaster) EmitToAdmins(_ context.Context, event string, payload any) error {
	return b.record("role:"+RoleAdmin, event, payload)
}

func (b *RecordingBroadcaster) EmitToRole(_ context.Context, role, event string, payload any) error {
	return b.record("role:"+role, event, payload)
}

func (b *RecordingBroadcaster) EmitToRoom(_ context.Context, room, event string, payload any) error {
	return b.record("room:"+room, event, payload)
}

func (b *RecordingBroadcaster) record(target, event string, payload any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Fail {
		return errors.New("broadcast unavailable")
	}
	b.emits = append(b.emits, Emit{Target: target, Event: event, Payload: payload})
	return nil
}

// Emits returns a copy of all recorded broadcasts.
func (b *RecordingBroadcaster) Emits() []Emit {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Emit{}, b.emits...)
}

var _ Broadcaster = (*RecordingBroadcaster)(nil)
