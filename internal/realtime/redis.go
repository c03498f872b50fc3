package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// channel prefixes; gateway processes fan these out to websocket clients.
const (
	roleChannelPrefix = "skgov:role:"
	roomChannelPrefix = "skgov:room:"
)

// RedisBroadcaster publishes events over Redis pub/sub so every gateway
// instance sees them regardless of which API instance committed the change.
type RedisBroadcaster struct {
	client redis.UniversalClient
}

func NewRedisBroadcaster(client redis.UniversalClient) *RedisBroadcaster {
	return &RedisBroadcaster{client: client}
}

// envelope is the wire form of one pub/sub message.
type envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

func (b *RedisBroadcaster) EmitToAdmins(ctx context.Context, event string, payload any) error {
	return b.publish(ctx, roleChannelPrefix+RoleAdmin, event, payload)
}

func (b *RedisBroadcaster) EmitToRole(ctx context.Context, role, event string, payload any) error {
	return b.publish(ctx, roleChannelPrefix+role, event, payload)
}

func (b *RedisBroadcaster) EmitToRoom(ctx context.Context, room, event string, payload any) error {
	return b.publish(ctx, roomChannelPrefix+room, event, payload)
}

func (b *RedisBroadcaster) publish(ctx context.Context, channel, event string, payload any) error {
	msg, err := json.Marshal(envelope{Event: event, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal broadcast payload: %w", err)
	}
	if err := b.client.Publish(ctx, channel, msg).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}

var _ Broadcaster = (*RedisBroadcaster)(nil)
