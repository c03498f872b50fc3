//go:build integration

package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"skgov/pkg/testutil/containers"
)

func TestRedisBroadcaster(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	broadcaster := NewRedisBroadcaster(rc.Client)

	sub := rc.Client.Subscribe(ctx,
		"skgov:role:"+RoleStaff,
		"skgov:room:"+BarangayRoom("Poblacion"),
	)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err, "subscription handshake")
	ch := sub.Channel()

	payload := map[string]any{"responseId": "abc", "status": "validated"}
	require.NoError(t, broadcaster.EmitToRole(ctx, RoleStaff, EventQueueAdjudicated, payload))
	require.NoError(t, broadcaster.EmitToRoom(ctx, BarangayRoom("Poblacion"), EventResponsesUpdated, payload))

	got := map[string]string{}
	for i := 0; i < 2; i++ {
		select {
		case msg := <-ch:
			var env struct {
				Event   string         `json:"event"`
				Payload map[string]any `json:"payload"`
			}
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &env))
			require.Equal(t, "validated", env.Payload["status"])
			got[msg.Channel] = env.Event
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for broadcast")
		}
	}

	require.Equal(t, EventQueueAdjudicated, got["skgov:role:staff"])
	require.Equal(t, EventResponsesUpdated, got["skgov:room:barangay:Poblacion"])
}
