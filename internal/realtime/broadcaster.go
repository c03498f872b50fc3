package realtime

import "context"

// Event names pushed to subscribed review UIs. Two events go out per
// adjudication so independently-subscribed views stay consistent.
const (
	EventQueueAdjudicated = "validation_queue:adjudicated"
	EventResponsesUpdated = "survey_responses:updated"
)

// Roles with standing subscriptions.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Broadcaster pushes real-time events to subscribed roles and rooms.
// Delivery is best-effort and at-most-once; callers never treat a failed
// emit as a failed operation.
type Broadcaster interface {
	EmitToAdmins(ctx context.Context, event string, payload any) error
	EmitToRole(ctx context.Context, role, event string, payload any) error
	EmitToRoom(ctx context.Context, room, event string, payload any) error
}

// BarangayRoom is the room key for barangay-scoped subscriptions.
func BarangayRoom(barangay string) string {
	return "barangay:" + barangay
}

// NopBroadcaster drops every emit. Used when Redis is not configured.
type NopBroadcaster struct{}

func (NopBroadcaster) EmitToAdmins(context.Context, string, any) error      { return nil }
func (NopBroadcaster) EmitToRole(context.Context, string, string, any) error { return nil }
func (NopBroadcaster) EmitToRoom(context.Context, string, string, any) error { return nil }
