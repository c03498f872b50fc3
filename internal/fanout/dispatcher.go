package fanout

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"skgov/internal/audit"
	"skgov/internal/notify"
	"skgov/internal/platform/metrics"
	"skgov/internal/realtime"
	"skgov/internal/validation"
	"skgov/pkg/email"
)

// Event carries the already-committed adjudication state the dispatcher
// fans out. The dispatcher only reads committed data; it never touches the
// transaction that produced it.
type Event struct {
	Action     validation.Action
	Actor      validation.Actor
	Result     validation.AdjudicationResult
	YouthID    uuid.UUID
	YouthName  string
	YouthEmail string
	Barangay   string
	RequestID  string
}

// Dispatcher runs the post-commit side effects: real-time broadcast, audit
// logging, and email scheduling. Each channel is isolated — a failure in
// one is logged and counted but never blocks the others, and Dispatch
// never returns an error to its caller.
type Dispatcher struct {
	broadcaster realtime.Broadcaster
	publisher   *audit.Publisher
	mail        *notify.Scheduler
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

func NewDispatcher(
	broadcaster realtime.Broadcaster,
	publisher *audit.Publisher,
	mail *notify.Scheduler,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Dispatcher {
	return &Dispatcher{
		broadcaster: broadcaster,
		publisher:   publisher,
		mail:        mail,
		logger:      logger,
		metrics:     m,
	}
}

// Dispatch fans out one committed adjudication.
func (d *Dispatcher) Dispatch(ctx context.Context, e Event) {
	d.guard(ctx, "broadcast", func() error { return d.broadcast(ctx, e) })
	d.guard(ctx, "audit", func() error { return d.auditItem(ctx, e) })
	d.guard(ctx, "email", func() error { d.scheduleEmail(e); return nil })
}

// DispatchBatch fans out a bulk adjudication: per-item broadcast and audit,
// one summary audit entry, then emails for every successful item — emails
// deliberately last so the whole batch is committed before any are queued.
func (d *Dispatcher) DispatchBatch(ctx context.Context, actor validation.Actor, action validation.Action, events []Event, result validation.BulkResult, requestID string) {
	for _, e := range events {
		d.guard(ctx, "broadcast", func() error { return d.broadcast(ctx, e) })
		d.guard(ctx, "audit", func() error { return d.auditItem(ctx, e) })
	}

	d.guard(ctx, "audit", func() error {
		_, err := d.publisher.Emit(ctx, audit.Event{
			Actor:        actor.ID,
			Action:       audit.ActionBulkAdjudication,
			ResourceType: audit.ResourceValidationQueue,
			ResourceID:   "bulk",
			RequestID:    requestID,
			Details: map[string]any{
				"action":  string(action),
				"total":   result.Total,
				"success": result.Success,
				"failed":  result.Failed,
			},
		})
		return err
	})

	for _, e := range events {
		d.guard(ctx, "email", func() error { d.scheduleEmail(e); return nil })
	}
}

// guard isolates one side-effect channel: errors and panics are logged and
// counted, never propagated.
func (d *Dispatcher) guard(ctx context.Context, channel string, fn func() error) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.ErrorContext(ctx, "fan-out channel panicked",
				"channel", channel,
				"panic", rec,
			)
			d.metrics.ObserveFanOutFailure(channel)
		}
	}()
	if err := fn(); err != nil {
		d.logger.ErrorContext(ctx, "fan-out channel failed",
			"channel", channel,
			"error", err,
		)
		d.metrics.ObserveFanOutFailure(channel)
	}
}

// broadcast pushes both the queue-specific and the generic
// responses-updated event to admins, staff, and the barangay room, so
// independently-subscribed views stay consistent.
func (d *Dispatcher) broadcast(ctx context.Context, e Event) error {
	payload := map[string]any{
		"queueId":    e.Result.QueueID,
		"responseId": e.Result.ResponseID,
		"status":     e.Result.Status,
		"barangay":   e.Barangay,
	}

	var firstErr error
	emit := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, event := range []string{realtime.EventQueueAdjudicated, realtime.EventResponsesUpdated} {
		emit(d.broadcaster.EmitToAdmins(ctx, event, payload))
		emit(d.broadcaster.EmitToRole(ctx, realtime.RoleStaff, event, payload))
		if e.Barangay != "" {
			emit(d.broadcaster.EmitToRoom(ctx, realtime.BarangayRoom(e.Barangay), event, payload))
		}
	}
	return firstErr
}

func (d *Dispatcher) auditItem(ctx context.Context, e Event) error {
	action := audit.ActionResponseRejected
	if e.Action == validation.ActionApprove {
		action = audit.ActionResponseValidated
	}
	details := map[string]any{
		"queueId":  e.Result.QueueID.String(),
		"youthId":  e.YouthID.String(),
		"status":   string(e.Result.Status),
		"barangay": e.Barangay,
	}
	if e.Result.SupersededResponseID != nil {
		details["supersededResponseId"] = e.Result.SupersededResponseID.String()
	}
	if e.Result.DeletedResponseID != nil {
		details["deletedResponseId"] = e.Result.DeletedResponseID.String()
	}
	_, err := d.publisher.Emit(ctx, audit.Event{
		Actor:        e.Actor.ID,
		Action:       action,
		ResourceType: audit.ResourceSurveyResponse,
		ResourceID:   e.Result.ResponseID.String(),
		Details:      details,
		RequestID:    e.RequestID,
	})
	if err != nil || e.Result.SupersededResponseID == nil {
		return err
	}

	// The displaced response gets its own entry so its trail is queryable
	// under its own resource id.
	_, err = d.publisher.Emit(ctx, audit.Event{
		Actor:        e.Actor.ID,
		Action:       audit.ActionResponseSuperseded,
		ResourceType: audit.ResourceSurveyResponse,
		ResourceID:   e.Result.SupersededResponseID.String(),
		Details: map[string]any{
			"supersededBy": e.Result.ResponseID.String(),
			"youthId":      e.YouthID.String(),
		},
		RequestID: e.RequestID,
	})
	return err
}

// scheduleEmail queues the action-keyed notification. The scheduler itself
// skips subjects without an email on file.
func (d *Dispatcher) scheduleEmail(e Event) {
	template := notify.TemplateResponseRejected
	if e.Action == validation.ActionApprove {
		template = notify.TemplateResponseValidated
	}
	name := e.YouthName
	if name == "" && e.YouthEmail != "" {
		name = email.GreetingName(e.YouthEmail)
	}
	d.mail.Schedule(notify.Notification{
		Template:  template,
		Recipient: e.YouthEmail,
		Data: map[string]any{
			"name":     name,
			"barangay": e.Barangay,
			"status":   string(e.Result.Status),
		},
	})
}
