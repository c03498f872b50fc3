package notify

import (
	"context"
	"log/slog"
	"time"

	"skgov/internal/platform/metrics"
)

// Notification is one queued templated email.
type Notification struct {
	Template  string
	Recipient string
	Data      map[string]any

	// readyAt is when the delay has elapsed and the sender may be called.
	readyAt time.Time
}

// Scheduler decouples email delivery from the request path. Schedule never
// blocks the caller and never reports failure upward: the worker applies
// the configured post-commit delay, calls the sender, and logs the outcome.
// Delivery is best-effort; a full queue drops with a log line rather than
// backpressuring an adjudication response.
type Scheduler struct {
	sender  Sender
	delay   time.Duration
	queue   chan Notification
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewScheduler(sender Sender, delay time.Duration, logger *slog.Logger, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		sender:  sender,
		delay:   delay,
		queue:   make(chan Notification, 256),
		logger:  logger,
		metrics: m,
	}
}

// Schedule enqueues a notification for delayed delivery. Notifications
// without a recipient are skipped with a log line; the subject simply has
// no email on file.
func (s *Scheduler) Schedule(n Notification) {
	if n.Recipient == "" {
		s.logger.Info("email skipped: no address on file", "template", n.Template)
		return
	}
	n.readyAt = time.Now().Add(s.delay)
	select {
	case s.queue <- n:
		if s.metrics != nil {
			s.metrics.EmailsScheduled.Inc()
		}
	default:
		s.logger.Warn("email queue full, notification dropped",
			"template", n.Template,
			"recipient", n.Recipient,
		)
	}
}

// Run delivers queued notifications until the context is cancelled.
// Cancellation may drop queued mail; at-least-once delivery is not a
// requirement of this channel.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-s.queue:
			if wait := time.Until(n.readyAt); wait > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(wait):
				}
			}
			if ok := s.sender.SendTemplated(ctx, n.Template, n.Data, n.Recipient); !ok {
				s.logger.Warn("email delivery failed",
					"template", n.Template,
					"recipient", n.Recipient,
				)
				if s.metrics != nil {
					s.metrics.ObserveFanOutFailure("email")
				}
			}
		}
	}
}
