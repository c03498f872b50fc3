package notify

import (
	"context"
	"log/slog"

	"skgov/pkg/platform/circuit"
)

// BreakerSender guards a Sender with a circuit breaker so a down mail
// provider degrades to dropped notifications instead of a growing queue of
// timing-out deliveries.
type BreakerSender struct {
	next    Sender
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewBreakerSender(next Sender, logger *slog.Logger) *BreakerSender {
	return &BreakerSender{
		next: next,
		breaker: circuit.New("mail-provider",
			circuit.WithFailureThreshold(5),
			circuit.WithSuccessThreshold(2),
		),
		logger: logger,
	}
}

func (s *BreakerSender) SendTemplated(ctx context.Context, template string, data map[string]any, recipient string) bool {
	if s.breaker.IsOpen() {
		// Probe with the real sender so the circuit can close again once
		// the provider recovers.
		if ok := s.next.SendTemplated(ctx, template, data, recipient); ok {
			if _, change := s.breaker.RecordSuccess(); change.Closed {
				s.logger.InfoContext(ctx, "mail provider recovered, circuit closed")
			}
			return true
		}
		s.breaker.RecordFailure()
		return false
	}

	if ok := s.next.SendTemplated(ctx, template, data, recipient); ok {
		s.breaker.RecordSuccess()
		return true
	}
	if _, change := s.breaker.RecordFailure(); change.Opened {
		s.logger.WarnContext(ctx, "mail provider failing, circuit opened")
	}
	return false
}

var _ Sender = (*BreakerSender)(nil)
