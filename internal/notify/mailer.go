package notify

import (
	"context"
	"log/slog"
)

// Email templates keyed by adjudication action. Rendering happens in the
// external mail service; this subsystem only names the template and
// supplies data.
const (
	TemplateResponseValidated = "survey_response_validated"
	TemplateResponseRejected  = "survey_response_rejected"
)

// Sender delivers one templated email. Implementations report success as a
// bool and never panic; the scheduler treats false as a logged failure, not
// an error to propagate.
type Sender interface {
	SendTemplated(ctx context.Context, template string, data map[string]any, recipient string) bool
}

// LogSender is the default sender when no mail provider is configured. It
// logs instead of delivering so development environments stay quiet.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) SendTemplated(ctx context.Context, template string, data map[string]any, recipient string) bool {
	s.Logger.InfoContext(ctx, "email delivery skipped (no provider configured)",
		"template", template,
		"recipient", recipient,
		"data_keys", len(data),
	)
	return true
}
