package audit

import (
	"time"

	"github.com/google/uuid"
)

// Event is emitted from domain logic to capture who did what to which
// resource. Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID           uuid.UUID
	Timestamp    time.Time
	Actor        string
	Action       Action
	ResourceType string
	ResourceID   string
	Details      map[string]any
	RequestID    string
}

// Action names the audited operation.
type Action string

const (
	ActionResponseValidated  Action = "survey_response_validated"
	ActionResponseRejected   Action = "survey_response_rejected"
	ActionResponseSuperseded Action = "survey_response_superseded"
	ActionBulkAdjudication   Action = "bulk_adjudication"
)

// Resource types referenced by validation audit entries.
const (
	ResourceSurveyResponse  = "survey_response"
	ResourceValidationQueue = "validation_queue"
)
