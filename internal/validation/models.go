package validation

import (
	"time"

	"github.com/google/uuid"
)

// ValidationStatus is the adjudication state of a survey response.
type ValidationStatus string

const (
	StatusPending   ValidationStatus = "pending"
	StatusValidated ValidationStatus = "validated"
	StatusRejected  ValidationStatus = "rejected"
)

// Action is an adjudication decision taken by a reviewer.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// Valid reports whether the action is one of the two accepted values.
func (a Action) Valid() bool {
	return a == ActionApprove || a == ActionReject
}

// TerminalStatus is the response status the action resolves to.
func (a Action) TerminalStatus() ValidationStatus {
	if a == ActionApprove {
		return StatusValidated
	}
	return StatusRejected
}

// SurveyResponse is one youth's submission to one survey batch.
//
// At most one response per (youth, batch) may hold StatusValidated at any
// time; multiple pending or rejected rows may transiently coexist until
// adjudication reconciles them.
type SurveyResponse struct {
	ID              uuid.UUID
	YouthID         uuid.UUID
	BatchID         *uuid.UUID
	Status          ValidationStatus
	ValidatedBy     *string
	ValidatedAt     *time.Time
	ValidationNotes string
	// SupersededBy points at the newer response that displaced this one.
	// Set alongside the supersede note so consumers never have to re-parse
	// the note text to detect supersession.
	SupersededBy *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// QueueEntry is an outstanding unit of adjudication work. An entry exists
// iff its response has not been terminally adjudicated; it is deleted
// atomically with the status transition.
type QueueEntry struct {
	ID              uuid.UUID
	ResponseID      uuid.UUID
	YouthID         uuid.UUID
	VoterMatch      *string
	ValidationScore *int
	CreatedAt       time.Time
}

// Actor identifies the reviewer performing an adjudication, as carried by
// the auth token.
type Actor struct {
	ID   string
	Name string
	Role string
}

// DuplicateRef is a competing response found by the duplicate resolver.
type DuplicateRef struct {
	ResponseID uuid.UUID
	Status     ValidationStatus
}

// AdjudicationResult echoes the committed state transition back to callers.
type AdjudicationResult struct {
	QueueID     uuid.UUID        `json:"queueId"`
	ResponseID  uuid.UUID        `json:"responseId"`
	Status      ValidationStatus `json:"status"`
	ValidatedBy string           `json:"validatedBy"`
	ValidatedAt time.Time        `json:"validatedAt"`

	// SupersededResponseID is set when an older validated duplicate was
	// rewritten to rejected in favor of this response.
	SupersededResponseID *uuid.UUID `json:"supersededResponseId,omitempty"`
	// DeletedResponseID is set when a non-validated duplicate row was
	// hard-deleted in favor of this response.
	DeletedResponseID *uuid.UUID `json:"deletedResponseId,omitempty"`
}

// BulkItemResult is the per-item outcome of a bulk adjudication.
type BulkItemResult struct {
	ID      uuid.UUID `json:"id"`
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
}

// BulkResult aggregates a bulk adjudication. Partial failure is normal:
// committed items stay committed regardless of later failures.
type BulkResult struct {
	Total   int              `json:"total"`
	Success int              `json:"success"`
	Failed  int              `json:"failed"`
	Results []BulkItemResult `json:"results"`
}

// QueueItem is a row in the review queue listing. It unifies queue-resident
// items with dequeued rejected responses; queue-only fields (score, voter
// match) are nil for the latter.
type QueueItem struct {
	QueueID         *uuid.UUID       `json:"queueId,omitempty"`
	ResponseID      uuid.UUID        `json:"responseId"`
	YouthID         uuid.UUID        `json:"youthId"`
	BatchID         *uuid.UUID       `json:"batchId,omitempty"`
	FirstName       string           `json:"firstName"`
	LastName        string           `json:"lastName"`
	Age             int              `json:"age"`
	Barangay        string           `json:"barangay"`
	Status          ValidationStatus `json:"status"`
	VoterMatch      *string          `json:"voterMatch,omitempty"`
	ValidationScore *int             `json:"validationScore,omitempty"`
	ValidatedBy     *string          `json:"validatedBy,omitempty"`
	ValidatorName   *string          `json:"validatorName,omitempty"`
	ValidatedAt     *time.Time       `json:"validatedAt,omitempty"`
	SubmittedAt     time.Time        `json:"submittedAt"`
}

// ListFilters narrows and orders a queue listing. Zero values mean
// "unfiltered"; unknown Status selects the union view and unknown SortBy
// falls back to the default ordering.
type ListFilters struct {
	Page       int
	Limit      int
	Search     string
	Status     string
	Barangay   string
	VoterMatch string
	ScoreMin   *int
	ScoreMax   *int
	SortBy     string
	SortOrder  string
}

// Page size bounds for queue listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize returns the effective page and limit a listing serves: page
// floors at 1, limit defaults to DefaultPageSize and caps at MaxPageSize.
// Pagination metadata must be built from these values, not the raw request,
// so the reported page count matches the pages actually served.
func (f ListFilters) Normalize() (page, limit int) {
	page, limit = f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// BarangayCount is one bucket of the per-barangay pending breakdown.
type BarangayCount struct {
	Barangay string `json:"barangay"`
	Count    int    `json:"count"`
}

// Stats summarizes queue health for the review dashboard.
type Stats struct {
	Total             int             `json:"total"`
	Pending           int             `json:"pending"`
	Completed         int             `json:"completed"`
	Rejected          int             `json:"rejected"`
	ByBarangay        []BarangayCount `json:"byBarangay"`
	RecentValidations []QueueItem     `json:"recentValidations"`
}
