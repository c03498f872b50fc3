package validation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"skgov/internal/youth"
)

// QueueContext is the joined load the coordinator works from: the queue
// entry, its response, and the youth profile under review.
type QueueContext struct {
	Entry    QueueEntry
	Response SurveyResponse
	Profile  youth.Profile
}

// Store persists survey responses and the validation queue. Mutating
// methods join an ambient transaction when one is present in the context
// (pkg/platform/tx); the coordinator is the sole writer of status
// transitions and queue deletion.
type Store interface {
	// GetQueueContext loads a queue entry joined with its response and
	// youth profile. Returns sentinel.ErrNotFound when the entry does not
	// exist.
	GetQueueContext(ctx context.Context, queueID uuid.UUID) (*QueueContext, error)

	// FindLatestDuplicate returns the most recently created response for
	// the same youth in the same batch, excluding the response under
	// adjudication. (nil, nil) means no competing submission. Only the
	// newest duplicate is returned; older strays are left untouched.
	FindLatestDuplicate(ctx context.Context, batchID, youthID, excluding uuid.UUID) (*DuplicateRef, error)

	// SupersedeResponse rewrites a previously validated response to
	// rejected in favor of supersededBy, appending the supersede note.
	// The row is kept as historical record. Returns sentinel.ErrConflict
	// when the row is no longer validated (concurrent adjudication).
	SupersedeResponse(ctx context.Context, responseID, supersededBy uuid.UUID, note string) error

	// DeleteResponse hard-deletes a non-validated response row and any
	// queue entry referencing it. Returns sentinel.ErrConflict when the
	// row has been validated in the meantime.
	DeleteResponse(ctx context.Context, responseID uuid.UUID) error

	// SetResponseStatus writes the terminal status, validator identity,
	// validation timestamp, and reviewer comments onto a response.
	SetResponseStatus(ctx context.Context, responseID uuid.UUID, status ValidationStatus, validatedBy string, validatedAt time.Time, comments string) error

	// DeleteQueueEntry removes a completed item from the queue.
	DeleteQueueEntry(ctx context.Context, queueID uuid.UUID) error

	// ListResident returns queue-resident items (responses still awaiting
	// or undergoing adjudication) matching the filters. Sorting and
	// pagination are applied by the query service after view combination.
	ListResident(ctx context.Context, f ListFilters) ([]QueueItem, error)

	// ListDequeuedRejected returns rejected responses that no longer have
	// a queue entry. Score and voter-match read as nil for these.
	ListDequeuedRejected(ctx context.Context, f ListFilters) ([]QueueItem, error)

	// Stats computes dashboard aggregates.
	Stats(ctx context.Context) (*Stats, error)
}
