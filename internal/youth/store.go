package youth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists youth profiles. Mutating methods join an ambient
// transaction when one is present in the context.
type Store interface {
	// Get returns a profile or sentinel.ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Profile, error)

	// UpdateContact applies corrected contact fields extracted from a
	// conflict descriptor. Empty values leave the stored field untouched.
	UpdateContact(ctx context.Context, id uuid.UUID, contactNumber, email string) error

	// MarkValidated sets the profile to validated, recording who and when.
	// A profile that is already validated is left untouched (the returned
	// bool is false); approving twice must never rewrite validated_by or
	// validated_at.
	MarkValidated(ctx context.Context, id uuid.UUID, validatedBy string, at time.Time) (bool, error)
}
