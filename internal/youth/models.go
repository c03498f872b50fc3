package youth

import (
	"time"

	"github.com/google/uuid"
)

// ProfileStatus tracks whether a youth's identity has been confirmed by an
// approved survey response.
type ProfileStatus string

const (
	ProfileStatusPending   ProfileStatus = "pending"
	ProfileStatusValidated ProfileStatus = "validated"
)

// Profile is the canonical identity record for one youth. It is mutated
// only when a response is approved, and never regressed once validated.
type Profile struct {
	ID               uuid.UUID
	FirstName        string
	LastName         string
	Barangay         string
	BirthDate        time.Time
	Age              int
	ContactNumber    *string
	Email            *string
	ValidationStatus ProfileStatus
	ValidatedBy      *string
	ValidatedAt      *time.Time
	IsActive         bool
	IsAnonymized     bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// FullName is the display form used in notifications and broadcasts.
func (p Profile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}
