package identity

import (
	"context"

	"github.com/google/uuid"
)

// Kind is the source system a validator identity comes from.
type Kind string

const (
	KindStaff      Kind = "staff"
	KindSKOfficial Kind = "sk_official"
)

// KindForRole maps an auth-token role onto the validator source kind.
// Admins act through the staff mapping.
func KindForRole(role string) Kind {
	if role == "sk_official" {
		return KindSKOfficial
	}
	return KindStaff
}

// Account maps a staff or SK-official identifier onto one canonical
// validator account.
type Account struct {
	ID          uuid.UUID
	Kind        Kind
	SourceID    string
	DisplayName string
}

// Resolver resolves a staff or SK-official identifier to its canonical
// validator account, creating the mapping row lazily when one does not yet
// exist.
type Resolver interface {
	Resolve(ctx context.Context, kind Kind, sourceID, displayName string) (uuid.UUID, error)
}
