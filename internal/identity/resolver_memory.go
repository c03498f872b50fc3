package identity

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryResolver backs validator accounts with a map for unit tests.
type InMemoryResolver struct {
	mu       sync.Mutex
	accounts map[string]Account
}

func NewInMemory() *InMemoryResolver {
	return &InMemoryResolver{accounts: make(map[string]Account)}
}

func (r *InMemoryResolver) Resolve(_ context.Context, kind Kind, sourceID, displayName string) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := string(kind) + "/" + sourceID
	if acct, ok := r.accounts[key]; ok {
		return acct.ID, nil
	}
	acct := Account{ID: uuid.New(), Kind: kind, SourceID: sourceID, DisplayName: displayName}
	r.accounts[key] = acct
	return acct.ID, nil
}

// Lookup returns the mapped account if one exists. Test helper.
func (r *InMemoryResolver) Lookup(kind Kind, sourceID string) (Account, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acct, ok := r.accounts[string(kind)+"/"+sourceID]
	return acct, ok
}
