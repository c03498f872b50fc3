package youth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"skgov/pkg/platform/sentinel"
)

// InMemoryStore keeps profiles in a map for unit tests.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]Profile
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{profiles: make(map[uuid.UUID]Profile)}
}

// Put seeds a profile. Test helper.
func (s *InMemoryStore) Put(p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
}

func (s *InMemoryStore) Get(_ context.Context, id uuid.UUID) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

func (s *InMemoryStore) UpdateContact(_ context.Context, id uuid.UUID, contactNumber, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if contactNumber != "" {
		p.ContactNumber = &contactNumber
	}
	if email != "" {
		p.Email = &email
	}
	p.UpdatedAt = time.Now()
	s.profiles[id] = p
	return nil
}

func (s *InMemoryStore) MarkValidated(_ context.Context, id uuid.UUID, validatedBy string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	if p.ValidationStatus == ProfileStatusValidated {
		return false, nil
	}
	p.ValidationStatus = ProfileStatusValidated
	p.ValidatedBy = &validatedBy
	p.ValidatedAt = &at
	p.UpdatedAt = time.Now()
	s.profiles[id] = p
	return true, nil
}
