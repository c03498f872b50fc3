package validation

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"skgov/internal/youth"
	"skgov/pkg/platform/sentinel"
)

// InMemoryStore mirrors the PostgreSQL store semantics over maps so the
// coordinator and query service are unit-testable without a database. It
// shares the youth in-memory store for the profile join.
type InMemoryStore struct {
	mu        sync.RWMutex
	responses map[uuid.UUID]SurveyResponse
	queue     map[uuid.UUID]QueueEntry
	profiles  *youth.InMemoryStore

	// validator display names keyed by source id, mirroring the
	// validator_accounts join in the SQL store.
	staffNames map[string]string
	skNames    map[string]string
}

func NewInMemoryStore(profiles *youth.InMemoryStore) *InMemoryStore {
	return &InMemoryStore{
		responses:  make(map[uuid.UUID]SurveyResponse),
		queue:      make(map[uuid.UUID]QueueEntry),
		profiles:   profiles,
		staffNames: make(map[string]string),
		skNames:    make(map[string]string),
	}
}

// Seed helpers for tests.

func (s *InMemoryStore) PutResponse(r SurveyResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[r.ID] = r
}

func (s *InMemoryStore) PutQueueEntry(e QueueEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue[e.ID] = e
}

func (s *InMemoryStore) PutStaffName(sourceID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staffNames[sourceID] = name
}

func (s *InMemoryStore) PutSKOfficialName(sourceID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skNames[sourceID] = name
}

// Response returns a stored response for assertions.
func (s *InMemoryStore) Response(id uuid.UUID) (SurveyResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.responses[id]
	return r, ok
}

// HasQueueEntry reports whether a queue entry still exists.
func (s *InMemoryStore) HasQueueEntry(id uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.queue[id]
	return ok
}

func (s *InMemoryStore) GetQueueContext(ctx context.Context, queueID uuid.UUID) (*QueueContext, error) {
	s.mu.RLock()
	entry, ok := s.queue[queueID]
	if !ok {
		s.mu.RUnlock()
		return nil, sentinel.ErrNotFound
	}
	resp, ok := s.responses[entry.ResponseID]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	profile, err := s.profiles.Get(ctx, entry.YouthID)
	if err != nil {
		return nil, err
	}
	return &QueueContext{Entry: entry, Response: resp, Profile: *profile}, nil
}

func (s *InMemoryStore) FindLatestDuplicate(_ context.Context, batchID, youthID, excluding uuid.UUID) (*DuplicateRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		latest   *SurveyResponse
		latestAt time.Time
	)
	for id := range s.responses {
		r := s.responses[id]
		if r.ID == excluding || r.YouthID != youthID {
			continue
		}
		if r.BatchID == nil || *r.BatchID != batchID {
			continue
		}
		if latest == nil || r.CreatedAt.After(latestAt) {
			match := r
			latest = &match
			latestAt = r.CreatedAt
		}
	}
	if latest == nil {
		return nil, nil
	}
	return &DuplicateRef{ResponseID: latest.ID, Status: latest.Status}, nil
}

func (s *InMemoryStore) SupersedeResponse(_ context.Context, responseID, supersededBy uuid.UUID, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.responses[responseID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if r.Status != StatusValidated {
		return sentinel.ErrConflict
	}
	r.Status = StatusRejected
	r.SupersededBy = &supersededBy
	r.ValidationNotes = appendNote(r.ValidationNotes, note)
	r.UpdatedAt = time.Now()
	s.responses[responseID] = r
	return nil
}

func (s *InMemoryStore) DeleteResponse(_ context.Context, responseID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.responses[responseID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if r.Status == StatusValidated {
		return sentinel.ErrConflict
	}
	delete(s.responses, responseID)
	for id, entry := range s.queue {
		if entry.ResponseID == responseID {
			delete(s.queue, id)
		}
	}
	return nil
}

func (s *InMemoryStore) SetResponseStatus(_ context.Context, responseID uuid.UUID, status ValidationStatus, validatedBy string, validatedAt time.Time, comments string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.responses[responseID]
	if !ok {
		return sentinel.ErrNotFound
	}
	r.Status = status
	r.ValidatedBy = &validatedBy
	r.ValidatedAt = &validatedAt
	r.ValidationNotes = appendNote(r.ValidationNotes, comments)
	r.UpdatedAt = time.Now()
	s.responses[responseID] = r
	return nil
}

func (s *InMemoryStore) DeleteQueueEntry(_ context.Context, queueID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.queue[queueID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.queue, queueID)
	return nil
}

func (s *InMemoryStore) ListResident(ctx context.Context, f ListFilters) ([]QueueItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []QueueItem
	for _, entry := range s.queue {
		r, ok := s.responses[entry.ResponseID]
		if !ok {
			continue
		}
		if f.Status == string(StatusPending) || f.Status == string(StatusValidated) {
			if string(r.Status) != f.Status {
				continue
			}
		}
		if f.VoterMatch != "" && (entry.VoterMatch == nil || *entry.VoterMatch != f.VoterMatch) {
			continue
		}
		if f.ScoreMin != nil && (entry.ValidationScore == nil || *entry.ValidationScore < *f.ScoreMin) {
			continue
		}
		if f.ScoreMax != nil && (entry.ValidationScore == nil || *entry.ValidationScore > *f.ScoreMax) {
			continue
		}
		item, ok := s.buildItem(ctx, r, &entry, f)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *InMemoryStore) ListDequeuedRejected(ctx context.Context, f ListFilters) ([]QueueItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	queued := make(map[uuid.UUID]struct{}, len(s.queue))
	for _, entry := range s.queue {
		queued[entry.ResponseID] = struct{}{}
	}
	var items []QueueItem
	for _, r := range s.responses {
		if r.Status != StatusRejected {
			continue
		}
		if _, stillQueued := queued[r.ID]; stillQueued {
			continue
		}
		item, ok := s.buildItem(ctx, r, nil, f)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// buildItem joins the profile and applies the shared search/barangay
// filters. Caller holds the read lock.
func (s *InMemoryStore) buildItem(ctx context.Context, r SurveyResponse, entry *QueueEntry, f ListFilters) (QueueItem, bool) {
	profile, err := s.profiles.Get(ctx, r.YouthID)
	if err != nil {
		return QueueItem{}, false
	}
	if f.Barangay != "" && profile.Barangay != f.Barangay {
		return QueueItem{}, false
	}
	if f.Search != "" && !profileMatches(*profile, f.Search) {
		return QueueItem{}, false
	}

	item := QueueItem{
		ResponseID:  r.ID,
		YouthID:     r.YouthID,
		BatchID:     r.BatchID,
		FirstName:   profile.FirstName,
		LastName:    profile.LastName,
		Age:         profile.Age,
		Barangay:    profile.Barangay,
		Status:      r.Status,
		ValidatedBy: r.ValidatedBy,
		ValidatedAt: r.ValidatedAt,
		SubmittedAt: r.CreatedAt,
	}
	if entry != nil {
		queueID := entry.ID
		item.QueueID = &queueID
		item.VoterMatch = entry.VoterMatch
		item.ValidationScore = entry.ValidationScore
	}
	item.ValidatorName = s.displayName(r.ValidatedBy)
	return item, true
}

func (s *InMemoryStore) displayName(raw *string) *string {
	if raw == nil {
		return nil
	}
	if name, ok := s.staffNames[*raw]; ok && name != "" {
		return &name
	}
	if name, ok := s.skNames[*raw]; ok && name != "" {
		return &name
	}
	return raw
}

func profileMatches(p youth.Profile, search string) bool {
	needle := strings.ToLower(search)
	fields := []string{p.FirstName, p.LastName}
	if p.ContactNumber != nil {
		fields = append(fields, *p.ContactNumber)
	}
	if p.Email != nil {
		fields = append(fields, *p.Email)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func (s *InMemoryStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &Stats{Total: len(s.responses)}
	today := time.Now().Truncate(24 * time.Hour)

	byBarangay := make(map[string]int)
	for _, entry := range s.queue {
		r, ok := s.responses[entry.ResponseID]
		if ok && r.Status == StatusPending {
			stats.Pending++
		}
		if profile, err := s.profiles.Get(ctx, entry.YouthID); err == nil {
			byBarangay[profile.Barangay]++
		}
	}
	var validated []SurveyResponse
	for _, r := range s.responses {
		switch r.Status {
		case StatusValidated:
			if r.ValidatedAt != nil && !r.ValidatedAt.Before(today) {
				stats.Completed++
			}
			validated = append(validated, r)
		case StatusRejected:
			stats.Rejected++
		}
	}
	for barangay, count := range byBarangay {
		stats.ByBarangay = append(stats.ByBarangay, BarangayCount{Barangay: barangay, Count: count})
	}
	sort.Slice(stats.ByBarangay, func(i, j int) bool {
		if stats.ByBarangay[i].Count != stats.ByBarangay[j].Count {
			return stats.ByBarangay[i].Count > stats.ByBarangay[j].Count
		}
		return stats.ByBarangay[i].Barangay < stats.ByBarangay[j].Barangay
	})

	sort.Slice(validated, func(i, j int) bool {
		return timeOrZero(validated[i].ValidatedAt).After(timeOrZero(validated[j].ValidatedAt))
	})
	for i, r := range validated {
		if i == 5 {
			break
		}
		if item, ok := s.buildItem(ctx, r, nil, ListFilters{}); ok {
			stats.RecentValidations = append(stats.RecentValidations, item)
		}
	}
	return stats, nil
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func appendNote(existing, note string) string {
	if note == "" {
		return existing
	}
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}

var _ Store = (*InMemoryStore)(nil)
