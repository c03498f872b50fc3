package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"skgov/internal/fanout"
	"skgov/internal/identity"
	"skgov/internal/validation"
	"skgov/internal/youth"
	pkgerrors "skgov/pkg/errors"
	"skgov/pkg/platform/tx"
)

// dispatchRecorder captures fan-out calls without side effects.
type dispatchRecorder struct {
	events  []fanout.Event
	batches []batchCall
}

type batchCall struct {
	actor     validation.Actor
	action    validation.Action
	events    []fanout.Event
	result    validation.BulkResult
	requestID string
}

func (d *dispatchRecorder) Dispatch(_ context.Context, e fanout.Event) {
	d.events = append(d.events, e)
}

func (d *dispatchRecorder) DispatchBatch(_ context.Context, actor validation.Actor, action validation.Action, events []fanout.Event, result validation.BulkResult, requestID string) {
	d.batches = append(d.batches, batchCall{actor: actor, action: action, events: events, result: result, requestID: requestID})
}

type fixture struct {
	svc        *Service
	store      *validation.InMemoryStore
	profiles   *youth.InMemoryStore
	resolver   *identity.InMemoryResolver
	dispatcher *dispatchRecorder
	now        time.Time
}

func newFixture() *fixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	profiles := youth.NewInMemoryStore()
	store := validation.NewInMemoryStore(profiles)
	resolver := identity.NewInMemory()
	dispatcher := &dispatchRecorder{}
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	svc := New(Deps{
		Runner:     tx.NewMemoryRunner(),
		Store:      store,
		Profiles:   profiles,
		Identity:   resolver,
		Parser:     validation.NewConflictParser(logger),
		Dispatcher: dispatcher,
		Logger:     logger,
		Now:        func() time.Time { return now },
	})
	return &fixture{
		svc:        svc,
		store:      store,
		profiles:   profiles,
		resolver:   resolver,
		dispatcher: dispatcher,
		now:        now,
	}
}

// seed inserts one profile, response, and queue entry for it, returning the
// queue ID alongside the seeded IDs.
type seeded struct {
	queueID    uuid.UUID
	responseID uuid.UUID
	youthID    uuid.UUID
	batchID    uuid.UUID
}

func (f *fixture) seed(notes string) seeded {
	s := seeded{
		queueID:    uuid.New(),
		responseID: uuid.New(),
		youthID:    uuid.New(),
		batchID:    uuid.New(),
	}
	contact := "09171234567"
	email := "old@example.com"
	f.profiles.Put(youth.Profile{
		ID:               s.youthID,
		FirstName:        "Maria",
		LastName:         "Santos",
		Barangay:         "Poblacion",
		Age:              19,
		ContactNumber:    &contact,
		Email:            &email,
		ValidationStatus: youth.ProfileStatusPending,
		IsActive:         true,
	})
	f.store.PutResponse(validation.SurveyResponse{
		ID:              s.responseID,
		YouthID:         s.youthID,
		BatchID:         &s.batchID,
		Status:          validation.StatusPending,
		ValidationNotes: notes,
		CreatedAt:       f.now.Add(-time.Hour),
	})
	f.store.PutQueueEntry(validation.QueueEntry{
		ID:         s.queueID,
		ResponseID: s.responseID,
		YouthID:    s.youthID,
		CreatedAt:  f.now.Add(-time.Hour),
	})
	return s
}

// seedDuplicate inserts a second response for the same youth and batch.
func (f *fixture) seedDuplicate(base seeded, status validation.ValidationStatus, createdAt time.Time) uuid.UUID {
	id := uuid.New()
	f.store.PutResponse(validation.SurveyResponse{
		ID:        id,
		YouthID:   base.youthID,
		BatchID:   &base.batchID,
		Status:    status,
		CreatedAt: createdAt,
	})
	return id
}

const conflictNotes = "POTENTIAL DUPLICATE: same person submitted with different contact info. " +
	"Existing: 09171234567 / old@example.com. New: 09179876543 / new@example.com."

var reviewer = validation.Actor{ID: "staff-42", Name: "Ana Reyes", Role: "staff"}

type CoordinatorSuite struct {
	suite.Suite
	f *fixture
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorSuite))
}

func (s *CoordinatorSuite) SetupTest() {
	s.f = newFixture()
}

func (s *CoordinatorSuite) TestApprove() {
	seeded := s.f.seed("")

	res, err := s.f.svc.Adjudicate(context.Background(), seeded.queueID, validation.ActionApprove, "looks good", reviewer, false)
	s.Require().NoError(err)

	s.Equal(seeded.queueID, res.QueueID)
	s.Equal(validation.StatusValidated, res.Status)
	s.Equal(reviewer.ID, res.ValidatedBy)
	s.Equal(s.f.now, res.ValidatedAt)
	s.Nil(res.SupersededResponseID)
	s.Nil(res.DeletedResponseID)

	r, ok := s.f.store.Response(seeded.responseID)
	s.Require().True(ok)
	s.Equal(validation.StatusValidated, r.Status)
	s.Require().NotNil(r.ValidatedBy)
	s.Equal(reviewer.ID, *r.ValidatedBy)
	s.Contains(r.ValidationNotes, "looks good")
	s.False(s.f.store.HasQueueEntry(seeded.queueID))

	p, err := s.f.profiles.Get(context.Background(), seeded.youthID)
	s.Require().NoError(err)
	s.Equal(youth.ProfileStatusValidated, p.ValidationStatus)
	s.Require().NotNil(p.ValidatedBy)
	s.Equal(reviewer.ID, *p.ValidatedBy)

	_, ok = s.f.resolver.Lookup(identity.KindStaff, reviewer.ID)
	s.True(ok, "reviewer account should be lazily provisioned")

	s.Require().Len(s.f.dispatcher.events, 1)
	s.Equal("Maria Santos", s.f.dispatcher.events[0].YouthName)
}

func (s *CoordinatorSuite) TestReject() {
	seeded := s.f.seed(conflictNotes)

	res, err := s.f.svc.Adjudicate(context.Background(), seeded.queueID, validation.ActionReject, "details do not match", reviewer, false)
	s.Require().NoError(err)
	s.Equal(validation.StatusRejected, res.Status)

	r, ok := s.f.store.Response(seeded.responseID)
	s.Require().True(ok)
	s.Equal(validation.StatusRejected, r.Status)
	s.Contains(r.ValidationNotes, "POTENTIAL DUPLICATE", "original markers must survive the comment append")
	s.Contains(r.ValidationNotes, "details do not match")
	s.False(s.f.store.HasQueueEntry(seeded.queueID))

	p, err := s.f.profiles.Get(context.Background(), seeded.youthID)
	s.Require().NoError(err)
	s.Equal(youth.ProfileStatusPending, p.ValidationStatus, "rejection must not touch the profile")
}

func (s *CoordinatorSuite) TestApproveSupersedesValidatedDuplicate() {
	seeded := s.f.seed(conflictNotes)
	dupID := s.f.seedDuplicate(seeded, validation.StatusValidated, s.f.now.Add(-2*time.Hour))

	res, err := s.f.svc.Adjudicate(context.Background(), seeded.queueID, validation.ActionApprove, "", reviewer, true)
	s.Require().NoError(err)
	s.Require().NotNil(res.SupersededResponseID)
	s.Equal(dupID, *res.SupersededResponseID)
	s.Nil(res.DeletedResponseID)

	dup, ok := s.f.store.Response(dupID)
	s.Require().True(ok, "superseded response stays as historical record")
	s.Equal(validation.StatusRejected, dup.Status)
	s.Require().NotNil(dup.SupersededBy)
	s.Equal(seeded.responseID, *dup.SupersededBy)
	s.Contains(dup.ValidationNotes, "SUPERSEDED")
	s.Contains(dup.ValidationNotes, reviewer.ID)

	p, err := s.f.profiles.Get(context.Background(), seeded.youthID)
	s.Require().NoError(err)
	s.Require().NotNil(p.ContactNumber)
	s.Equal("09179876543", *p.ContactNumber)
	s.Require().NotNil(p.Email)
	s.Equal("new@example.com", *p.Email)
}

func (s *CoordinatorSuite) TestApproveDeletesPendingDuplicate() {
	seeded := s.f.seed(conflictNotes)
	dupID := s.f.seedDuplicate(seeded, validation.StatusPending, s.f.now.Add(-2*time.Hour))
	dupQueueID := uuid.New()
	s.f.store.PutQueueEntry(validation.QueueEntry{
		ID:         dupQueueID,
		ResponseID: dupID,
		YouthID:    seeded.youthID,
	})

	res, err := s.f.svc.Adjudicate(context.Background(), seeded.queueID, validation.ActionApprove, "", reviewer, true)
	s.Require().NoError(err)
	s.Require().NotNil(res.DeletedResponseID)
	s.Equal(dupID, *res.DeletedResponseID)

	_, ok := s.f.store.Response(dupID)
	s.False(ok, "pending duplicate is removed outright")
	s.False(s.f.store.HasQueueEntry(dupQueueID))
}

func (s *CoordinatorSuite) TestOnlyNewestDuplicateResolved() {
	seeded := s.f.seed(conflictNotes)
	older := s.f.seedDuplicate(seeded, validation.StatusRejected, s.f.now.Add(-3*time.Hour))
	newer := s.f.seedDuplicate(seeded, validation.StatusRejected, s.f.now.Add(-2*time.Hour))

	res, err := s.f.svc.Adjudicate(context.Background(), seeded.queueID, validation.ActionApprove, "", reviewer, true)
	s.Require().NoError(err)
	s.Require().NotNil(res.DeletedResponseID)
	s.Equal(newer, *res.DeletedResponseID)

	_, ok := s.f.store.Response(older)
	s.True(ok, "older strays stay untouched")
}

func (s *CoordinatorSuite) TestNoContactUpdateSkipsDuplicateResolution() {
	seeded := s.f.seed(conflictNotes)
	dupID := s.f.seedDuplicate(seeded, validation.StatusValidated, s.f.now.Add(-2*time.Hour))

	res, err := s.f.svc.Adjudicate(context.Background(), seeded.queueID, validation.ActionApprove, "", reviewer, false)
	s.Require().NoError(err)
	s.Nil(res.SupersededResponseID)

	dup, ok := s.f.store.Response(dupID)
	s.Require().True(ok)
	s.Equal(validation.StatusValidated, dup.Status)

	p, err := s.f.profiles.Get(context.Background(), seeded.youthID)
	s.Require().NoError(err)
	s.Require().NotNil(p.ContactNumber)
	s.Equal("09171234567", *p.ContactNumber, "contact stays without explicit opt-in")
}

func (s *CoordinatorSuite) TestContactUpdateWithoutMarkersIsIgnored() {
	seeded := s.f.seed("plain reviewer note, nothing flagged")

	_, err := s.f.svc.Adjudicate(context.Background(), seeded.queueID, validation.ActionApprove, "", reviewer, true)
	s.Require().NoError(err)

	p, err := s.f.profiles.Get(context.Background(), seeded.youthID)
	s.Require().NoError(err)
	s.Require().NotNil(p.ContactNumber)
	s.Equal("09171234567", *p.ContactNumber)
}

func (s *CoordinatorSuite) TestProfileValidationIsNotRewritten() {
	seeded := s.f.seed("")
	firstValidator := "staff-7"
	earlier := s.f.now.Add(-24 * time.Hour)
	s.f.profiles.Put(youth.Profile{
		ID:               seeded.youthID,
		FirstName:        "Maria",
		LastName:         "Santos",
		Barangay:         "Poblacion",
		ValidationStatus: youth.ProfileStatusValidated,
		ValidatedBy:      &firstValidator,
		ValidatedAt:      &earlier,
	})

	_, err := s.f.svc.Adjudicate(context.Background(), seeded.queueID, validation.ActionApprove, "", reviewer, false)
	s.Require().NoError(err)

	p, err := s.f.profiles.Get(context.Background(), seeded.youthID)
	s.Require().NoError(err)
	s.Require().NotNil(p.ValidatedBy)
	s.Equal(firstValidator, *p.ValidatedBy, "first confirmation wins")
	s.Require().NotNil(p.ValidatedAt)
	s.Equal(earlier, *p.ValidatedAt)
}

func (s *CoordinatorSuite) TestUnknownQueueEntry() {
	_, err := s.f.svc.Adjudicate(context.Background(), uuid.New(), validation.ActionApprove, "", reviewer, false)
	s.Require().Error(err)
	s.True(pkgerrors.Is(err, pkgerrors.CodeNotFound))
	s.Empty(s.f.dispatcher.events, "no fan-out on failure")
}

func (s *CoordinatorSuite) TestInvalidAction() {
	seeded := s.f.seed("")
	_, err := s.f.svc.Adjudicate(context.Background(), seeded.queueID, validation.Action("archive"), "", reviewer, false)
	s.Require().Error(err)
	s.True(pkgerrors.Is(err, pkgerrors.CodeBadRequest))
	s.True(s.f.store.HasQueueEntry(seeded.queueID), "entry untouched on bad input")
}

func (s *CoordinatorSuite) TestSKOfficialIdentityKind() {
	seeded := s.f.seed("")
	official := validation.Actor{ID: "sk-9", Name: "Jun Cruz", Role: "sk_official"}

	_, err := s.f.svc.Adjudicate(context.Background(), seeded.queueID, validation.ActionApprove, "", official, false)
	s.Require().NoError(err)

	acct, ok := s.f.resolver.Lookup(identity.KindSKOfficial, official.ID)
	s.Require().True(ok)
	s.Equal("Jun Cruz", acct.DisplayName)
}
