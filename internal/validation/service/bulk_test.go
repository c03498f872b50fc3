package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"skgov/internal/validation"
	pkgerrors "skgov/pkg/errors"
)

type BulkSuite struct {
	suite.Suite
	f *fixture
}

func TestBulkSuite(t *testing.T) {
	suite.Run(t, new(BulkSuite))
}

func (s *BulkSuite) SetupTest() {
	s.f = newFixture()
}

func (s *BulkSuite) TestPartialFailure() {
	first := s.f.seed("")
	second := s.f.seed("")
	missing := uuid.New()

	res, err := s.f.svc.BulkAdjudicate(context.Background(),
		[]uuid.UUID{first.queueID, missing, second.queueID},
		validation.ActionApprove, "batch review", reviewer, false)
	s.Require().NoError(err)

	s.Equal(3, res.Total)
	s.Equal(2, res.Success)
	s.Equal(1, res.Failed)
	s.Require().Len(res.Results, 3)

	s.True(res.Results[0].Success)
	s.False(res.Results[1].Success)
	s.Equal(missing, res.Results[1].ID)
	s.Equal("queue entry not found", res.Results[1].Message)
	s.True(res.Results[2].Success)

	// Items before and after the failure stay committed.
	r, ok := s.f.store.Response(first.responseID)
	s.Require().True(ok)
	s.Equal(validation.StatusValidated, r.Status)
	r, ok = s.f.store.Response(second.responseID)
	s.Require().True(ok)
	s.Equal(validation.StatusValidated, r.Status)
}

func (s *BulkSuite) TestFanOutIsBatched() {
	first := s.f.seed("")
	second := s.f.seed("")

	_, err := s.f.svc.BulkAdjudicate(context.Background(),
		[]uuid.UUID{first.queueID, second.queueID},
		validation.ActionReject, "", reviewer, false)
	s.Require().NoError(err)

	s.Empty(s.f.dispatcher.events, "bulk must not dispatch per-item")
	s.Require().Len(s.f.dispatcher.batches, 1)
	batch := s.f.dispatcher.batches[0]
	s.Equal(reviewer, batch.actor)
	s.Equal(validation.ActionReject, batch.action)
	s.Len(batch.events, 2)
	s.Equal(2, batch.result.Success)
}

func (s *BulkSuite) TestEmptyInput() {
	_, err := s.f.svc.BulkAdjudicate(context.Background(), nil, validation.ActionApprove, "", reviewer, false)
	s.Require().Error(err)
	s.True(pkgerrors.Is(err, pkgerrors.CodeBadRequest))
	s.Empty(s.f.dispatcher.batches)
}

func (s *BulkSuite) TestInvalidActionRejectsWholeBatch() {
	seeded := s.f.seed("")
	_, err := s.f.svc.BulkAdjudicate(context.Background(),
		[]uuid.UUID{seeded.queueID}, validation.Action("purge"), "", reviewer, false)
	s.Require().Error(err)
	s.True(pkgerrors.Is(err, pkgerrors.CodeBadRequest))
	s.True(s.f.store.HasQueueEntry(seeded.queueID))
}

func (s *BulkSuite) TestBatchDispatchStillSentWhenAllFail() {
	res, err := s.f.svc.BulkAdjudicate(context.Background(),
		[]uuid.UUID{uuid.New(), uuid.New()}, validation.ActionApprove, "", reviewer, false)
	s.Require().NoError(err)
	s.Equal(2, res.Failed)
	s.Require().Len(s.f.dispatcher.batches, 1)
	s.Empty(s.f.dispatcher.batches[0].events)
}
