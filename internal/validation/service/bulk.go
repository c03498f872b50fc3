package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"skgov/internal/fanout"
	"skgov/internal/platform/middleware"
	"skgov/internal/validation"
	pkgerrors "skgov/pkg/errors"
)

// BulkAdjudicate applies one action to many queue entries sequentially,
// each in its own transaction. Items that fail are reported in place and
// do not roll back earlier successes. Fan-out is batched after the loop
// so a long run produces one audit summary instead of interleaved noise.
func (s *Service) BulkAdjudicate(ctx context.Context, queueIDs []uuid.UUID, action validation.Action, comments string, actor validation.Actor, updateContactInfo bool) (*validation.BulkResult, error) {
	ctx, span := s.tracer.Start(ctx, "validation.bulk_adjudicate")
	defer span.End()

	if len(queueIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "ids must not be empty")
	}
	if !action.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "action must be approve or reject")
	}

	result := &validation.BulkResult{
		Total:   len(queueIDs),
		Results: make([]validation.BulkItemResult, 0, len(queueIDs)),
	}
	events := make([]fanout.Event, 0, len(queueIDs))

	for _, id := range queueIDs {
		item := validation.BulkItemResult{ID: id}
		_, event, err := s.adjudicateOnce(ctx, id, action, comments, actor, updateContactInfo)
		if err != nil {
			item.Message = itemMessage(err)
			result.Failed++
			s.metrics.ObserveAdjudication(string(action), "failure")
		} else {
			item.Success = true
			result.Success++
			events = append(events, *event)
			s.metrics.ObserveAdjudication(string(action), "success")
		}
		result.Results = append(result.Results, item)
	}

	s.dispatcher.DispatchBatch(ctx, actor, action, events, *result, middleware.GetRequestID(ctx))
	return result, nil
}

// itemMessage reduces an error to the short form reported per bulk item.
func itemMessage(err error) string {
	var coded *pkgerrors.Error
	if errors.As(err, &coded) {
		return coded.Message
	}
	return "adjudication failed"
}
