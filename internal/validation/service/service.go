package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"skgov/internal/fanout"
	"skgov/internal/identity"
	"skgov/internal/platform/metrics"
	"skgov/internal/platform/middleware"
	"skgov/internal/validation"
	"skgov/internal/youth"
	pkgerrors "skgov/pkg/errors"
	"skgov/pkg/platform/sentinel"
	"skgov/pkg/platform/tx"
)

// Dispatcher is the post-commit fan-out boundary. The concrete
// implementation lives in internal/fanout; tests substitute a recorder.
type Dispatcher interface {
	Dispatch(ctx context.Context, e fanout.Event)
	DispatchBatch(ctx context.Context, actor validation.Actor, action validation.Action, events []fanout.Event, result validation.BulkResult, requestID string)
}

// Deps wires the coordinator's collaborators explicitly; there is no
// shared singleton state, which keeps every operation testable against
// in-memory implementations.
type Deps struct {
	Runner     tx.Runner
	Store      validation.Store
	Profiles   youth.Store
	Identity   identity.Resolver
	Parser     *validation.ConflictParser
	Dispatcher Dispatcher
	Logger     *slog.Logger
	Metrics    *metrics.Metrics

	// Now is a clock seam for tests; defaults to time.Now.
	Now func() time.Time
}

// Service is the validation transaction coordinator plus the queue read
// path. It is the sole writer of response-status transitions and
// queue-entry deletion.
type Service struct {
	runner     tx.Runner
	store      validation.Store
	profiles   youth.Store
	identity   identity.Resolver
	parser     *validation.ConflictParser
	dispatcher Dispatcher
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	now        func() time.Time
}

func New(d Deps) *Service {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		runner:     d.Runner,
		store:      d.Store,
		profiles:   d.Profiles,
		identity:   d.Identity,
		parser:     d.Parser,
		dispatcher: d.Dispatcher,
		logger:     d.Logger,
		metrics:    d.Metrics,
		tracer:     otel.Tracer("skgov/validation"),
		now:        now,
	}
}

// Adjudicate moves one queued response to its terminal state inside a
// single transaction, then fans out post-commit side effects. The
// operation is not idempotent and is never retried automatically.
func (s *Service) Adjudicate(ctx context.Context, queueID uuid.UUID, action validation.Action, comments string, actor validation.Actor, updateContactInfo bool) (*validation.AdjudicationResult, error) {
	ctx, span := s.tracer.Start(ctx, "validation.adjudicate")
	defer span.End()

	result, event, err := s.adjudicateOnce(ctx, queueID, action, comments, actor, updateContactInfo)
	if err != nil {
		s.metrics.ObserveAdjudication(string(action), "failure")
		return nil, err
	}
	s.metrics.ObserveAdjudication(string(action), "success")

	// Post-commit: best-effort, never affects the reported outcome.
	s.dispatcher.Dispatch(ctx, *event)
	return result, nil
}

// adjudicateOnce validates input, runs the transactional core, and
// translates failures into the coded error taxonomy. It does not dispatch
// fan-out; callers decide per-item versus batched fan-out.
func (s *Service) adjudicateOnce(ctx context.Context, queueID uuid.UUID, action validation.Action, comments string, actor validation.Actor, updateContactInfo bool) (*validation.AdjudicationResult, *fanout.Event, error) {
	if !action.Valid() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeBadRequest, "action must be approve or reject")
	}

	var (
		result *validation.AdjudicationResult
		event  *fanout.Event
	)
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		result, event, err = s.adjudicateInTx(ctx, queueID, action, comments, actor, updateContactInfo)
		return err
	})
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeNotFound) || pkgerrors.Is(err, pkgerrors.CodeBadRequest) {
			return nil, nil, err
		}
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, nil, pkgerrors.Wrap(err, pkgerrors.CodeConflict, "duplicate was adjudicated concurrently")
		}
		s.logger.ErrorContext(ctx, "adjudication transaction failed",
			"queue_id", queueID,
			"action", action,
			"error", err,
		)
		return nil, nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "adjudication failed")
	}
	return result, event, nil
}

// adjudicateInTx is the atomic core. Everything it writes becomes visible
// together on commit or not at all.
func (s *Service) adjudicateInTx(ctx context.Context, queueID uuid.UUID, action validation.Action, comments string, actor validation.Actor, updateContactInfo bool) (*validation.AdjudicationResult, *fanout.Event, error) {
	qc, err := s.store.GetQueueContext(ctx, queueID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil, pkgerrors.Wrap(err, pkgerrors.CodeNotFound, "queue entry not found")
	}
	if err != nil {
		return nil, nil, err
	}

	desc := s.parser.Parse(qc.Response.ValidationNotes)
	// "Confirmed same person, update contact": the reviewer asked for the
	// contact correction and pre-screening extracted a usable new segment.
	samePerson := updateContactInfo && desc != nil && !desc.New.IsZero()

	now := s.now()
	result := &validation.AdjudicationResult{
		QueueID:     qc.Entry.ID,
		ResponseID:  qc.Response.ID,
		Status:      action.TerminalStatus(),
		ValidatedBy: actor.ID,
		ValidatedAt: now,
	}

	if action == validation.ActionApprove && samePerson && qc.Response.BatchID != nil {
		if err := s.resolveDuplicate(ctx, qc, actor, now, result); err != nil {
			return nil, nil, err
		}
	}

	if err := s.store.SetResponseStatus(ctx, qc.Response.ID, result.Status, actor.ID, now, comments); err != nil {
		return nil, nil, err
	}

	if action == validation.ActionApprove {
		if _, err := s.identity.Resolve(ctx, identity.KindForRole(actor.Role), actor.ID, actor.Name); err != nil {
			return nil, nil, err
		}
		if samePerson {
			if err := s.profiles.UpdateContact(ctx, qc.Profile.ID, desc.New.Contact, desc.New.Email); err != nil {
				return nil, nil, err
			}
		}
		// No-op when the profile is already validated: approving again
		// must never rewrite who confirmed it first.
		if _, err := s.profiles.MarkValidated(ctx, qc.Profile.ID, actor.ID, now); err != nil {
			return nil, nil, err
		}
	}

	if err := s.store.DeleteQueueEntry(ctx, qc.Entry.ID); err != nil {
		return nil, nil, err
	}

	event := &fanout.Event{
		Action:    action,
		Actor:     actor,
		Result:    *result,
		YouthID:   qc.Profile.ID,
		YouthName: qc.Profile.FullName(),
		Barangay:  qc.Profile.Barangay,
		RequestID: middleware.GetRequestID(ctx),
	}
	if qc.Profile.Email != nil {
		event.YouthEmail = *qc.Profile.Email
	}
	return result, event, nil
}

// resolveDuplicate reconciles the newest competing submission for the same
// youth and batch. A validated duplicate is superseded in place; a pending
// or rejected one is hard-deleted together with its queue entry. Older
// strays beyond the newest are deliberately left untouched.
func (s *Service) resolveDuplicate(ctx context.Context, qc *validation.QueueContext, actor validation.Actor, now time.Time, result *validation.AdjudicationResult) error {
	dup, err := s.store.FindLatestDuplicate(ctx, *qc.Response.BatchID, qc.Response.YouthID, qc.Response.ID)
	if err != nil {
		return err
	}
	if dup == nil {
		return nil
	}

	if dup.Status == validation.StatusValidated {
		note := supersedeNote(actor.ID, now, qc.Response.ID)
		if err := s.store.SupersedeResponse(ctx, dup.ResponseID, qc.Response.ID, note); err != nil {
			return err
		}
		result.SupersededResponseID = &dup.ResponseID
		return nil
	}

	if err := s.store.DeleteResponse(ctx, dup.ResponseID); err != nil {
		return err
	}
	result.DeletedResponseID = &dup.ResponseID
	return nil
}

// supersedeNote is appended to a displaced validated response. The
// superseded_by column is the machine-readable signal; this note keeps the
// human-readable trail alongside it.
func supersedeNote(actorID string, at time.Time, newResponseID uuid.UUID) string {
	return fmt.Sprintf("SUPERSEDED by response %s: approved by %s at %s.",
		newResponseID, actorID, at.UTC().Format(time.RFC3339))
}
