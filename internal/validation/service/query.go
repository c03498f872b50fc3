package service

import (
	"context"
	"sort"
	"strings"

	"skgov/internal/validation"
	pkgerrors "skgov/pkg/errors"
)

// List returns one page of the review queue listing plus the total match
// count. The status filter selects the view: pending/validated read the
// resident queue, rejected reads dequeued rejected responses, anything
// else (including empty) reads the union of both. Sorting and pagination
// happen here, after the views are combined, so union pages interleave
// correctly.
func (s *Service) List(ctx context.Context, f validation.ListFilters) ([]validation.QueueItem, int, error) {
	ctx, span := s.tracer.Start(ctx, "validation.list")
	defer span.End()

	items, err := s.loadView(ctx, f)
	if err != nil {
		s.logger.ErrorContext(ctx, "queue listing failed", "status", f.Status, "error", err)
		return nil, 0, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "queue listing failed")
	}

	sortItems(items, f.SortBy, f.SortOrder)

	total := len(items)
	page, limit := f.Normalize()
	start := (page - 1) * limit
	if start >= total {
		return []validation.QueueItem{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return items[start:end], total, nil
}

func (s *Service) loadView(ctx context.Context, f validation.ListFilters) ([]validation.QueueItem, error) {
	switch f.Status {
	case string(validation.StatusPending), string(validation.StatusValidated):
		return s.store.ListResident(ctx, f)
	case string(validation.StatusRejected):
		return s.store.ListDequeuedRejected(ctx, f)
	default:
		resident, err := s.store.ListResident(ctx, f)
		if err != nil {
			return nil, err
		}
		dequeued, err := s.store.ListDequeuedRejected(ctx, f)
		if err != nil {
			return nil, err
		}
		return append(resident, dequeued...), nil
	}
}

// Stats returns the dashboard aggregates.
func (s *Service) Stats(ctx context.Context) (*validation.Stats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "queue stats failed", "error", err)
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeInternal, "queue stats failed")
	}
	s.metrics.SetQueueDepth(stats.Pending)
	return stats, nil
}

// sortItems orders a combined listing by an allow-listed key. Unknown keys
// fall back to newest-first submission order rather than erroring, so
// stale clients keep working.
func sortItems(items []validation.QueueItem, sortBy, sortOrder string) {
	asc := strings.EqualFold(sortOrder, "asc")

	var less func(a, b validation.QueueItem) bool
	switch sortBy {
	case "firstName":
		less = func(a, b validation.QueueItem) bool { return a.FirstName < b.FirstName }
	case "lastName":
		less = func(a, b validation.QueueItem) bool { return a.LastName < b.LastName }
	case "age":
		less = func(a, b validation.QueueItem) bool { return a.Age < b.Age }
	case "barangay":
		less = func(a, b validation.QueueItem) bool { return a.Barangay < b.Barangay }
	case "validator":
		less = func(a, b validation.QueueItem) bool {
			return derefString(a.ValidatorName) < derefString(b.ValidatorName)
		}
	case "score":
		less = func(a, b validation.QueueItem) bool {
			return derefInt(a.ValidationScore) < derefInt(b.ValidationScore)
		}
	case "submittedAt":
		less = func(a, b validation.QueueItem) bool { return a.SubmittedAt.Before(b.SubmittedAt) }
	default:
		// Default ordering ignores sortOrder: newest submissions first.
		sort.SliceStable(items, func(i, j int) bool {
			return items[j].SubmittedAt.Before(items[i].SubmittedAt)
		})
		return
	}

	sort.SliceStable(items, func(i, j int) bool {
		if asc {
			return less(items[i], items[j])
		}
		return less(items[j], items[i])
	})
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
