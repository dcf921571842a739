package traces

import (
	"sort"
	"strings"

	"mercator-hq/callisto/pkg/event"
)

// predicate is one independent filter condition.
type predicate func(*event.Event) bool

// Filter restricts events to terminal events matching every active filter in
// the query. A query with no filters returns all terminal events. A nil
// query behaves like an empty one.
func Filter(events []*event.Event, q *event.TraceQuery) []*event.Event {
	preds := buildPredicates(q)

	out := make([]*event.Event, 0, len(events))
	for _, e := range events {
		if !e.Type.Terminal() {
			continue
		}
		if matchesAll(e, preds) {
			out = append(out, e)
		}
	}
	return out
}

// buildPredicates constructs one predicate per active filter. Predicates are
// orthogonal and order-independent.
func buildPredicates(q *event.TraceQuery) []predicate {
	if q == nil {
		return nil
	}

	var preds []predicate

	if q.RequestID != "" {
		needle := strings.ToLower(q.RequestID)
		preds = append(preds, func(e *event.Event) bool {
			return strings.Contains(strings.ToLower(e.RequestID), needle)
		})
	}

	if q.Query != "" {
		needle := strings.ToLower(q.Query)
		preds = append(preds, func(e *event.Event) bool {
			return strings.Contains(strings.ToLower(e.RequestID), needle) ||
				strings.Contains(strings.ToLower(e.Model), needle) ||
				strings.Contains(strings.ToLower(e.Provider), needle)
		})
	}

	if q.Model != "" {
		needle := strings.ToLower(q.Model)
		preds = append(preds, func(e *event.Event) bool {
			return strings.Contains(strings.ToLower(e.Model), needle)
		})
	}

	if q.Provider != "" {
		needle := strings.ToLower(q.Provider)
		preds = append(preds, func(e *event.Event) bool {
			return strings.Contains(strings.ToLower(e.Provider), needle)
		})
	}

	if q.MinCost != nil {
		min := *q.MinCost
		preds = append(preds, func(e *event.Event) bool {
			return e.Cost != nil && *e.Cost >= min
		})
	}

	if q.MinDuration != nil {
		min := *q.MinDuration
		preds = append(preds, func(e *event.Event) bool {
			return e.Duration != nil && *e.Duration >= min
		})
	}

	if q.Status != "" {
		// "success" selects request.end; anything else selects request.error.
		want := event.RequestError
		if q.Status == string(event.StatusSuccess) {
			want = event.RequestEnd
		}
		preds = append(preds, func(e *event.Event) bool {
			return e.Type == want
		})
	}

	if q.From != nil {
		from := *q.From
		preds = append(preds, func(e *event.Event) bool {
			return !e.Time.Before(from)
		})
	}

	if q.To != nil {
		to := *q.To
		preds = append(preds, func(e *event.Event) bool {
			return !e.Time.After(to)
		})
	}

	return preds
}

func matchesAll(e *event.Event, preds []predicate) bool {
	for _, p := range preds {
		if !p(e) {
			return false
		}
	}
	return true
}

// SortByTimeDesc returns a new slice sorted descending by event time. The
// sort is stable and the input is not mutated.
func SortByTimeDesc(events []*event.Event) []*event.Event {
	out := make([]*event.Event, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.After(out[j].Time)
	})
	return out
}

// Paginate returns the contiguous slice [offset, offset+limit). An offset at
// or past the end yields an empty result; there is no wraparound. A limit of
// zero or less means no limit.
func Paginate(events []*event.Event, limit, offset int) []*event.Event {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(events) {
		return []*event.Event{}
	}

	end := len(events)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return events[offset:end]
}
