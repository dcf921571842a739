package traces

import (
	"time"

	"mercator-hq/callisto/pkg/event"
)

// ToSummary projects a terminal event into a TraceSummary. Optional numeric
// fields carry over only when present on the event; duration defaults to
// zero for the start-time computation.
func ToSummary(e *event.Event) *event.TraceSummary {
	duration := 0.0
	if e.Duration != nil {
		duration = *e.Duration
	}

	status := event.StatusSuccess
	if e.Type == event.RequestError {
		status = event.StatusError
	}

	usage := event.ExtractTokens(e.Payload)

	return &event.TraceSummary{
		RequestID:        e.RequestID,
		Provider:         e.Provider,
		Model:            e.Model,
		StartTime:        e.Time.Add(-time.Duration(duration * float64(time.Millisecond))),
		EndTime:          e.Time,
		Duration:         duration,
		Cost:             e.Cost,
		CPUTime:          e.CPUTime,
		Allocations:      e.Allocations,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		Status:           status,
	}
}

// List runs the canonical query pipeline over an event sequence and returns
// one page of summaries. Total counts the filtered, unpaginated set.
func List(events []*event.Event, q *event.TraceQuery) *event.TracePage {
	filtered := Filter(events, q)
	ordered := SortByTimeDesc(filtered)

	limit, offset := 0, 0
	if q != nil {
		limit, offset = q.Limit, q.Offset
	}

	page := Paginate(ordered, limit, offset)
	items := make([]*event.TraceSummary, 0, len(page))
	for _, e := range page {
		items = append(items, ToSummary(e))
	}

	return &event.TracePage{
		Items:  items,
		Total:  len(filtered),
		Limit:  limit,
		Offset: offset,
	}
}
