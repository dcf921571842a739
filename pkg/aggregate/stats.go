package aggregate

import (
	"mercator-hq/callisto/pkg/event"
)

// ComputeStats summarizes terminal events within the time range. A nil range
// covers everything. This is the reference implementation of the Store
// contract's GetStats operation.
func ComputeStats(events []*event.Event, tr *event.TimeRange) *event.Stats {
	stats := &event.Stats{}

	var durationSum float64
	var durationCount int
	var errors int

	for _, e := range events {
		if !e.Type.Terminal() || !tr.Contains(e.Time) {
			continue
		}

		stats.TotalRequests++
		if e.Cost != nil {
			stats.TotalCost += *e.Cost
		}
		if e.Duration != nil {
			durationSum += *e.Duration
			durationCount++
		}
		if e.Type.IsError() {
			errors++
		}

		usage := event.ExtractTokens(e.Payload)
		stats.PromptTokens += usage.PromptTokens
		stats.CompletionTokens += usage.CompletionTokens
	}

	if durationCount > 0 {
		stats.AvgDuration = durationSum / float64(durationCount)
	}
	if stats.TotalRequests > 0 {
		stats.ErrorRate = float64(errors) / float64(stats.TotalRequests)
	}

	return stats
}

// ComputeMetrics bundles totals, provider rollups and time series for the
// events inside the range: the reference implementation of GetMetrics.
func (a *Aggregator) ComputeMetrics(events []*event.Event, tr *event.TimeRange) *event.Metrics {
	inRange := events
	if tr != nil {
		inRange = make([]*event.Event, 0, len(events))
		for _, e := range events {
			if tr.Contains(e.Time) {
				inRange = append(inRange, e)
			}
		}
	}

	return &event.Metrics{
		Totals:     ComputeStats(inRange, nil),
		ByProvider: a.BuildProviderStats(inRange),
		TimeSeries: a.BuildTimeSeries(inRange),
	}
}
