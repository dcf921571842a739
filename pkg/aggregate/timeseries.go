package aggregate

import (
	"sort"
	"time"

	"mercator-hq/callisto/pkg/event"
)

// DefaultBucketWidth is the time-series bucket width used when none is
// configured.
const DefaultBucketWidth = 5 * time.Minute

// Aggregator builds time series and rollups from event sequences.
type Aggregator struct {
	// BucketWidth is the fixed bucket size for time series.
	BucketWidth time.Duration
}

// NewAggregator creates an aggregator with the given bucket width. A zero or
// negative width falls back to DefaultBucketWidth.
func NewAggregator(bucketWidth time.Duration) *Aggregator {
	if bucketWidth <= 0 {
		bucketWidth = DefaultBucketWidth
	}
	return &Aggregator{BucketWidth: bucketWidth}
}

// bucket accumulates one time-series interval.
type bucket struct {
	requests         int
	cost             float64
	durationSum      float64
	count            int // Divisor for the duration mean
	errors           int
	promptTokens     int
	completionTokens int
}

// BuildTimeSeries buckets terminal events by floor(time / width) and derives
// one sparse, ascending series per metric. The duration series is the
// per-bucket arithmetic mean; all other series are sums or counts.
func (a *Aggregator) BuildTimeSeries(events []*event.Event) *event.TimeSeries {
	buckets := make(map[int64]*bucket)

	for _, e := range events {
		if !e.Type.Terminal() {
			continue
		}

		key := e.Time.UnixMilli() - e.Time.UnixMilli()%a.BucketWidth.Milliseconds()
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}

		b.requests++
		b.count++
		if e.Cost != nil {
			b.cost += *e.Cost
		}
		if e.Duration != nil {
			b.durationSum += *e.Duration
		}
		if e.Type.IsError() {
			b.errors++
		}

		usage := event.ExtractTokens(e.Payload)
		b.promptTokens += usage.PromptTokens
		b.completionTokens += usage.CompletionTokens
	}

	keys := make([]int64, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	ts := &event.TimeSeries{}
	for _, key := range keys {
		b := buckets[key]
		t := time.UnixMilli(key).UTC()

		ts.Requests = append(ts.Requests, point(t, float64(b.requests)))
		ts.Cost = append(ts.Cost, point(t, b.cost))
		ts.Duration = append(ts.Duration, point(t, b.durationSum/float64(b.count)))
		ts.Errors = append(ts.Errors, point(t, float64(b.errors)))
		ts.PromptTokens = append(ts.PromptTokens, point(t, float64(b.promptTokens)))
		ts.CompletionTokens = append(ts.CompletionTokens, point(t, float64(b.completionTokens)))
	}

	return ts
}

// BuildProviderStats groups terminal events by (provider, model) and derives
// one rollup per group. Output order is map iteration order; callers must
// not rely on it.
func (a *Aggregator) BuildProviderStats(events []*event.Event) []*event.ProviderStats {
	type key struct{ provider, model string }
	groups := make(map[key]*event.ProviderStats)
	durationSums := make(map[key]float64)

	for _, e := range events {
		if !e.Type.Terminal() {
			continue
		}

		k := key{e.Provider, e.Model}
		stats, ok := groups[k]
		if !ok {
			stats = &event.ProviderStats{Provider: e.Provider, Model: e.Model}
			groups[k] = stats
		}

		stats.Requests++
		if e.Cost != nil {
			stats.Cost += *e.Cost
		}
		if e.Duration != nil {
			durationSums[k] += *e.Duration
		}
		// Live average maintained after every event.
		stats.AvgDuration = durationSums[k] / float64(stats.Requests)

		if e.Type.IsError() {
			stats.Errors++
		}

		usage := event.ExtractTokens(e.Payload)
		stats.PromptTokens += usage.PromptTokens
		stats.CompletionTokens += usage.CompletionTokens
		stats.TotalTokens += usage.Total()

		if stats.TotalTokens > 0 {
			stats.CostPer1kTokens = stats.Cost / float64(stats.TotalTokens) * 1000
		} else {
			stats.CostPer1kTokens = 0
		}
	}

	out := make([]*event.ProviderStats, 0, len(groups))
	for _, stats := range groups {
		out = append(out, stats)
	}
	return out
}

func point(t time.Time, v float64) event.TimeSeriesPoint {
	return event.TimeSeriesPoint{Time: t, Value: v}
}
