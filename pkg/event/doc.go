// Package event defines the shared telemetry vocabulary for Callisto: the
// Event record, its derived read-only projections, and the storage contract
// every backend implements.
//
// # Events
//
// An Event is one immutable record of a lifecycle phase for a request or a
// tool call. Six kinds exist:
//
//   - request.start / request.end / request.error
//   - tool.start / tool.end / tool.error
//
// All events of one logical call share a RequestID. Under normal operation a
// request produces exactly one request.start and at most one terminal event
// (request.end or request.error). Duration, cost, CPU time and allocation
// deltas appear only on terminal events; they are pointer fields so that
// "absent" stays distinguishable from "zero".
//
// # Payload
//
// Payload is a schema-less map carrying arbitrary structured detail (prompts,
// tool arguments, usage counters, enrichment metadata). The recognized
// sub-keys are a soft convention, not a schema:
//
//	request, timing, retry, sampling, environment, tool, usage, otel
//
// # Storage
//
// Store is the minimal contract (SaveEvent, GetStats). Backends advertise
// richer query surfaces through the optional MetricsStore, TraceStore,
// EventStore and PrunableStore interfaces; callers branch on a type assertion
// at the call site:
//
//	if ts, ok := store.(event.TraceStore); ok {
//	    page, err = ts.ListTraces(ctx, query)
//	}
package event
