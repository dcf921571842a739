// Package aggregate turns a flat event log into bucketed time series,
// per-provider rollups, and summary statistics. Every entry point is a pure
// function over an ordered event sequence; nothing here touches storage.
//
// Only terminal events (request.end, request.error) count toward any
// aggregate. Buckets are floor-aligned to the configured width and sparse:
// a bucket with no events produces no point. The duration series reports the
// per-bucket mean; every other series is a sum or count.
//
// These functions are the reference semantics for the Store contract's
// GetStats and GetMetrics operations. A backend that aggregates server-side
// (for example inside a SQL query) must reproduce them.
package aggregate
