// Package server exposes the dashboard query surface over HTTP.
//
// # Routes
//
//   - GET /api/stats   - summary statistics, optional from/to bounds
//   - GET /api/metrics - totals, per-provider rollups, time series
//   - GET /api/traces  - filtered, paginated trace listing
//   - GET /api/events  - raw event log of one request (request_id required)
//   - GET /healthz     - liveness probe
//   - GET /metrics     - Prometheus exposition (when a collector is wired)
//
// Capability checks happen per route: a backend that does not implement an
// optional store capability answers 501 for that route instead of failing
// at startup.
//
// # Lifecycle
//
// Start blocks until the context is cancelled, an OS signal arrives, or the
// listener fails; shutdown is graceful with a configurable timeout.
package server
