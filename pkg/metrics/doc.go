// Package metrics exposes Prometheus metrics for the telemetry pipeline
// itself: how many events each producer emitted, how storage writes behave,
// and how often they fail. The collector registers everything against a
// caller-supplied registry so multiple engines can coexist in one process.
package metrics
