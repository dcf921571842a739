// Package monitor instruments request/response lifecycles around calls to a
// generative-model provider. Each lifecycle phase is an independent hook that
// measures wall time, CPU time, and heap allocation deltas, optionally scrubs
// captured content, and emits exactly one immutable Event to a Store.
//
// # Lifecycle
//
//	rc := &monitor.RequestContext{RequestID: id, Provider: "openai", Model: "gpt-4o"}
//	m.OnRequest(ctx, rc)
//	resp, err := client.Call(...)
//	if err != nil {
//	    m.OnError(ctx, rc, err)
//	} else {
//	    m.OnResponse(ctx, rc, &monitor.Result{Output: resp.Text, Usage: resp.Usage})
//	}
//
// A RequestContext is owned by exactly one logical request; concurrent
// requests each need their own instance.
//
// # Failure model
//
// Telemetry must never abort the instrumented workload: SaveEvent failures
// are caught at the monitor boundary and routed to the configured error
// callback, or logged and swallowed.
//
// # Timing counters
//
// Wall clock, CPU time and allocation counters come from a pluggable
// PlatformTimer. The default implementation uses the host process counters
// (getrusage on unix, runtime.ReadMemStats for allocations); supply a fake
// in tests.
package monitor
