// Callisto is a telemetry capture and aggregation engine for LLM request
// and response lifecycles.
//
// It records lifecycle events (request/tool start, end, error) from
// in-process instrumentation and from OpenTelemetry spans, scrubs sensitive
// content, persists events to a pluggable store, and serves aggregate
// statistics, time series, and trace listings over HTTP.
//
// Usage:
//
//	# Start the query server with default configuration
//	callisto serve
//
//	# Start with a custom configuration file
//	callisto serve --config /etc/callisto/callisto.yaml
//
//	# Export stored events to JSON or CSV
//	callisto export --format csv --output events.csv
//
//	# Show version information
//	callisto version
package main

func main() {
	Execute()
}
