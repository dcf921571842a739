// Package bridge ingests OpenTelemetry spans produced by instrumented AI
// SDKs and converts them into Callisto events, so workloads that already
// emit distributed traces need no separate instrumentation.
//
// The bridge is an sdktrace.SpanProcessor. Register it on a TracerProvider
// (directly or via NewTracerProvider) and every completed span that belongs
// to the AI domain becomes one event:
//
//	proc, _ := bridge.NewSpanProcessor(&bridge.Config{Store: store})
//	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(proc))
//
// # Recognition
//
// Spans qualify when their name carries a recognized prefix ("ai.",
// "gen_ai.") or their attributes include a sentinel key ("ai.operationId",
// "gen_ai.system", "gen_ai.operation.name"). Internal provider sub-spans
// (".doGenerate", ".doStream", ".doEmbed" suffixes) are skipped so one
// logical call is not double-counted; tool-call spans are always treated as
// top-level.
//
// Both the vendor attribute convention ("ai.*", taking priority) and the
// OpenTelemetry GenAI semantic convention ("gen_ai.*") are understood.
//
// # Persistence
//
// Span completion callbacks never block the tracing pipeline: saves run
// fire-and-forget, tracked in a pending set. ForceFlush waits for the set
// to drain; Shutdown is equivalent to ForceFlush. Save failures reach the
// configured error callback or the log, never the host pipeline.
package bridge
