package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"mercator-hq/callisto/pkg/event"
	"mercator-hq/callisto/pkg/metrics"
)

// saveTimeout bounds each fire-and-forget store write so a wedged backend
// cannot pin goroutines forever.
const saveTimeout = 10 * time.Second

// Config contains configuration for the span bridge.
type Config struct {
	// Store receives the converted events. Required.
	Store event.Store

	// CaptureContent controls whether prompt, response, and tool-result
	// content from span attributes is copied into event payloads.
	CaptureContent bool

	// Filter, when set, is consulted after the built-in recognition rules;
	// returning false drops the span.
	Filter func(span sdktrace.ReadOnlySpan) bool

	// Transform, when set, may replace the constructed event before it is
	// persisted. Returning nil drops the event.
	Transform func(e *event.Event) *event.Event

	// RequestID, when set, overrides the deterministic trace/span derived
	// request identifier.
	RequestID func(span sdktrace.ReadOnlySpan) string

	// OnError receives store failures. When nil, failures are logged.
	OnError func(err error)

	// Metrics, when set, counts converted events and store errors.
	Metrics *metrics.Collector
}

// SpanProcessor converts completed AI spans into events and persists them
// asynchronously. It satisfies sdktrace.SpanProcessor.
type SpanProcessor struct {
	cfg    *Config
	logger *slog.Logger

	pending sync.WaitGroup
}

var _ sdktrace.SpanProcessor = (*SpanProcessor)(nil)

// NewSpanProcessor creates a span processor backed by cfg.Store.
func NewSpanProcessor(cfg *Config) (*SpanProcessor, error) {
	if cfg == nil || cfg.Store == nil {
		return nil, fmt.Errorf("bridge: store is required")
	}
	return &SpanProcessor{
		cfg:    cfg,
		logger: slog.Default().With("component", "bridge"),
	}, nil
}

// OnStart is a no-op; events are built from completed spans only.
func (p *SpanProcessor) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {}

// OnEnd converts a recognized span into an event and saves it without
// blocking the tracing pipeline.
func (p *SpanProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	attrs := extractAttributes(s.Attributes())
	if !p.accepts(s, attrs) {
		return
	}

	e := p.convert(s, attrs)
	if p.cfg.Transform != nil {
		if e = p.cfg.Transform(e); e == nil {
			return
		}
	}

	p.pending.Add(1)
	go func() {
		defer p.pending.Done()
		p.save(e)
	}()
}

// ForceFlush blocks until every outstanding save has completed or failed,
// or the context expires.
func (p *SpanProcessor) ForceFlush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown drains outstanding saves. Equivalent to ForceFlush.
func (p *SpanProcessor) Shutdown(ctx context.Context) error {
	return p.ForceFlush(ctx)
}

// accepts applies the recognition rules: domain name prefix or sentinel
// attribute, not an internal sub-span (unless a tool call), then the
// caller's filter.
func (p *SpanProcessor) accepts(s sdktrace.ReadOnlySpan, attrs spanAttributes) bool {
	name := s.Name()
	if !hasDomainName(name) && !hasSentinelAttribute(s.Attributes()) {
		return false
	}
	if isInternalSpan(name) && !attrs.isToolCall(name) {
		return false
	}
	if p.cfg.Filter != nil && !p.cfg.Filter(s) {
		return false
	}
	return true
}

// convert builds the event for a completed span.
func (p *SpanProcessor) convert(s sdktrace.ReadOnlySpan, attrs spanAttributes) *event.Event {
	isTool := attrs.isToolCall(s.Name())
	isErr := s.Status().Code == codes.Error

	var typ event.Type
	switch {
	case isTool && isErr:
		typ = event.ToolError
	case isTool:
		typ = event.ToolEnd
	case isErr:
		typ = event.RequestError
	default:
		typ = event.RequestEnd
	}

	model := NormalizeModelName(attrs.model)
	provider := NormalizeProviderName(attrs.provider)
	if provider == "" {
		provider = InferProvider(model)
	}

	duration := float64(s.EndTime().Sub(s.StartTime())) / float64(time.Millisecond)

	sc := s.SpanContext()
	payload := event.Payload{
		"otel": event.Payload{
			"trace_id":  sc.TraceID().String(),
			"span_id":   sc.SpanID().String(),
			"span_name": s.Name(),
		},
	}
	if parent := s.Parent(); parent.IsValid() {
		payload["otel"].(event.Payload)["parent_span_id"] = parent.SpanID().String()
	}
	if attrs.operation != "" {
		payload["operation"] = attrs.operation
	}

	if attrs.hasUsage {
		payload["usage"] = event.Payload{
			"prompt_tokens":     attrs.promptTokens,
			"completion_tokens": attrs.completionTokens,
		}
	}

	timing := event.Payload{}
	if attrs.msToFirstChunk != nil {
		timing["ms_to_first_chunk"] = *attrs.msToFirstChunk
	}
	if attrs.msToFinish != nil {
		timing["ms_to_finish"] = *attrs.msToFinish
	}
	if attrs.avgCompletionTokensS != nil {
		timing["avg_completion_tokens_per_second"] = *attrs.avgCompletionTokensS
	}
	if len(timing) > 0 {
		payload["timing"] = timing
	}

	if isTool {
		tool := event.Payload{}
		if attrs.toolName != "" {
			tool["name"] = attrs.toolName
		}
		if attrs.toolID != "" {
			tool["id"] = attrs.toolID
		}
		if attrs.toolArgs != nil {
			tool["args"] = attrs.toolArgs
		}
		// Content gating covers the result only; invocation metadata is
		// always recorded.
		if p.cfg.CaptureContent && attrs.toolResult != nil {
			tool["result"] = attrs.toolResult
		}
		if len(tool) > 0 {
			payload["tool"] = tool
		}
	}

	if p.cfg.CaptureContent {
		if attrs.prompt != nil {
			payload["prompt"] = attrs.prompt
		}
		if attrs.response != nil {
			payload["response"] = attrs.response
		}
	}

	if isErr {
		payload["error"] = event.Payload{"message": s.Status().Description}
	}
	if len(attrs.metadata) > 0 {
		payload["metadata"] = attrs.metadata
	}

	requestID := p.requestID(s)
	now := time.Now().UTC()

	return &event.Event{
		ID:        uuid.New().String(),
		Type:      typ,
		RequestID: requestID,
		Time:      s.EndTime(),
		CreatedAt: now,
		Duration:  &duration,
		Provider:  provider,
		Model:     model,
		Payload:   payload,
	}
}

// requestID derives a stable identifier from the trace and span ids so the
// same span always maps to the same request.
func (p *SpanProcessor) requestID(s sdktrace.ReadOnlySpan) string {
	if p.cfg.RequestID != nil {
		if id := p.cfg.RequestID(s); id != "" {
			return id
		}
	}
	sc := s.SpanContext()
	return "req_" + sc.TraceID().String()[:8] + "-" + sc.SpanID().String()[:8]
}

// save persists one event. Failures reach the error callback or the log and
// never the host tracing pipeline.
func (p *SpanProcessor) save(e *event.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	start := time.Now()
	err := p.cfg.Store.SaveEvent(ctx, e)
	if p.cfg.Metrics != nil {
		p.cfg.Metrics.ObserveSaveDuration("bridge", time.Since(start))
	}
	if err != nil {
		if p.cfg.Metrics != nil {
			p.cfg.Metrics.RecordStoreError("bridge")
		}
		if p.cfg.OnError != nil {
			p.cfg.OnError(err)
			return
		}
		p.logger.Error("failed to save span event",
			"request_id", e.RequestID,
			"event_type", string(e.Type),
			"error", err)
		return
	}

	if p.cfg.Metrics != nil {
		p.cfg.Metrics.RecordEvent("bridge", e)
	}
}
