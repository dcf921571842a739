package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"mercator-hq/callisto/pkg/event"
	"mercator-hq/callisto/pkg/metrics"
	"mercator-hq/callisto/pkg/scrub"
)

// Config contains configuration for the Monitor.
type Config struct {
	// Store receives every emitted event. Required.
	Store event.Store

	// CaptureContent enables recording of message, response and tool-result
	// text. When enabled, all captured content passes through a scrubber
	// before it reaches the store.
	CaptureContent bool

	// Scrubbing configures the scrubber used for captured content. Nil
	// means the default PII+secrets posture.
	Scrubbing *scrub.Config

	// Pricing is the per-model cost table used when a result carries usage
	// counters but no caller-supplied cost. Nil means DefaultPricing.
	Pricing PricingTable

	// Timer supplies wall-clock, CPU and allocation counters. Nil means
	// the host process counters.
	Timer PlatformTimer

	// OnError receives storage failures. When nil, failures are logged and
	// swallowed. Telemetry errors never reach the instrumented workload
	// either way.
	OnError func(error)

	// Metrics is an optional Prometheus collector.
	Metrics *metrics.Collector
}

// Monitor orchestrates the request lifecycle: it times each phase, scrubs
// captured content, and emits one event per hook to the configured store.
// A Monitor is safe for concurrent use; per-request state lives on the
// caller's RequestContext.
type Monitor struct {
	store    event.Store
	scrubber *scrub.Scrubber
	capture  bool
	pricing  PricingTable
	timer    PlatformTimer
	onError  func(error)
	metrics  *metrics.Collector
	logger   *slog.Logger
}

// NewMonitor creates a monitor from the configuration.
func NewMonitor(cfg *Config) (*Monitor, error) {
	if cfg == nil || cfg.Store == nil {
		return nil, errors.New("monitor: store is required")
	}

	timer := cfg.Timer
	if timer == nil {
		timer = SystemTimer()
	}
	pricing := cfg.Pricing
	if pricing == nil {
		pricing = DefaultPricing()
	}

	m := &Monitor{
		store:   cfg.Store,
		capture: cfg.CaptureContent,
		pricing: pricing,
		timer:   timer,
		onError: cfg.OnError,
		metrics: cfg.Metrics,
		logger:  slog.Default().With("component", "monitor"),
	}

	if cfg.CaptureContent {
		scrubCfg := cfg.Scrubbing
		if scrubCfg == nil {
			scrubCfg = scrub.DefaultConfig()
		}
		m.scrubber = scrub.NewScrubber(scrubCfg)
	}

	return m, nil
}

// OnRequest records the start counters on the context and emits a
// request.start event. Captured request messages and params are scrubbed
// before they enter the payload.
func (m *Monitor) OnRequest(ctx context.Context, rc *RequestContext) {
	rc.scratch = timingScratch{
		started:   true,
		startTime: m.timer.Now(),
		cpuMark:   m.timer.CPUTime(),
		allocMark: m.timer.AllocatedBytes(),
	}

	payload := m.basePayload(rc)
	if m.capture {
		request := event.Payload{}
		if rc.Messages != nil {
			request["messages"] = m.scrubber.ScrubMessages(rc.Messages)
		}
		if rc.Params != nil {
			request["params"] = m.scrubber.ScrubObject(rc.Params)
		}
		payload["request"] = request
	}

	m.emit(ctx, rc, event.RequestStart, rc.scratch.startTime, payload, nil)
}

// OnResponse computes the elapsed wall time, CPU delta and allocation delta
// since OnRequest and emits a request.end event. If the result reports a
// model and the context had none, the model is backfilled.
func (m *Monitor) OnResponse(ctx context.Context, rc *RequestContext, res *Result) {
	now := m.timer.Now()
	tm := m.terminalMetrics(rc, now)

	if res != nil && res.Model != "" && rc.Model == "" {
		rc.Model = res.Model
	}

	payload := m.basePayload(rc)
	if res != nil {
		if res.Usage != nil {
			payload["usage"] = res.Usage
		}
		if m.capture && res.Output != nil {
			if s, ok := stringify(res.Output).(string); ok {
				payload["response"] = m.scrubber.ScrubString(s)
			} else {
				payload["response"] = m.scrubber.ScrubObject(res.Output)
			}
		}
		tm.cost = res.Cost
		if tm.cost == nil && res.Usage != nil {
			tm.cost = m.pricing.Estimate(rc.Provider, rc.Model, event.ExtractTokens(payload))
		}
	}

	m.emit(ctx, rc, event.RequestEnd, now, payload, &tm)
}

// OnError emits a request.error event carrying the error message and a stack
// trace. Timing metrics are computed from whatever scratch state exists; if
// OnRequest was never called they are omitted, not fabricated.
func (m *Monitor) OnError(ctx context.Context, rc *RequestContext, callErr error) {
	now := m.timer.Now()
	tm := m.terminalMetrics(rc, now)

	payload := m.basePayload(rc)
	message := ""
	if callErr != nil {
		message = callErr.Error()
	}
	payload["error"] = event.Payload{
		"message": message,
		"stack":   string(debug.Stack()),
	}

	m.emit(ctx, rc, event.RequestError, now, payload, &tm)
}

// OnToolStart emits a tool.start event. Tool name and id are always
// recorded; content-capture gating never applies to invocation metadata.
func (m *Monitor) OnToolStart(ctx context.Context, rc *RequestContext, tool *ToolCall) {
	payload := m.basePayload(rc)
	payload["tool"] = m.toolPayload(tool)
	m.emit(ctx, rc, event.ToolStart, m.timer.Now(), payload, nil)
}

// OnToolEnd emits a tool.end event. The tool result is captured (scrubbed)
// only when content capture is enabled.
func (m *Monitor) OnToolEnd(ctx context.Context, rc *RequestContext, tool *ToolCall, result any) {
	payload := m.basePayload(rc)
	tp := m.toolPayload(tool)
	if m.capture && result != nil {
		tp["result"] = m.scrubber.ScrubValue(stringify(result))
	}
	payload["tool"] = tp
	m.emit(ctx, rc, event.ToolEnd, m.timer.Now(), payload, nil)
}

// OnToolError emits a tool.error event with the failure message.
func (m *Monitor) OnToolError(ctx context.Context, rc *RequestContext, tool *ToolCall, toolErr error) {
	payload := m.basePayload(rc)
	tp := m.toolPayload(tool)
	if toolErr != nil {
		tp["error"] = toolErr.Error()
	}
	payload["tool"] = tp
	m.emit(ctx, rc, event.ToolError, m.timer.Now(), payload, nil)
}

// terminalMetrics derives the duration/cpu/allocation deltas for a terminal
// event. All fields stay nil when OnRequest never ran.
type terminalMetricsSet struct {
	duration    *float64
	cost        *float64
	cpuTime     *float64
	allocations *int64
}

func (m *Monitor) terminalMetrics(rc *RequestContext, now time.Time) terminalMetricsSet {
	var tm terminalMetricsSet
	if !rc.scratch.started {
		return tm
	}

	duration := float64(now.Sub(rc.scratch.startTime)) / float64(time.Millisecond)
	tm.duration = &duration

	if cpu := m.timer.CPUTime() - rc.scratch.cpuMark; cpu > 0 {
		cpuMs := float64(cpu) / float64(time.Millisecond)
		tm.cpuTime = &cpuMs
	}
	if alloc := m.timer.AllocatedBytes(); alloc >= rc.scratch.allocMark {
		delta := int64(alloc - rc.scratch.allocMark)
		tm.allocations = &delta
	}
	return tm
}

// basePayload starts a payload from the context's enrichment metadata.
func (m *Monitor) basePayload(rc *RequestContext) event.Payload {
	return rc.Metadata.Clone()
}

func (m *Monitor) toolPayload(tool *ToolCall) event.Payload {
	tp := event.Payload{}
	if tool == nil {
		return tp
	}
	tp["id"] = tool.ID
	tp["name"] = tool.Name
	if tool.Args != nil {
		args := any(tool.Args)
		if m.scrubber != nil {
			args = m.scrubber.ScrubObject(tool.Args)
		}
		tp["args"] = args
	}
	return tp
}

// emit constructs the event and hands it to the store. Storage failures are
// recovered here and never propagate to the caller.
func (m *Monitor) emit(ctx context.Context, rc *RequestContext, t event.Type, at time.Time, payload event.Payload, tm *terminalMetricsSet) {
	e := &event.Event{
		ID:            uuid.New().String(),
		Type:          t,
		RequestID:     rc.RequestID,
		SessionID:     rc.SessionID,
		TransactionID: rc.TransactionID,
		Time:          at,
		CreatedAt:     m.timer.Now(),
		Provider:      rc.Provider,
		Model:         rc.Model,
		Payload:       payload,
	}
	if tm != nil {
		e.Duration = tm.duration
		e.Cost = tm.cost
		e.CPUTime = tm.cpuTime
		e.Allocations = tm.allocations
	}

	if m.metrics != nil {
		m.metrics.RecordEvent("monitor", e)
	}

	if err := m.store.SaveEvent(ctx, e); err != nil {
		if m.metrics != nil {
			m.metrics.RecordStoreError("monitor")
		}
		if m.onError != nil {
			m.onError(err)
			return
		}
		m.logger.Error("failed to save event",
			"event_id", e.ID,
			"event_type", string(e.Type),
			"request_id", e.RequestID,
			"error", err,
		)
	}
}

// stringify renders non-string output for capture. Strings pass through;
// everything else uses its Go formatting.
func stringify(v any) any {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return v
	}
}
