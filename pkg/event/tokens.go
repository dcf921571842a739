package event

import "encoding/json"

// TokenUsage carries the prompt/completion counters extracted from an event
// payload.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Total returns the combined token count.
func (u TokenUsage) Total() int {
	return u.PromptTokens + u.CompletionTokens
}

// ExtractTokens reads usage counters from an event payload. Providers and
// SDK versions disagree on naming, so three historical conventions are
// accepted in priority order:
//
//  1. camelCase:    promptTokens / completionTokens
//  2. snake_case:   prompt_tokens / completion_tokens
//  3. input/output: input_tokens / output_tokens
//
// Counters are looked up under payload["usage"] first, then on the payload
// itself. Missing counters default to zero.
//
// This is the single token-extraction path shared by the aggregation engine
// and the trace-summary projection, so both views always agree.
func ExtractTokens(p Payload) TokenUsage {
	usage := usageMap(p)
	if usage == nil {
		return TokenUsage{}
	}

	return TokenUsage{
		PromptTokens:     firstInt(usage, "promptTokens", "prompt_tokens", "input_tokens"),
		CompletionTokens: firstInt(usage, "completionTokens", "completion_tokens", "output_tokens"),
	}
}

// usageMap locates the map holding usage counters.
func usageMap(p Payload) map[string]any {
	if p == nil {
		return nil
	}
	switch u := p["usage"].(type) {
	case Payload:
		return u
	case map[string]any:
		return u
	}
	return p
}

// firstInt returns the first key present in m, coerced to int.
func firstInt(m map[string]any, keys ...string) int {
	for _, key := range keys {
		if v, ok := m[key]; ok {
			if n, ok := asInt(v); ok {
				return n
			}
		}
	}
	return 0
}

// asInt coerces the numeric shapes that survive JSON round-trips.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float32:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		if f, err := n.Float64(); err == nil {
			return int(f), true
		}
	}
	return 0, false
}
