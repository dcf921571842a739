package bridge

import (
	"encoding/json"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"mercator-hq/callisto/pkg/event"
)

// Recognized span name prefixes and sentinel attribute keys. A span counts
// as AI telemetry when either test passes.
var (
	domainPrefixes = []string{"ai.", "gen_ai."}

	sentinelKeys = map[attribute.Key]struct{}{
		"ai.operationId":        {},
		"gen_ai.system":         {},
		"gen_ai.operation.name": {},
	}
)

// Internal sub-span suffixes emitted by instrumented SDKs underneath the
// logical call span. Counting them would double-book every request.
var internalSuffixes = []string{".doGenerate", ".doStream", ".doEmbed"}

// metadataPrefix namespaces free-form caller metadata in span attributes.
const metadataPrefix = "ai.telemetry.metadata."

// spanAttributes is the normalized view of one span's attribute mapping.
// Vendor keys ("ai.*") take priority over the GenAI semantic convention
// ("gen_ai.*") when both are present.
type spanAttributes struct {
	operation string
	model     string
	provider  string

	prompt   any
	response any

	promptTokens     int64
	completionTokens int64
	hasUsage         bool

	msToFirstChunk       *float64
	msToFinish           *float64
	avgCompletionTokensS *float64

	toolName   string
	toolID     string
	toolArgs   any
	toolResult any

	metadata event.Payload
}

// extractAttributes normalizes a span's raw attribute list. Unknown keys are
// ignored; metadata-namespaced keys are collected verbatim.
func extractAttributes(attrs []attribute.KeyValue) spanAttributes {
	var out spanAttributes

	// Semconv values land first so vendor keys can overwrite them.
	var semconvModel, semconvProvider, semconvOperation string
	var semconvPrompt, semconvResponse any
	var semconvIn, semconvOut *int64

	for _, kv := range attrs {
		key := string(kv.Key)
		switch key {
		case "ai.operationId":
			out.operation = kv.Value.AsString()
		case "ai.model.id":
			out.model = kv.Value.AsString()
		case "ai.model.provider":
			out.provider = kv.Value.AsString()
		case "ai.prompt", "ai.prompt.messages":
			out.prompt = decodeJSONString(kv.Value.AsString())
		case "ai.response.text", "ai.response.object":
			out.response = decodeJSONString(kv.Value.AsString())
		case "ai.usage.promptTokens":
			out.promptTokens = asInt64(kv.Value)
			out.hasUsage = true
		case "ai.usage.completionTokens":
			out.completionTokens = asInt64(kv.Value)
			out.hasUsage = true
		case "ai.response.msToFirstChunk":
			out.msToFirstChunk = asFloatPtr(kv.Value)
		case "ai.response.msToFinish":
			out.msToFinish = asFloatPtr(kv.Value)
		case "ai.response.avgCompletionTokensPerSecond":
			out.avgCompletionTokensS = asFloatPtr(kv.Value)
		case "ai.toolCall.name":
			out.toolName = kv.Value.AsString()
		case "ai.toolCall.id":
			out.toolID = kv.Value.AsString()
		case "ai.toolCall.args":
			out.toolArgs = decodeJSONString(kv.Value.AsString())
		case "ai.toolCall.result":
			out.toolResult = decodeJSONString(kv.Value.AsString())

		case "gen_ai.operation.name":
			semconvOperation = kv.Value.AsString()
		case "gen_ai.request.model":
			semconvModel = kv.Value.AsString()
		case "gen_ai.response.model":
			if semconvModel == "" {
				semconvModel = kv.Value.AsString()
			}
		case "gen_ai.system":
			semconvProvider = kv.Value.AsString()
		case "gen_ai.prompt":
			semconvPrompt = decodeJSONString(kv.Value.AsString())
		case "gen_ai.completion":
			semconvResponse = decodeJSONString(kv.Value.AsString())
		case "gen_ai.usage.input_tokens", "gen_ai.usage.prompt_tokens":
			v := asInt64(kv.Value)
			semconvIn = &v
		case "gen_ai.usage.output_tokens", "gen_ai.usage.completion_tokens":
			v := asInt64(kv.Value)
			semconvOut = &v

		default:
			if strings.HasPrefix(key, metadataPrefix) {
				if out.metadata == nil {
					out.metadata = event.Payload{}
				}
				out.metadata[strings.TrimPrefix(key, metadataPrefix)] = attrValue(kv.Value)
			}
		}
	}

	if out.operation == "" {
		out.operation = semconvOperation
	}
	if out.model == "" {
		out.model = semconvModel
	}
	if out.provider == "" {
		out.provider = semconvProvider
	}
	if out.prompt == nil {
		out.prompt = semconvPrompt
	}
	if out.response == nil {
		out.response = semconvResponse
	}
	if !out.hasUsage && (semconvIn != nil || semconvOut != nil) {
		if semconvIn != nil {
			out.promptTokens = *semconvIn
		}
		if semconvOut != nil {
			out.completionTokens = *semconvOut
		}
		out.hasUsage = true
	}

	return out
}

// isToolCall reports whether the span represents a tool invocation. Tool
// spans are always top-level even when named with an internal suffix.
func (a spanAttributes) isToolCall(spanName string) bool {
	return a.toolName != "" ||
		a.operation == "ai.toolCall" ||
		a.operation == "execute_tool" ||
		strings.HasPrefix(spanName, "ai.toolCall")
}

// hasDomainName reports whether the span name carries a recognized prefix.
func hasDomainName(name string) bool {
	for _, p := range domainPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// hasSentinelAttribute reports whether any sentinel key is present.
func hasSentinelAttribute(attrs []attribute.KeyValue) bool {
	for _, kv := range attrs {
		if _, ok := sentinelKeys[kv.Key]; ok {
			return true
		}
	}
	return false
}

// isInternalSpan reports whether the span is a provider-internal
// sub-operation of a logical call.
func isInternalSpan(name string) bool {
	for _, s := range internalSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// decodeJSONString parses attribute values that instrumented SDKs serialize
// as JSON strings. Non-JSON strings pass through unchanged so plain-text
// prompts survive.
func decodeJSONString(s string) any {
	if s == "" {
		return nil
	}
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
			return v
		}
	}
	return s
}

// attrValue converts an OTel attribute value into a payload-friendly Go
// value.
func attrValue(v attribute.Value) any {
	switch v.Type() {
	case attribute.BOOL:
		return v.AsBool()
	case attribute.INT64:
		return v.AsInt64()
	case attribute.FLOAT64:
		return v.AsFloat64()
	case attribute.STRING:
		return v.AsString()
	case attribute.BOOLSLICE:
		return v.AsBoolSlice()
	case attribute.INT64SLICE:
		return v.AsInt64Slice()
	case attribute.FLOAT64SLICE:
		return v.AsFloat64Slice()
	case attribute.STRINGSLICE:
		return v.AsStringSlice()
	default:
		return v.Emit()
	}
}

func asInt64(v attribute.Value) int64 {
	switch v.Type() {
	case attribute.INT64:
		return v.AsInt64()
	case attribute.FLOAT64:
		return int64(v.AsFloat64())
	default:
		return 0
	}
}

func asFloatPtr(v attribute.Value) *float64 {
	var f float64
	switch v.Type() {
	case attribute.FLOAT64:
		f = v.AsFloat64()
	case attribute.INT64:
		f = float64(v.AsInt64())
	default:
		return nil
	}
	return &f
}
