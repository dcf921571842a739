package scrub

import (
	"log/slog"
	"reflect"
	"regexp"
)

// Scrubber applies an ordered, compiled rule list to strings and nested
// structures. A Scrubber is immutable and safe for concurrent use; each
// traversal keeps its own visited set.
type Scrubber struct {
	rules        []rule
	redactFields map[string]struct{}
	mask         string
}

// NewScrubber compiles a scrubber from the configuration. Invalid custom
// patterns are skipped with a warning rather than failing construction;
// telemetry must keep flowing even with a bad pattern in the config.
func NewScrubber(cfg *Config) *Scrubber {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	mask := cfg.Mask
	if mask == "" {
		mask = DefaultMask
	}

	s := &Scrubber{
		redactFields: make(map[string]struct{}, len(cfg.RedactFields)),
		mask:         mask,
	}

	// Rule order is fixed: PII, then secrets, then custom.
	if cfg.PII {
		s.rules = append(s.rules, piiRules()...)
	}
	if cfg.Secrets {
		s.rules = append(s.rules, secretRules()...)
	}
	for _, p := range cfg.Custom {
		regex, err := regexp.Compile(p.Regex)
		if err != nil {
			slog.Default().Warn("skipping invalid scrub pattern",
				"pattern_name", p.Name,
				"error", err,
			)
			continue
		}
		replacement := p.Replacement
		if replacement == "" {
			replacement = mask
		}
		s.rules = append(s.rules, rule{name: p.Name, regex: regex, replacement: replacement})
	}

	for _, field := range cfg.RedactFields {
		s.redactFields[field] = struct{}{}
	}

	return s
}

// Mask returns the configured mask string.
func (s *Scrubber) Mask() string {
	return s.mask
}

// ScrubString applies every rule in order, replacing all matches.
func (s *Scrubber) ScrubString(text string) string {
	for _, r := range s.rules {
		text = r.regex.ReplaceAllString(text, r.replacement)
	}
	return text
}

// ScrubValue scrubs a value when it is a string and passes anything else
// through unchanged, including nil.
func (s *Scrubber) ScrubValue(v any) any {
	if str, ok := v.(string); ok {
		return s.ScrubString(str)
	}
	return v
}

// ScrubObject walks a nested structure depth-first, scrubbing every string
// and masking every key listed in RedactFields. Functions and channels are
// dropped from the output. Cyclic structures terminate with the
// "[CIRCULAR]" sentinel in place of the repeated object.
//
// Non-map, non-slice top-level input is returned unchanged.
func (s *Scrubber) ScrubObject(v any) any {
	if v == nil {
		return nil
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		out, _ := s.walk(v, make(map[uintptr]struct{}))
		return out
	default:
		return v
	}
}

// ScrubMessages scrubs a chat-style message list. For each message-like
// item, a string content field is scrubbed directly; a list content field
// has its string elements and {text: ...} parts scrubbed, leaving other part
// fields (media URLs, tool ids) untouched. Message shape is preserved.
func (s *Scrubber) ScrubMessages(messages []any) []any {
	if messages == nil {
		return nil
	}

	out := make([]any, len(messages))
	for i, item := range messages {
		msg, ok := stringKeyMap(item)
		if !ok {
			out[i] = item
			continue
		}

		copied := make(map[string]any, len(msg))
		for k, v := range msg {
			copied[k] = v
		}

		switch content := copied["content"].(type) {
		case string:
			copied["content"] = s.ScrubString(content)
		case []any:
			copied["content"] = s.scrubContentParts(content)
		}

		out[i] = copied
	}
	return out
}

// scrubContentParts handles the typed-parts form of message content.
func (s *Scrubber) scrubContentParts(parts []any) []any {
	out := make([]any, len(parts))
	for i, part := range parts {
		switch p := part.(type) {
		case string:
			out[i] = s.ScrubString(p)
		default:
			if m, ok := stringKeyMap(part); ok {
				if text, ok := m["text"].(string); ok {
					copied := make(map[string]any, len(m))
					for k, v := range m {
						copied[k] = v
					}
					copied["text"] = s.ScrubString(text)
					out[i] = copied
					continue
				}
			}
			out[i] = part
		}
	}
	return out
}

// walk recursively scrubs v. The second return is false when the value
// should be dropped from the output entirely.
func (s *Scrubber) walk(v any, visited map[uintptr]struct{}) (any, bool) {
	if v == nil {
		return nil, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return s.ScrubString(rv.String()), true

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v, true
		}
		ptr := rv.Pointer()
		if _, seen := visited[ptr]; seen {
			return CircularMarker, true
		}
		visited[ptr] = struct{}{}

		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			if _, redact := s.redactFields[key]; redact {
				out[key] = s.mask
				continue
			}
			child, keep := s.walk(unwrap(iter.Value()), visited)
			if keep {
				out[key] = child
			}
		}
		return out, true

	case reflect.Slice:
		ptr := rv.Pointer()
		if _, seen := visited[ptr]; seen {
			return CircularMarker, true
		}
		visited[ptr] = struct{}{}
		return s.walkList(rv, visited), true

	case reflect.Array:
		return s.walkList(rv, visited), true

	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		// Not representable in stored telemetry; drop.
		return nil, false

	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil, true
		}
		return s.walk(rv.Elem().Interface(), visited)

	default:
		return v, true
	}
}

// walkList maps each element of a slice or array.
func (s *Scrubber) walkList(rv reflect.Value, visited map[uintptr]struct{}) []any {
	out := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		child, keep := s.walk(unwrap(rv.Index(i)), visited)
		if keep {
			out = append(out, child)
		}
	}
	return out
}

// unwrap extracts the dynamic value behind an interface element.
func unwrap(rv reflect.Value) any {
	if !rv.IsValid() || !rv.CanInterface() {
		return nil
	}
	return rv.Interface()
}

// stringKeyMap coerces map-shaped values (including named map types such as
// event payloads) into a plain map[string]any view.
func stringKeyMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}
