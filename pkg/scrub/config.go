package scrub

// DefaultMask is the replacement used for fully redacted fields when the
// configuration does not supply one.
const DefaultMask = "[REDACTED]"

// CircularMarker replaces the second occurrence of an object within one
// traversal.
const CircularMarker = "[CIRCULAR]"

// Pattern is a caller-supplied redaction rule. Replacement falls back to the
// configured mask when empty.
type Pattern struct {
	Name        string `json:"name" yaml:"name"`
	Regex       string `json:"pattern" yaml:"pattern"`
	Replacement string `json:"replacement,omitempty" yaml:"replacement,omitempty"`
}

// Config controls which rules a Scrubber compiles. The zero value disables
// everything; use DefaultConfig for the usual PII+secrets posture. A Config
// is immutable once handed to NewScrubber.
type Config struct {
	// PII enables the built-in personally-identifiable-information patterns.
	PII bool `json:"pii" yaml:"pii"`

	// Secrets enables the built-in credential and token patterns.
	Secrets bool `json:"secrets" yaml:"secrets"`

	// Custom patterns are applied after the built-in rules, in order.
	Custom []Pattern `json:"custom,omitempty" yaml:"custom,omitempty"`

	// RedactFields lists payload keys whose values are replaced wholesale
	// with the mask, regardless of content.
	RedactFields []string `json:"redact_fields,omitempty" yaml:"redact_fields,omitempty"`

	// Mask is the default replacement text. Default: "[REDACTED]".
	Mask string `json:"mask,omitempty" yaml:"mask,omitempty"`
}

// DefaultConfig returns the default scrubbing configuration with both
// built-in categories enabled.
func DefaultConfig() *Config {
	return &Config{
		PII:     true,
		Secrets: true,
		Mask:    DefaultMask,
	}
}
