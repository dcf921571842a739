package bridge

import "strings"

// NormalizeProviderName strips the SDK function suffix from a provider
// identifier: "anthropic.messages" becomes "anthropic". Unqualified names
// pass through unchanged.
func NormalizeProviderName(provider string) string {
	if i := strings.Index(provider, "."); i >= 0 {
		return provider[:i]
	}
	return provider
}

// NormalizeModelName strips any registry or gateway path prefix from a model
// identifier: "openai.responses/gpt-4o-mini" becomes "gpt-4o-mini".
func NormalizeModelName(model string) string {
	if i := strings.LastIndex(model, "/"); i >= 0 {
		return model[i+1:]
	}
	return model
}

// InferProvider guesses the provider from well-known model name families.
// Returns "unknown" when no family matches.
func InferProvider(model string) string {
	m := strings.ToLower(model)
	switch {
	case strings.HasPrefix(m, "gpt-"):
		return "openai"
	case strings.HasPrefix(m, "claude-"):
		return "anthropic"
	case strings.HasPrefix(m, "gemini-"):
		return "google"
	case strings.HasPrefix(m, "deepseek-"):
		return "deepseek"
	case strings.Contains(m, "llama"), strings.Contains(m, "mistral"):
		return "meta"
	default:
		return "unknown"
	}
}
