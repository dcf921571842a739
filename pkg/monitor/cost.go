package monitor

import (
	"strings"

	"mercator-hq/callisto/pkg/event"
)

// ModelPricing holds per-1K-token prices in USD.
type ModelPricing struct {
	Prompt     float64 `json:"prompt" yaml:"prompt"`
	Completion float64 `json:"completion" yaml:"completion"`
}

// PricingTable maps provider → model (or model prefix) → pricing. The
// "default"/"default" entry is the fallback when nothing else matches.
type PricingTable map[string]map[string]ModelPricing

// DefaultPricing returns a small built-in table for common models. Prices
// drift; treat every figure as best-effort, not billing-grade.
func DefaultPricing() PricingTable {
	return PricingTable{
		"openai": {
			"gpt-4o":      {Prompt: 0.0025, Completion: 0.01},
			"gpt-4o-mini": {Prompt: 0.00015, Completion: 0.0006},
			"gpt-4":       {Prompt: 0.03, Completion: 0.06},
		},
		"anthropic": {
			"claude-3-5-sonnet": {Prompt: 0.003, Completion: 0.015},
			"claude-3-5-haiku":  {Prompt: 0.0008, Completion: 0.004},
			"claude-3-opus":     {Prompt: 0.015, Completion: 0.075},
		},
		"google": {
			"gemini-1.5-pro":   {Prompt: 0.00125, Completion: 0.005},
			"gemini-1.5-flash": {Prompt: 0.000075, Completion: 0.0003},
		},
		"default": {
			"default": {Prompt: 0.001, Completion: 0.002},
		},
	}
}

// Estimate derives a best-effort cost from token usage. Lookup order: exact
// model match, model prefix match (so "gpt-4o-2024-08-06" matches "gpt-4o"),
// then the default entry. Returns nil when no pricing applies or the usage
// carries no tokens.
func (t PricingTable) Estimate(provider, model string, usage event.TokenUsage) *float64 {
	if t == nil || usage.Total() == 0 {
		return nil
	}

	pricing, ok := t.lookup(provider, model)
	if !ok {
		return nil
	}

	cost := float64(usage.PromptTokens)/1000*pricing.Prompt +
		float64(usage.CompletionTokens)/1000*pricing.Completion
	return &cost
}

func (t PricingTable) lookup(provider, model string) (ModelPricing, bool) {
	if models, ok := t[provider]; ok {
		if p, ok := models[model]; ok {
			return p, true
		}
		// Longest prefix wins so "gpt-4o" beats "gpt-4".
		var best string
		var bestPricing ModelPricing
		for pattern, p := range models {
			if strings.HasPrefix(model, pattern) && len(pattern) > len(best) {
				best = pattern
				bestPricing = p
			}
		}
		if best != "" {
			return bestPricing, true
		}
	}

	if models, ok := t["default"]; ok {
		if p, ok := models["default"]; ok {
			return p, true
		}
	}
	return ModelPricing{}, false
}
