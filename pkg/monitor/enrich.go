package monitor

import (
	"mercator-hq/callisto/pkg/event"
)

// Enrichment helpers are pure payload-merge functions. Each returns a new
// payload with one additional named sub-key holding only the supplied
// fields; the input payload is never mutated. Helpers compose freely:
//
//	rc.Metadata = monitor.WithEnvironment(
//	    monitor.WithRetry(nil, monitor.Retry{Attempt: ptr(2)}),
//	    monitor.Environment{Name: "production"},
//	)

// Timing describes latency milestones observed by the caller, all in
// milliseconds.
type Timing struct {
	QueueMs      *float64
	FirstTokenMs *float64
	TotalMs      *float64
}

// WithTiming merges timing detail under the "timing" key.
func WithTiming(p event.Payload, t Timing) event.Payload {
	sub := event.Payload{}
	putFloat(sub, "queue_ms", t.QueueMs)
	putFloat(sub, "first_token_ms", t.FirstTokenMs)
	putFloat(sub, "total_ms", t.TotalMs)
	return withSub(p, "timing", sub)
}

// Environment describes where the instrumented workload runs.
type Environment struct {
	Name    string // "production", "staging", ...
	Region  string
	Host    string
	Version string // Application version
}

// WithEnvironment merges deployment detail under the "environment" key.
func WithEnvironment(p event.Payload, env Environment) event.Payload {
	sub := event.Payload{}
	putString(sub, "name", env.Name)
	putString(sub, "region", env.Region)
	putString(sub, "host", env.Host)
	putString(sub, "version", env.Version)
	return withSub(p, "environment", sub)
}

// Retry describes the retry state of the instrumented call.
type Retry struct {
	Attempt     *int
	MaxAttempts *int
	Reason      string // Why the previous attempt failed
}

// WithRetry merges retry detail under the "retry" key.
func WithRetry(p event.Payload, r Retry) event.Payload {
	sub := event.Payload{}
	putInt(sub, "attempt", r.Attempt)
	putInt(sub, "max_attempts", r.MaxAttempts)
	putString(sub, "reason", r.Reason)
	return withSub(p, "retry", sub)
}

// Sampling describes the model sampling parameters in effect.
type Sampling struct {
	Temperature *float64
	TopP        *float64
	TopK        *int
	MaxTokens   *int
	Seed        *int64
}

// WithSampling merges sampling parameters under the "sampling" key.
func WithSampling(p event.Payload, s Sampling) event.Payload {
	sub := event.Payload{}
	putFloat(sub, "temperature", s.Temperature)
	putFloat(sub, "top_p", s.TopP)
	putInt(sub, "top_k", s.TopK)
	putInt(sub, "max_tokens", s.MaxTokens)
	if s.Seed != nil {
		sub["seed"] = *s.Seed
	}
	return withSub(p, "sampling", sub)
}

// RequestMetadata attributes the request to a user, team, or feature.
type RequestMetadata struct {
	UserID  string
	TeamID  string
	Feature string
	Tags    []string
}

// WithRequestMetadata merges attribution detail under the "request" key.
func WithRequestMetadata(p event.Payload, md RequestMetadata) event.Payload {
	sub := event.Payload{}
	putString(sub, "user_id", md.UserID)
	putString(sub, "team_id", md.TeamID)
	putString(sub, "feature", md.Feature)
	if len(md.Tags) > 0 {
		sub["tags"] = md.Tags
	}
	return withSub(p, "request", sub)
}

// withSub clones the payload and attaches the sub-map under key.
func withSub(p event.Payload, key string, sub event.Payload) event.Payload {
	out := p.Clone()
	out[key] = sub
	return out
}

func putString(p event.Payload, key, v string) {
	if v != "" {
		p[key] = v
	}
}

func putFloat(p event.Payload, key string, v *float64) {
	if v != nil {
		p[key] = *v
	}
}

func putInt(p event.Payload, key string, v *int) {
	if v != nil {
		p[key] = *v
	}
}
