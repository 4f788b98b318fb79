// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers files and environment on top of the defaults.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":3000".
	Addr string `koanf:"addr" validate:"required"`

	// OfficialEmail is echoed in every response envelope.
	OfficialEmail string `koanf:"official_email" validate:"required,email"`

	// MaxBodyBytes caps POST /bfhl request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes" validate:"gt=0"`

	// FibonacciMaxTerms is the largest n accepted by fibonacci.
	FibonacciMaxTerms int `koanf:"fibonacci_max_terms" validate:"gte=1,lte=100000"`

	// FoldMinLength is the minimum array length for lcm and hcf: 2 is
	// strict, 1 also accepts single values.
	FoldMinLength int `koanf:"fold_min_length" validate:"oneof=1 2"`

	// ComputeWorkers sizes the arithmetic worker pool.
	ComputeWorkers int `koanf:"compute_workers" validate:"gte=1"`

	// ComputeTimeoutMS bounds one arithmetic request including queueing.
	ComputeTimeoutMS int `koanf:"compute_timeout_ms" validate:"gte=1"`

	// AIProvider names the text generation backend.
	AIProvider string `koanf:"ai_provider" validate:"oneof=gemini openai static"`

	// AIAPIKey authenticates against the AI backend.
	AIAPIKey string `koanf:"ai_api_key"`

	// AIBaseURL overrides the backend URL, e.g. for a self-hosted gateway.
	AIBaseURL string `koanf:"ai_base_url" validate:"omitempty,url"`

	// AIModel overrides the backend model.
	AIModel string `koanf:"ai_model"`

	// AITimeoutMS bounds one AI call.
	AITimeoutMS int `koanf:"ai_timeout_ms" validate:"gte=1"`

	// AIStripNonAlpha removes punctuation from the returned word.
	AIStripNonAlpha bool `koanf:"ai_strip_non_alpha"`

	// AIRatePerSecond and AIBurst throttle outbound AI calls. A rate of 0
	// disables throttling.
	AIRatePerSecond float64 `koanf:"ai_rate_per_second" validate:"gte=0"`
	AIBurst         int     `koanf:"ai_burst" validate:"gte=1"`

	// MetricsNamespace prefixes every exported Prometheus series.
	MetricsNamespace string `koanf:"metrics_namespace" validate:"required,metricname"`

	// MetricsEnvironment, when set, becomes a constant "environment" label
	// on every series.
	MetricsEnvironment string `koanf:"metrics_environment"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":3000",
		OfficialEmail:     "bfhl@example.com",
		MaxBodyBytes:      1 << 20,
		FibonacciMaxTerms: 1000,
		FoldMinLength:     2,
		ComputeWorkers:    runtime.NumCPU(),
		ComputeTimeoutMS:  2000,
		AIProvider:        "gemini",
		AITimeoutMS:       10_000,
		AIRatePerSecond:   5,
		AIBurst:           10,
		MetricsNamespace:  "bfhl",
	}
}

// ComputeTimeout returns ComputeTimeoutMS as a duration.
func (c *Config) ComputeTimeout() time.Duration {
	return time.Duration(c.ComputeTimeoutMS) * time.Millisecond
}

// AITimeout returns AITimeoutMS as a duration.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AITimeoutMS) * time.Millisecond
}
