// Package ai adapts external text-generation services to the single
// capability the bfhl AI operation needs: turn a question into text.
package ai

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Provider names accepted by New.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderStatic = "static"
)

// Default provider configuration constants.
const (
	defaultTimeout      = 10 * time.Second
	defaultGeminiURL    = "https://generativelanguage.googleapis.com"
	defaultGeminiModel  = "gemini-2.0-flash"
	defaultOpenAIURL    = "https://api.openai.com"
	defaultOpenAIModel  = "gpt-4o-mini"
	defaultStaticAnswer = "AI_response"
	maxReplyBytes       = 1 << 20
	maxErrorBytes       = 4096
)

// Provider generates free text for a question.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Provider interface {
	// Name returns the provider identifier used in logs and metrics.
	Name() string

	// Generate returns the raw reply text. The call must honor ctx.
	Generate(ctx context.Context, question string) (string, error)
}

// Config selects and parameterizes a provider.
type Config struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration

	// Answer is the fixed reply of the static provider.
	Answer string

	// HTTPClient overrides the client built from Timeout. Tests use it.
	HTTPClient *http.Client
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func (c Config) baseURL(fallback string) string {
	if c.BaseURL == "" {
		return fallback
	}
	return strings.TrimRight(c.BaseURL, "/")
}

func (c Config) model(fallback string) string {
	if c.Model == "" {
		return fallback
	}
	return c.Model
}

// New builds the provider named by cfg.Provider.
func New(cfg Config) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderGemini:
		return NewGemini(cfg), nil
	case ProviderOpenAI:
		return NewOpenAI(cfg), nil
	case ProviderStatic:
		return NewStatic(cfg.Answer), nil
	default:
		return nil, errors.Wrapf(ErrUnknownProvider, "%q", cfg.Provider)
	}
}
