package ai

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Gemini calls the Google generateContent endpoint.
type Gemini struct {
	client  *http.Client
	baseURL string
	model   string
	apiKey  string
}

// NewGemini creates a Gemini provider. A missing API key is reported on the
// first Generate call, not here, so the service can start without AI.
func NewGemini(cfg Config) *Gemini {
	return &Gemini{
		client:  cfg.httpClient(),
		baseURL: cfg.baseURL(defaultGeminiURL),
		model:   cfg.model(defaultGeminiModel),
		apiKey:  cfg.APIKey,
	}
}

// Name implements Provider.
func (g *Gemini) Name() string { return ProviderGemini }

// Generate implements Provider.
func (g *Gemini) Generate(ctx context.Context, question string) (string, error) {
	if g.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	endpoint := g.baseURL + "/v1beta/models/" + url.PathEscape(g.model) + ":generateContent"
	header := http.Header{}
	header.Set("x-goog-api-key", g.apiKey)

	req := geminiRequest{Contents: []geminiContent{{Parts: []geminiPart{{Text: question}}}}}
	var resp geminiResponse
	if err := postJSON(ctx, g.client, endpoint, header, req, &resp); err != nil {
		return "", errors.Wrap(err, "gemini")
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.Wrap(ErrEmptyReply, "gemini: no candidates")
	}
	text := resp.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", errors.Wrap(ErrEmptyReply, "gemini")
	}
	return text, nil
}
