package ai

import (
	"context"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// OpenAI calls an OpenAI-compatible Chat Completions endpoint. Self-hosted
// backends often run without a key, so an empty key is allowed.
type OpenAI struct {
	client  *http.Client
	baseURL string
	model   string
	apiKey  string
}

// NewOpenAI creates an OpenAI-compatible provider.
func NewOpenAI(cfg Config) *OpenAI {
	return &OpenAI{
		client:  cfg.httpClient(),
		baseURL: cfg.baseURL(defaultOpenAIURL),
		model:   cfg.model(defaultOpenAIModel),
		apiKey:  cfg.APIKey,
	}
}

// Name implements Provider.
func (o *OpenAI) Name() string { return ProviderOpenAI }

// Generate implements Provider.
func (o *OpenAI) Generate(ctx context.Context, question string) (string, error) {
	header := http.Header{}
	if o.apiKey != "" {
		header.Set("Authorization", "Bearer "+o.apiKey)
	}

	req := chatRequest{
		Model:    o.model,
		Messages: []chatMessage{{Role: "user", Content: question}},
	}
	var resp chatResponse
	if err := postJSON(ctx, o.client, o.baseURL+"/v1/chat/completions", header, req, &resp); err != nil {
		return "", errors.Wrap(err, "openai")
	}

	if len(resp.Choices) == 0 {
		return "", errors.Wrap(ErrEmptyReply, "openai: no choices")
	}
	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", errors.Wrap(ErrEmptyReply, "openai")
	}
	return text, nil
}
