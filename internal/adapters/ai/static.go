package ai

import "context"

// Static answers every question with the same text without any I/O. It
// backs offline deployments and local development.
type Static struct {
	answer string
}

// NewStatic creates a Static provider. An empty answer falls back to
// "AI_response".
func NewStatic(answer string) *Static {
	if answer == "" {
		answer = defaultStaticAnswer
	}
	return &Static{answer: answer}
}

// Name implements Provider.
func (s *Static) Name() string { return ProviderStatic }

// Generate implements Provider.
func (s *Static) Generate(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.answer, nil
}
