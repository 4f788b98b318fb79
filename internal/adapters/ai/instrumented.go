package ai

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/okian/bfhl/pkg/logger"
	"github.com/okian/bfhl/pkg/metrics"
)

// Outcome labels recorded for AI calls.
const (
	outcomeSuccess = "success"
	outcomeError   = "error"
	outcomeTimeout = "timeout"
	outcomeLimited = "rate_limited"
)

// Instrumented records latency and outcome of every call to the wrapped
// provider and logs failures.
type Instrumented struct {
	next Provider
	log  logger.Logger
}

// NewInstrumented wraps next. A nil log discards output.
func NewInstrumented(next Provider, log logger.Logger) *Instrumented {
	if log == nil {
		log = logger.Nop()
	}
	return &Instrumented{next: next, log: log.Named("ai")}
}

// Name implements Provider.
func (i *Instrumented) Name() string { return i.next.Name() }

// Generate implements Provider.
func (i *Instrumented) Generate(ctx context.Context, question string) (string, error) {
	start := time.Now()
	text, err := i.next.Generate(ctx, question)
	elapsed := time.Since(start)

	outcome := classifyOutcome(ctx, err)
	metrics.RecordAIRequest(i.next.Name(), outcome, float64(elapsed.Microseconds())/1000)

	if err != nil {
		i.log.Warn(ctx, "ai call failed",
			logger.String("provider", i.next.Name()),
			logger.String("outcome", outcome),
			logger.Duration("elapsed", elapsed),
			logger.Error(err))
		return "", err
	}
	i.log.Debug(ctx, "ai call done",
		logger.String("provider", i.next.Name()),
		logger.Duration("elapsed", elapsed),
		logger.Int("reply_len", len(text)))
	return text, nil
}

// classifyOutcome maps the result of a call to its metric label.
func classifyOutcome(ctx context.Context, err error) string {
	switch {
	case err == nil:
		return outcomeSuccess
	case ctx.Err() != nil, errors.Is(err, context.DeadlineExceeded):
		return outcomeTimeout
	case errors.Is(err, ErrRateLimited):
		return outcomeLimited
	default:
		return outcomeError
	}
}
