package ai

import (
	"context"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"github.com/okian/bfhl/pkg/metrics"
)

// RateLimited throttles calls to the wrapped provider with a token bucket.
type RateLimited struct {
	next    Provider
	limiter *rate.Limiter
}

// NewRateLimited wraps next with a limiter allowing perSecond calls and
// bursts of burst. A non-positive perSecond disables limiting.
func NewRateLimited(next Provider, perSecond float64, burst int) *RateLimited {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(limit, burst)}
}

// Name implements Provider.
func (r *RateLimited) Name() string { return r.next.Name() }

// Generate waits for a token and then delegates. A wait that cannot finish
// before ctx is done fails with ErrRateLimited.
func (r *RateLimited) Generate(ctx context.Context, question string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		metrics.RecordAIRateLimited(r.next.Name())
		return "", errors.Mark(errors.Wrap(err, "wait for ai token"), ErrRateLimited)
	}
	return r.next.Generate(ctx, question)
}
