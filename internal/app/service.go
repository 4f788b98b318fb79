// Package service runs bfhl requests: it parses the body, executes the
// arithmetic operations on a bounded worker pool and forwards AI questions
// to the configured provider.
package service

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Jeffail/tunny"
	"github.com/cockroachdb/errors"

	"github.com/okian/bfhl/internal/domain/bfhl"
	"github.com/okian/bfhl/pkg/logger"
	"github.com/okian/bfhl/pkg/metrics"
)

// Outcome labels used in metrics and stats.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
)

// Default service configuration constants.
const (
	defaultComputeTimeout = 2 * time.Second
	unparsedOperation     = "unparsed"
)

// Service implements the bfhl request pipeline used by the HTTP API.
type Service struct {
	mu sync.RWMutex

	dispatcher *bfhl.Dispatcher
	pool       *tunny.Pool

	// Configuration
	computeWorkers int
	computeTimeout time.Duration
	providerName   string

	// State
	started bool

	succeeded atomic.Int64
	invalid   atomic.Int64
	failed    atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithComputeWorkers sets the number of goroutines evaluating arithmetic.
func WithComputeWorkers(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.computeWorkers = count
		}
	}
}

// WithComputeTimeout bounds queueing plus evaluation of one arithmetic request.
func WithComputeTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.computeTimeout = d
		}
	}
}

// WithDispatcher sets the dispatcher. By default one with built-in
// arithmetic and no AI provider is used.
func WithDispatcher(d *bfhl.Dispatcher) Option {
	return func(s *Service) {
		if d != nil {
			s.dispatcher = d
		}
	}
}

// WithProviderName records the AI provider name reported by GetStats.
func WithProviderName(name string) Option {
	return func(s *Service) {
		s.providerName = name
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		computeWorkers: runtime.NumCPU(),
		computeTimeout: defaultComputeTimeout,
		providerName:   "none",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.dispatcher == nil {
		s.dispatcher = bfhl.NewDispatcher()
	}
	return s
}

// Start creates the compute pool. Calling Start twice is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.pool = tunny.NewCallback(s.computeWorkers)
	s.started = true

	s.logger.Info(ctx, "bfhl service started",
		logger.Int("compute_workers", s.computeWorkers),
		logger.Duration("compute_timeout", s.computeTimeout),
		logger.String("ai_provider", s.providerName),
	)
	return nil
}

// Stop closes the compute pool. In-flight jobs finish first.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.pool.Close()
	s.pool = nil
	s.started = false
	s.logger.Info(context.Background(), "bfhl service stopped")
}

// Handle parses body, runs the requested operation and returns its name
// together with the result. Client errors satisfy bfhl.IsClientError.
func (s *Service) Handle(ctx context.Context, body []byte) (bfhl.Operation, any, error) {
	start := time.Now()

	req, err := bfhl.ParseRequest(body)
	if err != nil {
		s.record(ctx, unparsedOperation, start, err)
		return "", nil, err
	}

	var data any
	if req.Op == bfhl.OpAI {
		// Network bound; the provider honors ctx on its own.
		data, err = s.dispatcher.Dispatch(ctx, req)
	} else {
		data, err = s.compute(ctx, req)
	}
	s.record(ctx, string(req.Op), start, err)
	return req.Op, data, err
}

func (s *Service) compute(ctx context.Context, req bfhl.Request) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "request abandoned")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}

	type result struct {
		data any
		err  error
	}
	res := &result{}

	// The gauge moves inside the job: a timed-out job keeps its worker
	// until the dispatcher returns.
	_, perr := s.pool.ProcessTimed(func() {
		metrics.AddComputeInFlight(1)
		defer metrics.AddComputeInFlight(-1)
		defer func() {
			if r := recover(); r != nil {
				res.err = errors.Wrapf(ErrComputePanic, "%s: %v", req.Op, r)
			}
		}()
		res.data, res.err = s.dispatcher.Dispatch(ctx, req)
	}, s.computeTimeout)

	if perr != nil {
		if errors.Is(perr, tunny.ErrJobTimedOut) {
			metrics.RecordComputeTimeout()
			return nil, errors.Wrapf(ErrComputeTimeout, "%s after %s", req.Op, s.computeTimeout)
		}
		return nil, errors.Wrap(perr, "compute pool")
	}
	return res.data, res.err
}

func (s *Service) record(ctx context.Context, op string, start time.Time, err error) {
	elapsed := time.Since(start)
	outcome := OutcomeSuccess
	switch {
	case err == nil:
		s.succeeded.Add(1)
	case bfhl.IsClientError(err):
		outcome = OutcomeInvalid
		s.invalid.Add(1)
	default:
		outcome = OutcomeFailed
		s.failed.Add(1)
	}
	metrics.RecordOperation(op, outcome, float64(elapsed.Microseconds())/1000)

	if s.logger == nil || err == nil {
		return
	}
	if outcome == OutcomeInvalid {
		s.logger.Debug(ctx, "request rejected", logger.String("operation", op), logger.Error(err))
		return
	}
	s.logger.Error(ctx, "request failed",
		logger.String("operation", op),
		logger.Duration("elapsed", elapsed),
		logger.Error(err))
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":          s.started,
		"computeWorkers":   s.computeWorkers,
		"computeTimeoutMs": s.computeTimeout.Milliseconds(),
		"aiProvider":       s.providerName,
		"operations":       operationNames(),
		"requests": map[string]int64{
			OutcomeSuccess: s.succeeded.Load(),
			OutcomeInvalid: s.invalid.Load(),
			OutcomeFailed:  s.failed.Load(),
		},
	}
	if s.started {
		stats["computeQueueLength"] = s.pool.QueueLength()
	}
	return stats
}

func operationNames() []string {
	ops := bfhl.Operations()
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = string(op)
	}
	return names
}
