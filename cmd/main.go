package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/okian/bfhl/internal/adapters/ai"
	"github.com/okian/bfhl/internal/adapters/http/api"
	"github.com/okian/bfhl/internal/adapters/http/swagger"
	app "github.com/okian/bfhl/internal/app"
	"github.com/okian/bfhl/internal/config"
	"github.com/okian/bfhl/internal/domain/bfhl"
	"github.com/okian/bfhl/pkg/logger"
	"github.com/okian/bfhl/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional files -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger format depends on config, so report on stderr
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Configure(metricsOptions(cfg)...)

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server exited", logger.Error(err))
		os.Exit(1)
	}
}

// run serves until ctx is cancelled, then shuts down gracefully.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	svc, err := newService(cfg, log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return errors.Wrap(err, "start service")
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- api.WrapKind("http.listen", api.ErrServe, err)
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	log.Info(context.Background(), "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	log.Info(context.Background(), "server stopped")
	return nil
}

// newService builds the AI provider chain, the dispatcher and the service.
func newService(cfg *config.Config, log logger.Logger) (*app.Service, error) {
	provider, err := ai.New(ai.Config{
		Provider: cfg.AIProvider,
		APIKey:   cfg.AIAPIKey,
		BaseURL:  cfg.AIBaseURL,
		Model:    cfg.AIModel,
		Timeout:  cfg.AITimeout(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "ai provider")
	}
	if cfg.AIProvider == ai.ProviderGemini && cfg.AIAPIKey == "" {
		log.Warn(context.Background(), "no AI api key configured; AI requests will fail")
	}
	log.Info(context.Background(), "ai provider configured",
		logger.String("provider", provider.Name()),
		logger.Duration("timeout", cfg.AITimeout()),
		logger.Float64("rate_per_second", cfg.AIRatePerSecond),
		logger.Bool("strip_non_alpha", cfg.AIStripNonAlpha))
	generator := ai.NewInstrumented(ai.NewRateLimited(provider, cfg.AIRatePerSecond, cfg.AIBurst), log)

	dispatcher := bfhl.NewDispatcher(
		bfhl.WithFoldMinLength(cfg.FoldMinLength),
		bfhl.WithFibonacciMaxTerms(cfg.FibonacciMaxTerms),
		bfhl.WithStripNonAlpha(cfg.AIStripNonAlpha),
		bfhl.WithAITimeout(cfg.AITimeout()),
		bfhl.WithGenerator(generator),
	)

	return app.New(
		app.WithLogger(log.Named("service")),
		app.WithDispatcher(dispatcher),
		app.WithComputeWorkers(cfg.ComputeWorkers),
		app.WithComputeTimeout(cfg.ComputeTimeout()),
		app.WithProviderName(provider.Name()),
	), nil
}

// metricsOptions maps the metrics section of cfg onto manager options.
func metricsOptions(cfg *config.Config) []metrics.Option {
	opts := []metrics.Option{metrics.WithNamespace(cfg.MetricsNamespace)}
	if cfg.MetricsEnvironment != "" {
		opts = append(opts, metrics.WithCustomLabels(map[string]string{"environment": cfg.MetricsEnvironment}))
	}
	return opts
}

// newHandler registers every route and wraps the mux in the shared middleware.
func newHandler(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) http.Handler {
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)

	apiServer := api.NewServer(svc, svc,
		api.WithOfficialEmail(cfg.OfficialEmail),
		api.WithMaxBodyBytes(cfg.MaxBodyBytes),
		api.WithLogger(log.Named("http")),
	)
	apiServer.Register(mux)

	return api.Chain(mux,
		api.RequestIDMiddleware,
		api.RecoverMiddleware(cfg.OfficialEmail, log.Named("http")),
	)
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	var avgPauseMs float64
	if m.NumGC > 0 {
		avgPauseMs = float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
	}
	metrics.UpdateSystem(m.Alloc, runtime.NumGoroutine(), avgPauseMs)
}
