package probe

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/okian/bfhl/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

const percentageMultiplier = 100

// Run executes a complete probe: health check, generation, concurrent
// submission, verification and a statistics report.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if cfg.NumCases < 1 || cfg.Workers < 1 || cfg.BaseURL == "" {
		return nil, errors.Wrapf(ErrInvalidConfig, "cases=%d workers=%d url=%q", cfg.NumCases, cfg.Workers, cfg.BaseURL)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()
	log.Info(ctx, "starting bfhl probe",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("cases", cfg.NumCases),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
		logger.Any("seed", seed))

	email, err := checkServiceHealth(ctx, cfg)
	if err != nil {
		return stats, err
	}
	stats.OfficialEmail = email

	cases := Generate(cfg.NumCases, seed, cfg.SkipAI)
	stats.CasesGenerated = len(cases)

	if cfg.OutputFile != "" {
		if err := saveCases(cfg.OutputFile, cases); err != nil {
			log.Warn(ctx, "failed to save cases", logger.Error(err))
		}
	}

	results := submitCases(ctx, cfg, cases)
	verifyErr := verifyResults(ctx, cfg, results, stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if verifyErr != nil {
		return stats, verifyErr
	}
	if err := ctx.Err(); err != nil {
		return stats, errors.Wrap(err, "probe interrupted")
	}
	return stats, nil
}

// checkServiceHealth calls GET /health and returns the official email the
// service reports.
func checkServiceHealth(ctx context.Context, cfg *Config) (string, error) {
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)
	status, env, err := client.do(ctx, http.MethodGet, "/health", "", nil)
	if err != nil {
		return "", errors.Mark(errors.Wrap(err, "health check"), ErrUnhealthy)
	}
	if status != http.StatusOK || env.IsSuccess == nil || !*env.IsSuccess || env.OfficialEmail == nil {
		return "", errors.Wrapf(ErrUnhealthy, "health check returned status %d", status)
	}
	logger.Get().Info(ctx, "service is healthy", logger.String("officialEmail", *env.OfficialEmail))
	return *env.OfficialEmail, nil
}

// saveCases writes the generated cases as a JSON array.
func saveCases(filename string, cases []Case) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return errors.Wrap(err, "create directory")
		}
	}
	data, err := json.MarshalIndent(cases, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal cases")
	}
	return errors.Wrap(os.WriteFile(filename, data, filePermission), "write cases")
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var passRate, casesPerSecond float64
	if stats.CasesSubmitted > 0 {
		passRate = float64(stats.CasesPassed) / float64(stats.CasesSubmitted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		casesPerSecond = float64(stats.CasesSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("casesGenerated", stats.CasesGenerated),
		logger.Int("casesSubmitted", stats.CasesSubmitted),
		logger.Int("casesPassed", stats.CasesPassed),
		logger.Int("casesFailed", stats.CasesFailed),
		logger.Int("transportErrors", stats.TransportErrs),
		logger.Duration("maxLatency", stats.MaxLatency),
		logger.Duration("duration", stats.Duration),
		logger.Float64("passRate", passRate),
		logger.Float64("casesPerSecond", casesPerSecond))
}
