package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/okian/bfhl/pkg/logger"
)

// verifyResult checks one response against its case and against the email
// seen on the health check. It returns nil when everything matches.
func verifyResult(r Result, email string) error {
	if r.Err != nil {
		return r.Err
	}
	if r.Status != r.Case.WantStatus {
		return errors.Newf("status %d, want %d", r.Status, r.Case.WantStatus)
	}
	env := r.Envelope
	if env.IsSuccess == nil || env.OfficialEmail == nil {
		return errors.New("response is not an envelope")
	}
	wantSuccess := r.Case.WantStatus == http.StatusOK
	if *env.IsSuccess != wantSuccess {
		return errors.Newf("is_success %t, want %t", *env.IsSuccess, wantSuccess)
	}
	if *env.OfficialEmail != email {
		return errors.Newf("official_email %q, want %q", *env.OfficialEmail, email)
	}
	if !wantSuccess {
		if len(env.Data) != 0 {
			return errors.New("failure envelope carries data")
		}
		return nil
	}
	if len(env.Data) == 0 {
		return errors.New("success envelope without data")
	}
	if r.Case.WantData != nil && !sameJSON(env.Data, r.Case.WantData) {
		return errors.Newf("data %s, want %s", env.Data, r.Case.WantData)
	}
	return nil
}

func sameJSON(a, b json.RawMessage) bool {
	var ca, cb bytes.Buffer
	if json.Compact(&ca, a) != nil || json.Compact(&cb, b) != nil {
		return false
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}

// verifyResults tallies results into stats and logs mismatches.
func verifyResults(ctx context.Context, cfg *Config, results []Result, stats *Stats) error {
	log := logger.Get()
	stats.CasesSubmitted = len(results)

	failuresByKind := make(map[string]int)
	for _, r := range results {
		if r.Latency > stats.MaxLatency {
			stats.MaxLatency = r.Latency
		}
		err := verifyResult(r, stats.OfficialEmail)
		if err == nil {
			stats.CasesPassed++
			continue
		}
		stats.CasesFailed++
		failuresByKind[r.Case.Kind]++
		if r.Err != nil {
			stats.TransportErrs++
		}
		if cfg.Verbose {
			log.Warn(ctx, "case failed",
				logger.String("id", r.Case.ID),
				logger.String("kind", r.Case.Kind),
				logger.String("body", string(r.Case.Body)),
				logger.Error(err))
		}
	}

	if stats.CasesFailed > 0 {
		log.Warn(ctx, "mismatches found", logger.Any("byKind", failuresByKind))
		return errors.Wrapf(ErrMismatch, "%d of %d cases", stats.CasesFailed, stats.CasesSubmitted)
	}
	log.Info(ctx, "all responses verified", logger.Int("cases", stats.CasesPassed))
	return nil
}
