package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/okian/bfhl/pkg/logger"
)

// Worker configuration constants.
const (
	workerChannelMultiplier = 2
	progressInterval        = time.Second
	maxResponseBytes        = 4 << 20
)

// HTTPClient wraps http.Client with the probe's conventions.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}, baseURL: baseURL}
}

// do sends one request and decodes the envelope. A body that is not an
// envelope leaves env zero and is reported by verification.
func (c *HTTPClient) do(ctx context.Context, method, path, requestID string, body []byte) (int, Envelope, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, Envelope{}, errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, Envelope{}, errors.Wrapf(err, "%s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, Envelope{}, errors.Wrap(err, "read response")
	}
	var env Envelope
	_ = json.Unmarshal(raw, &env)
	return resp.StatusCode, env, nil
}

// submitCases posts every case with cfg.Workers goroutines and returns the
// results in case order.
func submitCases(ctx context.Context, cfg *Config, cases []Case) []Result {
	log := logger.Get()
	log.Info(ctx, "submitting cases", logger.Int("cases", len(cases)), logger.Int("workers", cfg.Workers))

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)
	results := make([]Result, len(cases))

	var submitted atomic.Int64
	var lastReport atomic.Int64

	indexes := make(chan int, cfg.Workers*workerChannelMultiplier)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				c := cases[i]
				start := time.Now()
				status, env, err := client.do(ctx, http.MethodPost, "/bfhl", c.ID, c.Body)
				results[i] = Result{Case: c, Status: status, Envelope: env, Latency: time.Since(start), Err: err}

				n := submitted.Add(1)
				now := time.Now().UnixNano()
				last := lastReport.Load()
				if time.Duration(now-last) >= progressInterval && lastReport.CompareAndSwap(last, now) {
					log.Info(ctx, "progress", logger.Int("submitted", int(n)), logger.Int("total", len(cases)))
				}
			}
		}()
	}

	go func() {
		defer close(indexes)
		for i := range cases {
			select {
			case <-ctx.Done():
				return
			case indexes <- i:
			}
		}
	}()

	wg.Wait()
	return results[:submitted.Load()]
}
