package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
)

// upstreamError mirrors the error body used by both Gemini and
// OpenAI-compatible backends: {"error": {"message": "..."}}.
type upstreamError struct {
	Error struct {
		Message string `json:"message"`
		Status  string `json:"status,omitempty"`
	} `json:"error"`
}

// postJSON sends body as JSON and decodes a 2xx reply into out.
func postJSON(ctx context.Context, client *http.Client, url string, header http.Header, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "send request"), ErrUpstreamConnect)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return mapHTTPError(resp)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxReplyBytes)).Decode(out); err != nil {
		return errors.Mark(errors.Wrap(err, "decode reply"), ErrMalformedReply)
	}
	return nil
}

// mapHTTPError turns a non-2xx reply into an ErrUpstreamStatus carrying the
// status code and, when the body has one, the upstream message.
func mapHTTPError(resp *http.Response) error {
	msg := extractErrorMessage(resp.Body)
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return errors.Wrapf(ErrUpstreamStatus, "HTTP %d: %s", resp.StatusCode, msg)
}

func extractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBytes))
	if err != nil || len(data) == 0 {
		return ""
	}
	var e upstreamError
	if err := json.Unmarshal(data, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return ""
}
