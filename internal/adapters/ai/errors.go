package ai

import "github.com/cockroachdb/errors"

// Sentinel kinds for provider errors.
var (
	ErrMissingAPIKey   = errors.New("ai api key missing")
	ErrUnknownProvider = errors.New("unknown ai provider")
	ErrUpstreamStatus  = errors.New("ai upstream returned an error status")
	ErrMalformedReply  = errors.New("ai upstream reply malformed")
	ErrEmptyReply      = errors.New("ai upstream reply empty")
	ErrRateLimited     = errors.New("ai call rate limited")
	ErrUpstreamConnect = errors.New("ai upstream unreachable")
)
