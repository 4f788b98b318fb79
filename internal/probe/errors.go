package probe

import "github.com/cockroachdb/errors"

// Sentinel kinds reported by Run.
var (
	ErrUnhealthy     = errors.New("service unhealthy")
	ErrMismatch      = errors.New("responses did not match expectations")
	ErrInvalidConfig = errors.New("invalid probe config")
)
