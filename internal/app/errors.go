package service

import "github.com/cockroachdb/errors"

// Service errors. None of them is a client error.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrComputeTimeout = errors.New("computation timed out")
	ErrComputePanic   = errors.New("computation panicked")
)
