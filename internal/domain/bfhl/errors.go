package bfhl

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrInvalidRequest is the umbrella kind for every client-side failure.
// Errors marked with it map to 400; everything else is a server fault.
var ErrInvalidRequest = errors.New("invalid request")

// Sentinel kinds for request failures. All of them are marked as
// ErrInvalidRequest except ErrUpstream.
var (
	ErrMalformedBody    = errors.Mark(errors.New("malformed body"), ErrInvalidRequest)
	ErrKeyCount         = errors.Mark(errors.New("body must contain exactly one key"), ErrInvalidRequest)
	ErrUnknownOperation = errors.Mark(errors.New("unknown operation"), ErrInvalidRequest)
	ErrInvalidValue     = errors.Mark(errors.New("invalid value"), ErrInvalidRequest)

	ErrUpstream = errors.New("upstream failure")
)

// IsClientError reports whether err was caused by the request itself.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRequest)
}

func invalidValue(op Operation, format string, args ...any) error {
	return errors.Wrapf(ErrInvalidValue, "%s: %s", op, fmt.Sprintf(format, args...))
}
