package api

import "github.com/cockroachdb/errors"

// Sentinel kinds for API errors.
var (
	ErrServe        = errors.New("http serve failed")
	ErrBadRequest   = errors.New("bad request")
	ErrBodyTooLarge = errors.New("request body too large")
	ErrPanic        = errors.New("handler panicked")
)

// WrapKind annotates err with the operation name and marks it with kind so
// that errors.Is(err, kind) holds.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return NewKind(op, kind)
	}
	return errors.Mark(errors.Wrap(err, op), kind)
}

// NewKind returns a fresh error of the given kind tagged with the operation.
func NewKind(op string, kind error) error {
	return errors.Wrap(kind, op)
}
