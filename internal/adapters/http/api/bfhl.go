package api

import (
	"io"
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/okian/bfhl/internal/domain/bfhl"
	"github.com/okian/bfhl/pkg/logger"
)

// BFHLHandler handles POST /bfhl.
type BFHLHandler struct {
	deps          Dependencies
	officialEmail string
	maxBodyBytes  int64
	log           logger.Logger
}

// NewBFHLHandler creates a new bfhl handler.
func NewBFHLHandler(deps Dependencies, officialEmail string, maxBodyBytes int64, log logger.Logger) *BFHLHandler {
	return &BFHLHandler{deps: deps, officialEmail: officialEmail, maxBodyBytes: maxBodyBytes, log: log}
}

// HandleBFHL reads the body, runs the requested operation and writes the
// envelope. Error details stay in the server log.
func (h *BFHLHandler) HandleBFHL(w http.ResponseWriter, r *http.Request) {
	const op = "api.bfhl"
	if r.Method != http.MethodPost {
		writeNotFound(w, h.officialEmail)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.log.Debug(r.Context(), "body rejected", logger.Error(WrapKind(op, ErrBodyTooLarge, err)))
			writeFailure(w, http.StatusRequestEntityTooLarge, h.officialEmail)
			return
		}
		h.log.Debug(r.Context(), "body unreadable", logger.Error(WrapKind(op, ErrBadRequest, err)))
		writeFailure(w, http.StatusBadRequest, h.officialEmail)
		return
	}

	operation, data, err := h.deps.Handle(r.Context(), body)
	if err != nil {
		status := http.StatusInternalServerError
		if bfhl.IsClientError(err) {
			status = http.StatusBadRequest
		}
		h.log.Debug(r.Context(), "bfhl request failed",
			logger.String("operation", string(operation)),
			logger.Int("status", status),
			logger.Error(err))
		writeFailure(w, status, h.officialEmail)
		return
	}
	writeSuccess(w, h.officialEmail, data)
}
