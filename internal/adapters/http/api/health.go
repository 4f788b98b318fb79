package api

import "net/http"

// HealthHandler handles health check requests.
type HealthHandler struct {
	officialEmail string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(officialEmail string) *HealthHandler {
	return &HealthHandler{officialEmail: officialEmail}
}

// HandleHealth handles GET /health. The request body is ignored.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeNotFound(w, h.officialEmail)
		return
	}
	writeSuccess(w, h.officialEmail, nil)
}
