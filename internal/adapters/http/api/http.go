// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/bfhl/internal/domain/bfhl"
	"github.com/okian/bfhl/pkg/logger"
	"github.com/okian/bfhl/pkg/metrics"
)

// Default server configuration constants.
const (
	defaultMaxBodyBytes = 1 << 20
	notFoundMessage     = "Not found"
)

// Dependencies required by HTTP handlers. Using an interface keeps the
// handler layer loosely coupled to the service implementation.
type Dependencies interface {
	// Handle runs one bfhl request body. Errors for which
	// bfhl.IsClientError holds are the caller's fault.
	Handle(ctx context.Context, body []byte) (bfhl.Operation, any, error)
}

// envelope is the uniform response shape of every bfhl route.
type envelope struct {
	IsSuccess     bool   `json:"is_success"`
	OfficialEmail string `json:"official_email"`
	Data          any    `json:"data,omitempty"`
	Error         string `json:"error,omitempty"`
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithOfficialEmail sets the address echoed in every envelope.
func WithOfficialEmail(email string) ServerOption {
	return func(s *Server) {
		s.officialEmail = email
	}
}

// WithMaxBodyBytes caps the size of POST /bfhl bodies.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger used by the handlers.
func WithLogger(l logger.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	officialEmail string
	maxBodyBytes  int64
	log           logger.Logger

	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	bfhlHandler   *BFHLHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{maxBodyBytes: defaultMaxBodyBytes, log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler(s.officialEmail)
	s.statsHandler = NewStatsHandler(statsProvider)
	s.bfhlHandler = NewBFHLHandler(deps, s.officialEmail, s.maxBodyBytes, s.log)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc("/bfhl", MetricsMiddleware(s.bfhlHandler.HandleBFHL, "bfhl"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/", MetricsMiddleware(s.HandleNotFound, "not_found"))
}

// HandleNotFound answers every unmatched route.
func (s *Server) HandleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeNotFound(w, s.officialEmail)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, email string, data any) {
	writeJSON(w, http.StatusOK, envelope{IsSuccess: true, OfficialEmail: email, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, email string) {
	writeJSON(w, status, envelope{IsSuccess: false, OfficialEmail: email})
}

func writeNotFound(w http.ResponseWriter, email string) {
	writeJSON(w, http.StatusNotFound, envelope{IsSuccess: false, OfficialEmail: email, Error: notFoundMessage})
}
