// Package probe drives a running bfhl service with generated requests and
// checks every envelope against locally computed answers.
package probe

import (
	"encoding/json"
	"time"
)

// Config holds configuration for a probe run.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumCases   int           // Number of requests to generate
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	Seed       uint64        // Seed for case generation; 0 picks one from the clock
	SkipAI     bool          // Leave the AI operation out
	OutputFile string        // Optional JSON dump of the generated cases
	Verbose    bool          // Log every mismatch
}

// Case is one request together with the expected outcome.
type Case struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Body       json.RawMessage `json:"body"`
	WantStatus int             `json:"want_status"`
	// WantData is compared verbatim after compaction. Nil skips the check.
	WantData json.RawMessage `json:"want_data,omitempty"`
}

// Envelope mirrors the response shape of the service.
type Envelope struct {
	IsSuccess     *bool           `json:"is_success"`
	OfficialEmail *string         `json:"official_email"`
	Data          json.RawMessage `json:"data,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// Result is the observed outcome of one case.
type Result struct {
	Case     Case
	Status   int
	Envelope Envelope
	Latency  time.Duration
	Err      error
}

// Stats holds run statistics.
type Stats struct {
	CasesGenerated int
	CasesSubmitted int
	CasesPassed    int
	CasesFailed    int
	TransportErrs  int
	OfficialEmail  string
	MaxLatency     time.Duration
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
