package patterns

import (
	"time"
)

// Outcome represents the result type of a recorded pattern.
type Outcome string

const (
	// OutcomeSuccess indicates a configuration that deployed successfully.
	OutcomeSuccess Outcome = "success"

	// OutcomeFailure indicates a configuration that failed or was rolled back.
	OutcomeFailure Outcome = "failure"
)

// SuccessRecord is an immutable record of a configuration that worked.
//
// Records are created by the orchestrator on successful workflow
// completion and never mutated afterwards.
type SuccessRecord struct {
	// ResourceType groups records (e.g. "deployment", "service").
	ResourceType string `json:"resource_type"`

	// Config is the configuration that succeeded.
	Config map[string]any `json:"config"`

	// RecordedAt is when the record was appended.
	RecordedAt time.Time `json:"recorded_at"`
}

// FailureRecord is an immutable record of a configuration that failed.
type FailureRecord struct {
	ResourceType string         `json:"resource_type"`
	Config       map[string]any `json:"config"`

	// ErrorDescription is the human-readable cause of the failure.
	ErrorDescription string `json:"error_description"`

	RecordedAt time.Time `json:"recorded_at"`
}
