package workflow

import (
	"sync"
	"time"

	"github.com/fyrsmithlabs/deployd/internal/recommend"
)

// OutcomeStatus classifies a history entry.
type OutcomeStatus string

const (
	// StatusAdvanced marks a committed forward transition.
	StatusAdvanced OutcomeStatus = "advanced"

	// StatusSuspended marks a suspension awaiting user responses.
	StatusSuspended OutcomeStatus = "suspended"

	// StatusFailed marks a transition into the Failed phase.
	StatusFailed OutcomeStatus = "failed"

	// StatusRolledBack marks a transition into the RolledBack phase.
	StatusRolledBack OutcomeStatus = "rolled_back"
)

// PhaseOutcome is what happened when a phase was entered.
type PhaseOutcome struct {
	Status OutcomeStatus `json:"status"`
	Detail string        `json:"detail,omitempty"`

	// Recommendations are the prior-pattern suggestions attached when
	// transitioning into Planning or Validation.
	Recommendations []recommend.Recommendation `json:"recommendations,omitempty"`

	At time.Time `json:"at"`
}

// HistoryEntry records one committed phase transition.
type HistoryEntry struct {
	Phase   Phase        `json:"phase"`
	Outcome PhaseOutcome `json:"outcome"`
}

// StartRequest initializes a workflow.
type StartRequest struct {
	AppName      string `json:"app_name"`
	Requirements string `json:"requirements"`
}

// ExecuteResult is the observable outcome of ExecutePhase or
// ContinueWorkflow. Suspension is a first-class outcome, not an error.
type ExecuteResult struct {
	WorkflowID string `json:"workflow_id"`
	Phase      Phase  `json:"phase"`

	// Suspended is true when the workflow is awaiting user responses.
	Suspended bool `json:"suspended,omitempty"`

	// Questions are the pending questions when suspended.
	Questions []string `json:"questions,omitempty"`

	// NextSteps are informational hints from the provider.
	NextSteps []string `json:"next_steps,omitempty"`
}

// SessionView is an immutable snapshot of a workflow session.
type SessionView struct {
	ID               string         `json:"id"`
	AppName          string         `json:"app_name"`
	Requirements     string         `json:"requirements"`
	Phase            Phase          `json:"phase"`
	PendingQuestions []string       `json:"pending_questions,omitempty"`
	History          []HistoryEntry `json:"history"`
	Config           map[string]any `json:"config"`
	Context          map[string]any `json:"context"`
}

// session is the orchestrator-owned mutable workflow state. All fields
// except id and ctx are guarded by mu; ctx has its own lock.
type session struct {
	mu sync.Mutex

	id           string
	appName      string
	requirements string

	phase            Phase
	history          []HistoryEntry
	pendingQuestions []string

	// config is the configuration accumulated across phases.
	config map[string]any

	// resources are the descriptors found during discovery.
	resources []ResourceDescriptor

	// ctx is the session-scoped context store.
	ctx *ContextStore

	// recorded guards the exactly-once terminal pattern write.
	recorded bool
}

func (s *session) view() SessionView {
	history := make([]HistoryEntry, len(s.history))
	copy(history, s.history)

	questions := make([]string, len(s.pendingQuestions))
	copy(questions, s.pendingQuestions)

	cfg := make(map[string]any, len(s.config))
	for k, v := range s.config {
		cfg[k] = v
	}

	return SessionView{
		ID:               s.id,
		AppName:          s.appName,
		Requirements:     s.requirements,
		Phase:            s.phase,
		PendingQuestions: questions,
		History:          history,
		Config:           cfg,
		Context:          s.ctx.Snapshot(),
	}
}

// configSnapshot copies the accumulated configuration.
func (s *session) configSnapshot() map[string]any {
	out := make(map[string]any, len(s.config))
	for k, v := range s.config {
		out[k] = v
	}
	return out
}

// mergeConfig folds a provider config fragment into the session.
func (s *session) mergeConfig(fragment map[string]any) {
	for k, v := range fragment {
		s.config[k] = v
	}
}
