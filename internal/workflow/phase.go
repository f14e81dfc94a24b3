package workflow

import "fmt"

// Phase is a named stage of the deployment workflow state machine.
type Phase string

const (
	// PhaseDiscovery gathers cluster facts. Initial phase.
	PhaseDiscovery Phase = "discovery"

	// PhasePlanning generates a candidate configuration via the model
	// provider, biased by prior patterns.
	PhasePlanning Phase = "planning"

	// PhaseValidation validates the candidate manifest against resource
	// schemas.
	PhaseValidation Phase = "validation"

	// PhaseDeployment applies the validated configuration.
	PhaseDeployment Phase = "deployment"

	// PhaseCompleted is the terminal success state.
	PhaseCompleted Phase = "completed"

	// PhaseFailed is the terminal failure state.
	PhaseFailed Phase = "failed"

	// PhaseRolledBack is the terminal state after an explicit rollback.
	PhaseRolledBack Phase = "rolled_back"
)

// successors maps each phase to its legal forward successor. Failed and
// RolledBack are reachable from any non-terminal phase and are handled
// separately in legalTransition.
var successors = map[Phase]Phase{
	PhaseDiscovery:  PhasePlanning,
	PhasePlanning:   PhaseValidation,
	PhaseValidation: PhaseDeployment,
	PhaseDeployment: PhaseCompleted,
}

// IsTerminal reports whether the phase ends the workflow.
func (p Phase) IsTerminal() bool {
	switch p {
	case PhaseCompleted, PhaseFailed, PhaseRolledBack:
		return true
	}
	return false
}

// Next returns the legal forward successor, or "" for terminal phases.
func (p Phase) Next() Phase {
	return successors[p]
}

// legalTransition reports whether from → to is an edge of the state
// graph. A self-transition is not an edge; callers treat it as a no-op
// before consulting this.
func legalTransition(from, to Phase) bool {
	if from.IsTerminal() {
		return false
	}
	if to == PhaseFailed || to == PhaseRolledBack {
		return true
	}
	return successors[from] == to
}

// ParsePhase converts a string into a Phase.
func ParsePhase(s string) (Phase, error) {
	switch Phase(s) {
	case PhaseDiscovery, PhasePlanning, PhaseValidation, PhaseDeployment,
		PhaseCompleted, PhaseFailed, PhaseRolledBack:
		return Phase(s), nil
	}
	return "", fmt.Errorf("unknown phase %q", s)
}
