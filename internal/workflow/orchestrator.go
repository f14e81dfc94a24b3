// Package workflow drives deployments through a multi-phase state
// machine: discovery, planning, validation, deployment. It consults the
// recommendation engine at phase boundaries, supports interactive
// suspension, and writes terminal outcomes back into the pattern store.
package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fyrsmithlabs/deployd/internal/logging"
	"github.com/fyrsmithlabs/deployd/internal/patterns"
	"github.com/fyrsmithlabs/deployd/internal/recommend"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// timeNow is a variable for testing purposes (allows mocking time).
var timeNow = time.Now

// DefaultResourceType groups pattern records written by the orchestrator.
const DefaultResourceType = "deployment"

// Config holds orchestrator tuning.
type Config struct {
	// Interactive enables suspension with questions during phase
	// execution.
	Interactive bool

	// CollaboratorTimeout bounds each external collaborator call. Zero
	// means no timeout.
	CollaboratorTimeout time.Duration

	// ResourceType groups pattern records. Defaults to
	// DefaultResourceType.
	ResourceType string
}

// Orchestrator owns workflow sessions and drives them through phases.
//
// Operations on distinct sessions are independent and safely
// concurrent; operations on the same session serialize on that
// session's lock. External collaborator calls happen outside the
// session lock, which is re-acquired only to commit the resulting
// transition.
type Orchestrator struct {
	sessions sessionRegistry

	patterns   *patterns.Store
	engine     *recommend.Engine
	discoverer Discoverer
	validator  Validator
	provider   Provider

	cfg    Config
	logger *logging.Logger
}

// New creates an orchestrator. The pattern store, engine, and all three
// collaborators are required. A nil logger is replaced with a nop
// logger.
func New(store *patterns.Store, engine *recommend.Engine, discoverer Discoverer, validator Validator, provider Provider, cfg Config, logger *logging.Logger) (*Orchestrator, error) {
	if store == nil {
		return nil, fmt.Errorf("pattern store cannot be nil")
	}
	if engine == nil {
		return nil, fmt.Errorf("recommendation engine cannot be nil")
	}
	if discoverer == nil {
		return nil, fmt.Errorf("discoverer cannot be nil")
	}
	if validator == nil {
		return nil, fmt.Errorf("validator cannot be nil")
	}
	if provider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	if cfg.ResourceType == "" {
		cfg.ResourceType = DefaultResourceType
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Orchestrator{
		sessions:   newSessionRegistry(),
		patterns:   store,
		engine:     engine,
		discoverer: discoverer,
		validator:  validator,
		provider:   provider,
		cfg:        cfg,
		logger:     logger.Named("workflow"),
	}, nil
}

// InitializeWorkflow creates a new session in the Discovery phase and
// returns its ID. Fails with ErrInvalidRequirements when requirements
// are empty or rejected by the validator; no session is created and no
// pattern is recorded on failure. Never idempotent: each call creates a
// fresh session.
func (o *Orchestrator) InitializeWorkflow(ctx context.Context, req StartRequest) (string, error) {
	if strings.TrimSpace(req.AppName) == "" {
		return "", fmt.Errorf("%w: app name cannot be empty", ErrInvalidRequirements)
	}
	if strings.TrimSpace(req.Requirements) == "" {
		return "", fmt.Errorf("%w: requirements cannot be empty", ErrInvalidRequirements)
	}

	if rv, ok := o.validator.(RequirementsValidator); ok {
		if err := rv.ValidateRequirements(ctx, req.Requirements); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidRequirements, err)
		}
	}

	s := &session{
		id:           uuid.NewString(),
		appName:      req.AppName,
		requirements: req.Requirements,
		phase:        PhaseDiscovery,
		config:       map[string]any{},
		ctx:          NewContextStore(),
	}
	o.sessions.put(s)

	o.logger.Info(ctx, "workflow initialized",
		zap.String("session.id", s.id),
		zap.String("app", req.AppName))

	return s.id, nil
}

// CurrentPhase returns the session's current phase.
func (o *Orchestrator) CurrentPhase(id string) (Phase, error) {
	s, err := o.sessions.get(id)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase, nil
}

// Session returns an immutable snapshot of the session.
func (o *Orchestrator) Session(id string) (SessionView, error) {
	s, err := o.sessions.get(id)
	if err != nil {
		return SessionView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(), nil
}

// TransitionTo moves the session to targetPhase if it is a legal
// successor. Transitioning to the current phase is a no-op success, so
// at-least-once callers can retry safely. Before committing into
// Planning or Validation, qualifying recommendations are attached to
// the history entry.
func (o *Orchestrator) TransitionTo(ctx context.Context, id string, target Phase) error {
	s, err := o.sessions.get(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == target {
		return nil
	}

	status := StatusAdvanced
	detail := ""
	switch target {
	case PhaseFailed:
		status = StatusFailed
		detail = "failed by caller"
	case PhaseRolledBack:
		status = StatusRolledBack
		detail = "rolled back"
	}

	return o.transitionLocked(ctx, s, target, status, detail, o.recommendationsFor(ctx, s, target))
}

// ExecutePhase performs the work of the session's current phase by
// delegating to the appropriate collaborator, then auto-advances. In
// interactive mode the provider may instead suspend the workflow with
// pending questions; suspension is an observable outcome, not an error.
// Invoking ExecutePhase on a terminal or suspended session repeats the
// previous outcome without side effects.
func (o *Orchestrator) ExecutePhase(ctx context.Context, id string) (ExecuteResult, error) {
	s, err := o.sessions.get(id)
	if err != nil {
		return ExecuteResult{}, err
	}

	s.mu.Lock()
	if s.phase.IsTerminal() {
		res := ExecuteResult{WorkflowID: s.id, Phase: s.phase}
		s.mu.Unlock()
		return res, nil
	}
	if len(s.pendingQuestions) > 0 {
		res := o.suspendedResult(s)
		s.mu.Unlock()
		return res, nil
	}
	snap := s.view()
	s.mu.Unlock()

	ctx = logging.ContextWithSessionID(ctx, s.id)
	ctx = logging.ContextWithPhase(ctx, string(snap.Phase))

	switch snap.Phase {
	case PhaseDiscovery:
		return o.executeDiscovery(ctx, s, snap)
	case PhasePlanning:
		return o.executePlanning(ctx, s, snap)
	case PhaseValidation:
		return o.executeValidation(ctx, s, snap)
	case PhaseDeployment:
		return o.executeDeployment(ctx, s, snap)
	}
	return ExecuteResult{}, fmt.Errorf("no work defined for phase %s", snap.Phase)
}

// ContinueWorkflow merges user responses into the session's context
// store and resumes execution: the provider receives the full
// accumulated context and either asks further questions (continuing the
// suspension) or completes the phase, advancing the workflow.
func (o *Orchestrator) ContinueWorkflow(ctx context.Context, id string, responses map[string]any) (ExecuteResult, error) {
	s, err := o.sessions.get(id)
	if err != nil {
		return ExecuteResult{}, err
	}

	s.mu.Lock()
	if s.phase.IsTerminal() {
		res := ExecuteResult{WorkflowID: s.id, Phase: s.phase}
		s.mu.Unlock()
		return res, nil
	}
	s.ctx.Merge(responses)
	expected := s.phase
	snap := s.view()
	s.mu.Unlock()

	ctx = logging.ContextWithSessionID(ctx, s.id)
	ctx = logging.ContextWithPhase(ctx, string(expected))

	result, err := o.callProvider(ctx, snap, "continue")
	if err != nil {
		return o.failPhase(ctx, s, expected, "provider", err)
	}

	if len(result.Questions) > 0 {
		return o.suspend(ctx, s, expected, result.Questions)
	}

	return o.advance(ctx, s, expected, expected.Next(), result.Config,
		fmt.Sprintf("resumed with %d responses", len(responses)), result.NextSteps)
}

// Rollback transitions the session to RolledBack from any state except
// Completed and records a single failure pattern with description
// "rolled back". Rolling back an already rolled-back session is a
// no-op success.
func (o *Orchestrator) Rollback(ctx context.Context, id string) error {
	s, err := o.sessions.get(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseRolledBack {
		return nil
	}
	if s.phase == PhaseCompleted {
		return fmt.Errorf("%w: cannot roll back a completed workflow", ErrIllegalTransition)
	}

	return o.transitionLocked(ctx, s, PhaseRolledBack, StatusRolledBack, "rolled back", nil)
}

// SetContext stores a value in the session's context store.
func (o *Orchestrator) SetContext(id, key string, value any) error {
	s, err := o.sessions.get(id)
	if err != nil {
		return err
	}
	s.ctx.Set(key, value)
	return nil
}

// ContextSnapshot returns a copy of the session's context entries.
func (o *Orchestrator) ContextSnapshot(id string) (map[string]any, error) {
	s, err := o.sessions.get(id)
	if err != nil {
		return nil, err
	}
	return s.ctx.Snapshot(), nil
}

// ClearContext removes the given context keys, or all entries when
// called with no keys.
func (o *Orchestrator) ClearContext(id string, keys ...string) error {
	s, err := o.sessions.get(id)
	if err != nil {
		return err
	}
	s.ctx.Clear(keys...)
	return nil
}

// Phase execution

func (o *Orchestrator) executeDiscovery(ctx context.Context, s *session, snap SessionView) (ExecuteResult, error) {
	cctx, cancel := o.collaboratorContext(ctx)
	defer cancel()

	resources, err := o.discoverer.DiscoverResources(cctx)
	if err != nil {
		return o.failPhase(ctx, s, snap.Phase, "discovery", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != snap.Phase {
		return ExecuteResult{WorkflowID: s.id, Phase: s.phase}, nil
	}
	s.resources = resources

	detail := fmt.Sprintf("discovered %d resource kinds", len(resources))
	if err := o.transitionLocked(ctx, s, PhasePlanning, StatusAdvanced, detail, o.recommendationsFor(ctx, s, PhasePlanning)); err != nil {
		return ExecuteResult{}, err
	}
	return ExecuteResult{WorkflowID: s.id, Phase: s.phase}, nil
}

func (o *Orchestrator) executePlanning(ctx context.Context, s *session, snap SessionView) (ExecuteResult, error) {
	result, err := o.callProvider(ctx, snap, snap.Requirements)
	if err != nil {
		return o.failPhase(ctx, s, snap.Phase, "provider", err)
	}

	if len(result.Questions) > 0 && o.cfg.Interactive {
		return o.suspend(ctx, s, snap.Phase, result.Questions)
	}
	if len(result.Questions) > 0 {
		o.logger.Debug(ctx, "ignoring provider questions in non-interactive mode",
			zap.Int("count", len(result.Questions)))
	}

	return o.advance(ctx, s, snap.Phase, PhaseValidation, result.Config, "plan generated", result.NextSteps)
}

func (o *Orchestrator) executeValidation(ctx context.Context, s *session, snap SessionView) (ExecuteResult, error) {
	kind := manifestKind(snap.Config)

	cctx, cancel := o.collaboratorContext(ctx)
	defer cancel()

	schema, err := o.discoverer.ExplainResource(cctx, kind)
	if err != nil {
		return o.failPhase(ctx, s, snap.Phase, "discovery", err)
	}

	verdict, err := o.validator.ValidateManifest(cctx, snap.Config, schema)
	if err != nil {
		return o.failPhase(ctx, s, snap.Phase, "validator", err)
	}
	if !verdict.Valid {
		cause := fmt.Errorf("manifest invalid: %s", strings.Join(verdict.Errors, "; "))
		return o.failPhase(ctx, s, snap.Phase, "validator", cause)
	}

	return o.advance(ctx, s, snap.Phase, PhaseDeployment, nil, "manifest validated", nil)
}

func (o *Orchestrator) executeDeployment(ctx context.Context, s *session, snap SessionView) (ExecuteResult, error) {
	result, err := o.callProvider(ctx, snap, "deploy")
	if err != nil {
		return o.failPhase(ctx, s, snap.Phase, "provider", err)
	}

	return o.advance(ctx, s, snap.Phase, PhaseCompleted, result.Config, "deployed", result.NextSteps)
}

// Commit helpers

// advance re-acquires the session lock, verifies no concurrent
// operation committed in the meantime, merges the config fragment, and
// commits the transition.
func (o *Orchestrator) advance(ctx context.Context, s *session, expected, target Phase, fragment map[string]any, detail string, nextSteps []string) (ExecuteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != expected {
		return ExecuteResult{WorkflowID: s.id, Phase: s.phase}, nil
	}
	s.mergeConfig(fragment)

	if err := o.transitionLocked(ctx, s, target, StatusAdvanced, detail, o.recommendationsFor(ctx, s, target)); err != nil {
		return ExecuteResult{}, err
	}

	return ExecuteResult{
		WorkflowID: s.id,
		Phase:      s.phase,
		NextSteps:  nextSteps,
	}, nil
}

// suspend parks the session with pending questions. The current phase
// is unchanged; suspension is a logical pause, not a blocked goroutine.
func (o *Orchestrator) suspend(ctx context.Context, s *session, expected Phase, questions []string) (ExecuteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != expected {
		return ExecuteResult{WorkflowID: s.id, Phase: s.phase}, nil
	}

	s.pendingQuestions = append([]string(nil), questions...)
	SuspensionsTotal.Inc()

	o.logger.Info(ctx, "workflow suspended awaiting user input",
		zap.Int("questions", len(questions)))

	return o.suspendedResult(s), nil
}

func (o *Orchestrator) suspendedResult(s *session) ExecuteResult {
	questions := make([]string, len(s.pendingQuestions))
	copy(questions, s.pendingQuestions)
	return ExecuteResult{
		WorkflowID: s.id,
		Phase:      s.phase,
		Suspended:  true,
		Questions:  questions,
	}
}

// failPhase commits a transition to Failed caused by a collaborator
// error and surfaces the wrapped cause to the caller.
func (o *Orchestrator) failPhase(ctx context.Context, s *session, expected Phase, collaborator string, cause error) (ExecuteResult, error) {
	CollaboratorFailuresTotal.WithLabelValues(collaborator).Inc()
	wrapped := fmt.Errorf("%w: %s: %w", ErrCollaboratorFailure, collaborator, cause)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != expected {
		return ExecuteResult{WorkflowID: s.id, Phase: s.phase}, wrapped
	}

	if err := o.transitionLocked(ctx, s, PhaseFailed, StatusFailed, cause.Error(), nil); err != nil {
		// The failure transition itself could not commit; log the
		// inconsistency rather than dropping it.
		o.logger.Error(ctx, "failed to commit failure transition",
			zap.String("expected", string(expected)),
			zap.Error(err))
		return ExecuteResult{WorkflowID: s.id, Phase: s.phase}, wrapped
	}

	return ExecuteResult{WorkflowID: s.id, Phase: s.phase}, wrapped
}

// transitionLocked commits a phase transition. Caller must hold s.mu.
// The commit is all-or-nothing: phase update, history append, and the
// terminal pattern write happen before the lock is released.
func (o *Orchestrator) transitionLocked(ctx context.Context, s *session, target Phase, status OutcomeStatus, detail string, recs []recommend.Recommendation) error {
	if !legalTransition(s.phase, target) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s.phase, target)
	}

	from := s.phase
	s.history = append(s.history, HistoryEntry{
		Phase: target,
		Outcome: PhaseOutcome{
			Status:          status,
			Detail:          detail,
			Recommendations: recs,
			At:              timeNow(),
		},
	})
	s.phase = target
	s.pendingQuestions = nil
	TransitionsTotal.WithLabelValues(string(from), string(target)).Inc()

	o.logger.Info(ctx, "phase transition committed",
		zap.String("session.id", s.id),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
		zap.Int("recommendations", len(recs)))

	if target.IsTerminal() {
		OutcomesTotal.WithLabelValues(string(target)).Inc()
		o.recordOutcomeLocked(ctx, s, target, detail)
	}

	return nil
}

// recordOutcomeLocked writes the terminal outcome into the pattern
// store exactly once per session. Caller must hold s.mu.
func (o *Orchestrator) recordOutcomeLocked(ctx context.Context, s *session, target Phase, detail string) {
	if s.recorded {
		return
	}
	s.recorded = true

	cfg := s.configSnapshot()
	switch target {
	case PhaseCompleted:
		o.patterns.RecordSuccess(ctx, o.cfg.ResourceType, cfg)
		PatternWritesTotal.WithLabelValues("success").Inc()
	case PhaseFailed, PhaseRolledBack:
		if detail == "" {
			detail = string(target)
		}
		o.patterns.RecordFailure(ctx, o.cfg.ResourceType, cfg, detail)
		PatternWritesTotal.WithLabelValues("failure").Inc()
	}
}

// recommendationsFor consults the engine when committing into Planning
// or Validation. Caller must hold s.mu.
func (o *Orchestrator) recommendationsFor(ctx context.Context, s *session, target Phase) []recommend.Recommendation {
	if target != PhasePlanning && target != PhaseValidation {
		return nil
	}
	return o.engine.Recommendations(ctx, o.cfg.ResourceType, s.configSnapshot())
}

// callProvider invokes the model provider with the full session context
// under the collaborator timeout.
func (o *Orchestrator) callProvider(ctx context.Context, snap SessionView, input string) (ProviderResult, error) {
	cctx, cancel := o.collaboratorContext(ctx)
	defer cancel()

	return o.provider.ProcessUserInput(cctx, SessionContext{
		SessionID:    snap.ID,
		AppName:      snap.AppName,
		Requirements: snap.Requirements,
		Phase:        snap.Phase,
		Config:       snap.Config,
		Context:      snap.Context,
		Interactive:  o.cfg.Interactive,
	}, input)
}

func (o *Orchestrator) collaboratorContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.cfg.CollaboratorTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, o.cfg.CollaboratorTimeout)
}

// manifestKind extracts the manifest kind from the accumulated config,
// defaulting to Deployment.
func manifestKind(cfg map[string]any) string {
	if kind, ok := cfg["kind"].(string); ok && kind != "" {
		return kind
	}
	return "Deployment"
}

// sessionRegistry is the concurrent session map. Lookup takes the
// registry lock only; per-session mutation takes the session lock.
type sessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func newSessionRegistry() sessionRegistry {
	return sessionRegistry{sessions: make(map[string]*session)}
}

func (r *sessionRegistry) put(s *session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.id] = s
}

func (r *sessionRegistry) get(id string) (*session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	return s, nil
}
