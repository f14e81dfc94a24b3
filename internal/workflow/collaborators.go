package workflow

import (
	"context"
	"fmt"
)

// ResourceDescriptor describes a resource kind available in the cluster.
type ResourceDescriptor struct {
	Kind       string `json:"kind"`
	APIVersion string `json:"api_version"`
	Namespaced bool   `json:"namespaced"`
}

// SchemaDescription is an explain-style description of a resource kind.
type SchemaDescription struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`

	// Required lists top-level fields a manifest for this kind must set.
	Required []string `json:"required"`

	// Fields maps field names to their descriptions.
	Fields map[string]string `json:"fields"`
}

// ValidationResult is the outcome of manifest validation.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// SessionContext is the accumulated session state handed to the model
// provider on each call.
type SessionContext struct {
	SessionID    string         `json:"session_id"`
	AppName      string         `json:"app_name"`
	Requirements string         `json:"requirements"`
	Phase        Phase          `json:"phase"`

	// Config is the configuration accumulated so far.
	Config map[string]any `json:"config"`

	// Context is the session's context-store snapshot, including user
	// responses merged in by ContinueWorkflow.
	Context map[string]any `json:"context"`

	// Interactive signals that the provider may suspend with questions.
	Interactive bool `json:"interactive"`
}

// ProviderResult is the model provider's answer for one phase step.
type ProviderResult struct {
	// Phase is the phase the provider considers this result to belong to.
	Phase Phase `json:"phase"`

	// Questions, when non-empty, suspends the workflow awaiting user
	// responses.
	Questions []string `json:"questions,omitempty"`

	// Config carries configuration fragments to merge into the session.
	Config map[string]any `json:"config,omitempty"`

	// NextSteps are informational hints surfaced to the caller.
	NextSteps []string `json:"next_steps,omitempty"`
}

// Discoverer is the cluster discovery collaborator.
type Discoverer interface {
	// DiscoverResources enumerates available resource kinds.
	// May fail with ErrConnectionFailed.
	DiscoverResources(ctx context.Context) ([]ResourceDescriptor, error)

	// ExplainResource retrieves the schema for a kind.
	// May fail with ErrNotFound.
	ExplainResource(ctx context.Context, kind string) (SchemaDescription, error)
}

// Validator is the schema/validation collaborator.
type Validator interface {
	ValidateManifest(ctx context.Context, manifest map[string]any, schema SchemaDescription) (ValidationResult, error)
}

// RequirementsValidator is an optional extension of Validator: when the
// configured validator implements it, InitializeWorkflow consults it
// beyond the built-in non-empty check.
type RequirementsValidator interface {
	ValidateRequirements(ctx context.Context, requirements string) error
}

// Provider is the model-provider collaborator.
type Provider interface {
	// ProcessUserInput advances one phase step. May fail with
	// ErrProviderUnavailable or ErrMissingCredential.
	ProcessUserInput(ctx context.Context, sctx SessionContext, input string) (ProviderResult, error)
}

// CredentialProvider wraps a Provider and refuses to delegate without a
// credential, naming the environment variable that supplies it.
type CredentialProvider struct {
	inner  Provider
	apiKey string
	envVar string
}

// NewCredentialProvider wraps inner with a credential check. envVar is
// surfaced in the error so the caller knows what to set.
func NewCredentialProvider(inner Provider, apiKey, envVar string) *CredentialProvider {
	return &CredentialProvider{inner: inner, apiKey: apiKey, envVar: envVar}
}

// ProcessUserInput delegates when the credential is present.
func (p *CredentialProvider) ProcessUserInput(ctx context.Context, sctx SessionContext, input string) (ProviderResult, error) {
	if p.apiKey == "" {
		return ProviderResult{}, fmt.Errorf("%w: set %s", ErrMissingCredential, p.envVar)
	}
	return p.inner.ProcessUserInput(ctx, sctx, input)
}
