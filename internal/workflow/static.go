package workflow

import (
	"context"
	"fmt"
	"strings"
)

// StaticDiscoverer serves a fixed resource catalog. It stands in for a
// live cluster connection in tests and offline runs; the production
// discovery client satisfies the same interface.
type StaticDiscoverer struct {
	Resources []ResourceDescriptor
	Schemas   map[string]SchemaDescription
}

// NewDefaultDiscoverer returns a discoverer covering the common
// workload kinds.
func NewDefaultDiscoverer() *StaticDiscoverer {
	return &StaticDiscoverer{
		Resources: []ResourceDescriptor{
			{Kind: "Deployment", APIVersion: "apps/v1", Namespaced: true},
			{Kind: "Service", APIVersion: "v1", Namespaced: true},
			{Kind: "ConfigMap", APIVersion: "v1", Namespaced: true},
			{Kind: "Ingress", APIVersion: "networking.k8s.io/v1", Namespaced: true},
		},
		Schemas: map[string]SchemaDescription{
			"Deployment": {
				Kind:        "Deployment",
				Description: "A Deployment provides declarative updates for Pods and ReplicaSets.",
				Required:    []string{"kind", "image"},
				Fields: map[string]string{
					"kind":     "resource kind",
					"image":    "container image reference",
					"replicas": "desired pod count",
					"port":     "container port to expose",
				},
			},
			"Service": {
				Kind:        "Service",
				Description: "A Service exposes an application running on a set of Pods.",
				Required:    []string{"kind", "port"},
				Fields: map[string]string{
					"kind": "resource kind",
					"port": "service port",
				},
			},
		},
	}
}

// DiscoverResources returns a copy of the catalog.
func (d *StaticDiscoverer) DiscoverResources(ctx context.Context) ([]ResourceDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	out := make([]ResourceDescriptor, len(d.Resources))
	copy(out, d.Resources)
	return out, nil
}

// ExplainResource returns the schema for kind.
func (d *StaticDiscoverer) ExplainResource(ctx context.Context, kind string) (SchemaDescription, error) {
	if err := ctx.Err(); err != nil {
		return SchemaDescription{}, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	schema, ok := d.Schemas[kind]
	if !ok {
		return SchemaDescription{}, fmt.Errorf("%w: kind %q", ErrNotFound, kind)
	}
	return schema, nil
}

// SchemaValidator validates manifests against a schema's required
// fields. It also applies a minimal requirements sanity check during
// workflow initialization.
type SchemaValidator struct{}

// NewSchemaValidator creates a schema validator.
func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{}
}

// ValidateManifest checks that every required field is present and
// non-nil. Value semantics are left to the cluster.
func (v *SchemaValidator) ValidateManifest(ctx context.Context, manifest map[string]any, schema SchemaDescription) (ValidationResult, error) {
	var errs []string
	for _, field := range schema.Required {
		if val, ok := manifest[field]; !ok || val == nil {
			errs = append(errs, fmt.Sprintf("missing required field %q", field))
		}
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}, nil
}

// ValidateRequirements rejects requirements that cannot possibly
// describe a deployment.
func (v *SchemaValidator) ValidateRequirements(ctx context.Context, requirements string) error {
	if len(strings.Fields(requirements)) == 0 {
		return fmt.Errorf("requirements must contain at least one word")
	}
	return nil
}

// RulePlanner is a deterministic, rules-based model provider. It maps
// requirement keywords to manifest fragments and, in interactive mode,
// asks for a replica count when one was not given. The real model
// provider satisfies the same interface.
type RulePlanner struct{}

// NewRulePlanner creates the built-in planner.
func NewRulePlanner() *RulePlanner {
	return &RulePlanner{}
}

const replicasQuestion = "How many replicas should the deployment run?"

// ProcessUserInput derives a manifest fragment from the session state.
func (p *RulePlanner) ProcessUserInput(ctx context.Context, sctx SessionContext, input string) (ProviderResult, error) {
	if err := ctx.Err(); err != nil {
		return ProviderResult{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	switch sctx.Phase {
	case PhaseDeployment:
		return ProviderResult{
			Phase:     PhaseCompleted,
			NextSteps: []string{fmt.Sprintf("monitor rollout of %s", sctx.AppName)},
		}, nil

	default:
		cfg := planFromRequirements(sctx.AppName, sctx.Requirements)

		if replicas, ok := sctx.Context["replicas"]; ok {
			cfg["replicas"] = replicas
		} else if sctx.Interactive {
			return ProviderResult{
				Phase:     sctx.Phase,
				Questions: []string{replicasQuestion},
			}, nil
		}

		return ProviderResult{
			Phase:     sctx.Phase,
			Config:    cfg,
			NextSteps: []string{"review the generated manifest before deployment"},
		}, nil
	}
}

// planFromRequirements maps requirement keywords to manifest fields.
func planFromRequirements(appName, requirements string) map[string]any {
	cfg := map[string]any{
		"kind":  "Deployment",
		"app":   appName,
		"image": fmt.Sprintf("%s:latest", appName),
	}

	lower := strings.ToLower(requirements)
	if strings.Contains(lower, "web") || strings.Contains(lower, "http") || strings.Contains(lower, "server") {
		cfg["port"] = 8080
	}
	if strings.Contains(lower, "postgres") || strings.Contains(lower, "database") || strings.Contains(lower, "db") {
		cfg["db"] = "postgres"
	}
	if strings.Contains(lower, "cache") || strings.Contains(lower, "redis") {
		cfg["cache"] = "redis"
	}

	return cfg
}
