package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDiscovererCatalog(t *testing.T) {
	d := NewDefaultDiscoverer()
	ctx := context.Background()

	resources, err := d.DiscoverResources(ctx)
	require.NoError(t, err)
	require.Len(t, resources, 4)
	assert.Equal(t, "Deployment", resources[0].Kind)

	// Returned slice is a copy of the catalog.
	resources[0].Kind = "Mutated"
	again, err := d.DiscoverResources(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Deployment", again[0].Kind)
}

func TestExplainResource(t *testing.T) {
	d := NewDefaultDiscoverer()
	ctx := context.Background()

	schema, err := d.ExplainResource(ctx, "Deployment")
	require.NoError(t, err)
	assert.Equal(t, []string{"kind", "image"}, schema.Required)

	_, err = d.ExplainResource(ctx, "CronJob")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "CronJob")
}

func TestDiscovererHonorsContextCancellation(t *testing.T) {
	d := NewDefaultDiscoverer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.DiscoverResources(ctx)
	assert.ErrorIs(t, err, ErrConnectionFailed)

	_, err = d.ExplainResource(ctx, "Deployment")
	assert.ErrorIs(t, err, ErrConnectionFailed)
}

func TestValidateManifest(t *testing.T) {
	v := NewSchemaValidator()
	ctx := context.Background()
	schema := SchemaDescription{Kind: "Deployment", Required: []string{"kind", "image"}}

	tests := []struct {
		name     string
		manifest map[string]any
		valid    bool
		errCount int
	}{
		{"complete", map[string]any{"kind": "Deployment", "image": "app:v1"}, true, 0},
		{"missing image", map[string]any{"kind": "Deployment"}, false, 1},
		{"nil value counts as missing", map[string]any{"kind": "Deployment", "image": nil}, false, 1},
		{"empty manifest", map[string]any{}, false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := v.ValidateManifest(ctx, tt.manifest, schema)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid)
			assert.Len(t, res.Errors, tt.errCount)
		})
	}
}

func TestValidateRequirements(t *testing.T) {
	v := NewSchemaValidator()
	ctx := context.Background()

	assert.NoError(t, v.ValidateRequirements(ctx, "web server"))
	assert.Error(t, v.ValidateRequirements(ctx, "   "))
}

func TestRulePlannerKeywords(t *testing.T) {
	p := NewRulePlanner()
	ctx := context.Background()

	res, err := p.ProcessUserInput(ctx, SessionContext{
		AppName:      "shop",
		Requirements: "HTTP server with redis cache and a postgres database",
		Phase:        PhasePlanning,
	}, "plan")
	require.NoError(t, err)
	assert.Empty(t, res.Questions)

	assert.Equal(t, "Deployment", res.Config["kind"])
	assert.Equal(t, "shop:latest", res.Config["image"])
	assert.Equal(t, 8080, res.Config["port"])
	assert.Equal(t, "postgres", res.Config["db"])
	assert.Equal(t, "redis", res.Config["cache"])
}

func TestRulePlannerAsksForReplicasWhenInteractive(t *testing.T) {
	p := NewRulePlanner()
	ctx := context.Background()
	sctx := SessionContext{
		AppName:      "shop",
		Requirements: "web server",
		Phase:        PhasePlanning,
		Interactive:  true,
		Context:      map[string]any{},
	}

	res, err := p.ProcessUserInput(ctx, sctx, "plan")
	require.NoError(t, err)
	require.Equal(t, []string{replicasQuestion}, res.Questions)

	// The answered question is folded into the manifest.
	sctx.Context["replicas"] = 5
	res, err = p.ProcessUserInput(ctx, sctx, "continue")
	require.NoError(t, err)
	assert.Empty(t, res.Questions)
	assert.Equal(t, 5, res.Config["replicas"])
}

func TestRulePlannerDeploymentPhase(t *testing.T) {
	p := NewRulePlanner()

	res, err := p.ProcessUserInput(context.Background(), SessionContext{
		AppName: "shop",
		Phase:   PhaseDeployment,
	}, "deploy")
	require.NoError(t, err)
	assert.Equal(t, PhaseCompleted, res.Phase)
	require.NotEmpty(t, res.NextSteps)
	assert.Contains(t, res.NextSteps[0], "shop")
}
