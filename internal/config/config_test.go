package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Recommend.SimilarityThreshold)
	assert.Equal(t, FormatJSON, cfg.Output.Format)
	assert.False(t, cfg.Workflow.Interactive)
	assert.Equal(t, 30*time.Second, cfg.Workflow.CollaboratorTimeout.Duration())
	assert.Equal(t, "deploy_patterns", cfg.VectorStore.Collection)
	assert.Equal(t, 128, cfg.VectorStore.VectorSize)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Provider.APIKey.IsSet())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
workflow:
  interactive: true
  collaborator_timeout: 5s
recommend:
  similarity_threshold: 0.7
output:
  format: yaml
provider:
  api_key: sk-test-123
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Workflow.Interactive)
	assert.Equal(t, 5*time.Second, cfg.Workflow.CollaboratorTimeout.Duration())
	assert.Equal(t, 0.7, cfg.Recommend.SimilarityThreshold)
	assert.Equal(t, FormatYAML, cfg.Output.Format)
	assert.Equal(t, "sk-test-123", cfg.Provider.APIKey.Value())
}

func TestLoadRejectsInsecurePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: json\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insecure config file permissions")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("recommend:\n  similarity_threshold: 0.7\n"), 0600))

	t.Setenv("DEPLOYD_RECOMMEND_SIMILARITY_THRESHOLD", "0.9")
	t.Setenv("DEPLOYD_OUTPUT_FORMAT", "yaml")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.9, cfg.Recommend.SimilarityThreshold)
	assert.Equal(t, FormatYAML, cfg.Output.Format)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "threshold above one",
			mutate:  func(c *Config) { c.Recommend.SimilarityThreshold = 1.5 },
			wantErr: "similarity_threshold",
		},
		{
			name:    "threshold negative",
			mutate:  func(c *Config) { c.Recommend.SimilarityThreshold = -0.1 },
			wantErr: "similarity_threshold",
		},
		{
			name:    "bad output format",
			mutate:  func(c *Config) { c.Output.Format = "xml" },
			wantErr: "output.format",
		},
		{
			name: "vectorstore enabled without vector size",
			mutate: func(c *Config) {
				c.VectorStore.Enabled = true
				c.VectorStore.VectorSize = -1
			},
			wantErr: "vector_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			applyDefaults(cfg)
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSecretRedaction(t *testing.T) {
	s := Secret("super-secret")

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "Secret([REDACTED])", fmt.Sprintf("%#v", s))
	assert.Equal(t, "super-secret", s.Value())

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "super-secret")

	var empty Secret
	assert.Equal(t, "", empty.String())
	assert.False(t, empty.IsSet())
}

func TestDurationUnmarshal(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	assert.Equal(t, 90*time.Second, d.Duration())

	require.Error(t, d.UnmarshalText([]byte("-5s")))
	require.Error(t, d.UnmarshalText([]byte("not-a-duration")))
}
