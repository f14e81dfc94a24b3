// Package config provides configuration loading for deployd.
package config

import (
	"fmt"
)

// Output format names recognized by the CLI.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config is the top-level deployd configuration.
type Config struct {
	Workflow    WorkflowConfig    `koanf:"workflow"`
	Recommend   RecommendConfig   `koanf:"recommend"`
	Output      OutputConfig      `koanf:"output"`
	VectorStore VectorStoreConfig `koanf:"vectorstore"`
	Provider    ProviderConfig    `koanf:"provider"`
	Logging     LoggingConfig     `koanf:"logging"`
}

// WorkflowConfig holds orchestrator configuration.
type WorkflowConfig struct {
	// Interactive enables suspend-for-questions behavior during phase
	// execution. Non-interactive workflows auto-advance.
	Interactive bool `koanf:"interactive"`

	// CollaboratorTimeout bounds a single discovery/provider/validator call.
	CollaboratorTimeout Duration `koanf:"collaborator_timeout"`
}

// RecommendConfig holds recommendation engine configuration.
type RecommendConfig struct {
	// SimilarityThreshold is the minimum key-presence similarity (0..1)
	// for a prior success to qualify as a recommendation.
	SimilarityThreshold float64 `koanf:"similarity_threshold"`
}

// OutputConfig controls CLI result rendering.
type OutputConfig struct {
	Format string `koanf:"format"` // "json" or "yaml"
}

// VectorStoreConfig holds the embedded vector store settings used for
// cross-process pattern enrichment.
type VectorStoreConfig struct {
	// Enabled toggles vector-search enrichment of recommendations.
	Enabled bool `koanf:"enabled"`

	// Path is the directory for persistent storage.
	Path string `koanf:"path"`

	// Collection is the collection name for deployment patterns.
	Collection string `koanf:"collection"`

	// VectorSize is the embedding dimension. Must match the embedder.
	VectorSize int `koanf:"vector_size"`
}

// ModelBuiltin selects the deterministic rules-based planner, which
// needs no credential.
const ModelBuiltin = "builtin"

// ProviderConfig holds model-provider settings.
type ProviderConfig struct {
	// APIKey is the model provider credential. Required for any model
	// other than ModelBuiltin; workflows fail with a missing-credential
	// error when unset.
	APIKey Secret `koanf:"api_key"`

	// Model names the model to use for planning and validation.
	Model string `koanf:"model"`
}

// LoggingConfig holds logger settings. The logging package owns the
// full encoder configuration; these are the file/env tunable knobs.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // trace, debug, info, warn, error
	Format string `koanf:"format"` // "json" or "console"
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Recommend.SimilarityThreshold < 0 || c.Recommend.SimilarityThreshold > 1 {
		return fmt.Errorf("recommend.similarity_threshold must be in [0,1], got %v", c.Recommend.SimilarityThreshold)
	}
	if c.Output.Format != FormatJSON && c.Output.Format != FormatYAML {
		return fmt.Errorf("output.format must be %q or %q, got %q", FormatJSON, FormatYAML, c.Output.Format)
	}
	if c.VectorStore.Enabled && c.VectorStore.VectorSize <= 0 {
		return fmt.Errorf("vectorstore.vector_size must be positive, got %d", c.VectorStore.VectorSize)
	}
	if c.Workflow.CollaboratorTimeout.Duration() < 0 {
		return fmt.Errorf("workflow.collaborator_timeout cannot be negative")
	}
	return nil
}
