package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fyrsmithlabs/deployd/internal/config"
	"github.com/fyrsmithlabs/deployd/internal/logging"
	"github.com/fyrsmithlabs/deployd/internal/patterns"
	"github.com/fyrsmithlabs/deployd/internal/recommend"
	"github.com/fyrsmithlabs/deployd/internal/services"
	"github.com/fyrsmithlabs/deployd/internal/vectorstore"
	"github.com/fyrsmithlabs/deployd/internal/workflow"
)

// apiKeyEnvVar is surfaced in missing-credential errors so the user
// knows what to set.
const apiKeyEnvVar = "DEPLOYD_PROVIDER_API_KEY"

// app bundles everything a command invocation needs: loaded config,
// wired services, and the session journal.
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	registry services.Registry
	journal  *journal
}

// newApp loads configuration, applies command-line overrides, and
// wires the service stack for one command invocation.
func newApp(overrides ...func(*config.Config)) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if outputFormat != "" {
		cfg.Output.Format = outputFormat
	}
	for _, o := range overrides {
		o(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}

	return buildApp(cfg, filepath.Join(home, ".config", "deployd", "sessions"))
}

// buildApp wires the service stack. Split from newApp so tests can
// inject a config and a temporary state directory.
func buildApp(cfg *config.Config, sessionDir string) (*app, error) {
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	store := patterns.NewStore(logger)

	var (
		vstore  vectorstore.Store
		sources []recommend.Source
	)
	if cfg.VectorStore.Enabled {
		embedder, err := vectorstore.NewLocalEmbedder(cfg.VectorStore.VectorSize)
		if err != nil {
			return nil, fmt.Errorf("building embedder: %w", err)
		}
		vstore, err = vectorstore.NewChromemStore(vectorstore.ChromemConfig{
			Path:              cfg.VectorStore.Path,
			DefaultCollection: cfg.VectorStore.Collection,
			VectorSize:        cfg.VectorStore.VectorSize,
		}, embedder, logger)
		if err != nil {
			return nil, fmt.Errorf("opening vector store: %w", err)
		}
		source, err := recommend.NewVectorSource(vstore, cfg.VectorStore.Collection, 0)
		if err != nil {
			return nil, fmt.Errorf("building vector source: %w", err)
		}
		sources = append(sources, source)
	}

	engine, err := recommend.NewEngine(store, recommend.Config{
		SimilarityThreshold: cfg.Recommend.SimilarityThreshold,
	}, logger, sources...)
	if err != nil {
		return nil, fmt.Errorf("building recommendation engine: %w", err)
	}

	orch, err := workflow.New(store, engine,
		workflow.NewDefaultDiscoverer(),
		workflow.NewSchemaValidator(),
		newProvider(cfg),
		workflow.Config{
			Interactive:         cfg.Workflow.Interactive,
			CollaboratorTimeout: cfg.Workflow.CollaboratorTimeout.Duration(),
		}, logger)
	if err != nil {
		return nil, fmt.Errorf("building orchestrator: %w", err)
	}

	j, err := newJournal(sessionDir)
	if err != nil {
		return nil, fmt.Errorf("opening session journal: %w", err)
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		registry: services.NewRegistry(services.Options{
			Patterns:     store,
			Recommender:  engine,
			Orchestrator: orch,
			VectorStore:  vstore,
			Logger:       logger,
		}),
		journal: j,
	}, nil
}

// newProvider selects the model provider. The builtin model runs the
// rules planner directly; any other model requires a credential and
// fails workflows with a missing-credential error when it is unset.
func newProvider(cfg *config.Config) workflow.Provider {
	planner := workflow.NewRulePlanner()
	if cfg.Provider.Model == config.ModelBuiltin && !cfg.Provider.APIKey.IsSet() {
		return planner
	}
	return workflow.NewCredentialProvider(planner, cfg.Provider.APIKey.Value(), apiKeyEnvVar)
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	level, err := logging.LevelFromString(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	lc := logging.NewDefaultConfig()
	lc.Level = level
	lc.Format = cfg.Logging.Format
	return logging.NewLogger(lc)
}

// close flushes the logger and releases the vector store.
func (a *app) close() {
	if vs := a.registry.VectorStore(); vs != nil {
		_ = vs.Close()
	}
	_ = a.logger.Sync()
}
