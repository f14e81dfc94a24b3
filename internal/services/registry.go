package services

import (
	"github.com/fyrsmithlabs/deployd/internal/logging"
	"github.com/fyrsmithlabs/deployd/internal/patterns"
	"github.com/fyrsmithlabs/deployd/internal/recommend"
	"github.com/fyrsmithlabs/deployd/internal/vectorstore"
	"github.com/fyrsmithlabs/deployd/internal/workflow"
)

// Registry provides access to all deployd services.
// Use accessor methods to retrieve individual services.
type Registry interface {
	Patterns() *patterns.Store
	Recommender() *recommend.Engine
	Orchestrator() *workflow.Orchestrator
	VectorStore() vectorstore.Store
	Logger() *logging.Logger
}

// Options configures the registry with service instances.
type Options struct {
	Patterns     *patterns.Store
	Recommender  *recommend.Engine
	Orchestrator *workflow.Orchestrator
	VectorStore  vectorstore.Store
	Logger       *logging.Logger
}

// registry is the concrete implementation of Registry.
type registry struct {
	patterns     *patterns.Store
	recommender  *recommend.Engine
	orchestrator *workflow.Orchestrator
	vectorStore  vectorstore.Store
	logger       *logging.Logger
}

// NewRegistry creates a new service registry.
func NewRegistry(opts Options) Registry {
	return &registry{
		patterns:     opts.Patterns,
		recommender:  opts.Recommender,
		orchestrator: opts.Orchestrator,
		vectorStore:  opts.VectorStore,
		logger:       opts.Logger,
	}
}

func (r *registry) Patterns() *patterns.Store            { return r.patterns }
func (r *registry) Recommender() *recommend.Engine       { return r.recommender }
func (r *registry) Orchestrator() *workflow.Orchestrator { return r.orchestrator }
func (r *registry) VectorStore() vectorstore.Store       { return r.vectorStore }
func (r *registry) Logger() *logging.Logger              { return r.logger }
