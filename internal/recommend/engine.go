// Package recommend derives configuration recommendations from prior
// deployment patterns.
//
// The engine scores each recorded success against a candidate
// configuration by key presence and surfaces qualifying records as
// suggestions. Additional ranked-suggestion sources (e.g. the vector
// store) can be merged in behind the Source interface.
package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/deployd/internal/logging"
	"github.com/fyrsmithlabs/deployd/internal/patterns"
	"go.uber.org/zap"
)

// DefaultSimilarityThreshold is the minimum similarity for a prior
// success to qualify as a recommendation.
const DefaultSimilarityThreshold = 0.5

// Recommendation is a scored suggestion derived from prior patterns.
// Recommendations are recomputed on each request, never persisted.
type Recommendation struct {
	// Suggestion is the actionable text shown to the caller.
	Suggestion string `json:"suggestion"`

	// Confidence is the similarity score in [0,1].
	Confidence float64 `json:"confidence"`

	// BasedOn lists provenance strings for the suggestion.
	BasedOn []string `json:"based_on"`
}

// Source is an additional ranked-suggestion provider merged into engine
// output (e.g. the capability/pattern/policy vector stores).
type Source interface {
	// Suggest returns ranked recommendations for the candidate. A source
	// failure degrades enrichment, it never fails the whole request.
	Suggest(ctx context.Context, resourceType string, candidate map[string]any) ([]Recommendation, error)
}

// Config holds engine tuning.
type Config struct {
	// SimilarityThreshold gates which successes qualify (inclusive).
	SimilarityThreshold float64
}

// Engine ranks prior successes by similarity to a candidate
// configuration.
type Engine struct {
	store     *patterns.Store
	threshold float64
	sources   []Source
	logger    *logging.Logger
}

// NewEngine creates a recommendation engine over the given pattern store.
// A zero threshold falls back to DefaultSimilarityThreshold. A nil
// logger is replaced with a nop logger.
func NewEngine(store *patterns.Store, cfg Config, logger *logging.Logger, sources ...Source) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("pattern store cannot be nil")
	}
	if cfg.SimilarityThreshold < 0 || cfg.SimilarityThreshold > 1 {
		return nil, fmt.Errorf("similarity threshold must be in [0,1], got %v", cfg.SimilarityThreshold)
	}
	if cfg.SimilarityThreshold == 0 {
		cfg.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Engine{
		store:     store,
		threshold: cfg.SimilarityThreshold,
		sources:   sources,
		logger:    logger.Named("recommend"),
	}, nil
}

// Recommendations returns suggestions for the candidate configuration,
// in source order: local pattern matches first (preserving record append
// order), then each enrichment source's output. An empty pattern set
// yields an empty slice, never an error.
func (e *Engine) Recommendations(ctx context.Context, resourceType string, candidate map[string]any) []Recommendation {
	var recs []Recommendation

	for _, record := range e.store.SuccessesFor(resourceType) {
		score := Similarity(candidate, record.Config)
		if score < e.threshold {
			continue
		}
		recs = append(recs, Recommendation{
			Suggestion: suggestionFor(record),
			Confidence: score,
			BasedOn: []string{
				fmt.Sprintf("success pattern for %s recorded at %s", record.ResourceType, record.RecordedAt.Format(time.RFC3339)),
			},
		})
	}

	for _, source := range e.sources {
		extra, err := source.Suggest(ctx, resourceType, candidate)
		if err != nil {
			e.logger.Warn(ctx, "recommendation source failed",
				zap.String("resource_type", resourceType),
				zap.Error(err))
			continue
		}
		recs = append(recs, extra...)
	}

	e.logger.Debug(ctx, "computed recommendations",
		zap.String("resource_type", resourceType),
		zap.Int("count", len(recs)))

	return recs
}

// Similarity computes key-presence similarity between two
// configurations: the number of shared top-level keys divided by the
// size of the larger key set. Both empty scores 1; exactly one empty
// scores 0. Values are deliberately ignored.
func Similarity(a, b map[string]any) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	common := 0
	for k := range a {
		if _, ok := b[k]; ok {
			common++
		}
	}

	larger := len(a)
	if len(b) > larger {
		larger = len(b)
	}
	return float64(common) / float64(larger)
}

// suggestionFor renders a success record as actionable text.
func suggestionFor(record patterns.SuccessRecord) string {
	return fmt.Sprintf("a similar %s configuration with %d settings previously deployed successfully; consider reusing it", record.ResourceType, len(record.Config))
}
