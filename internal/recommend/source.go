package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/fyrsmithlabs/deployd/internal/vectorstore"
)

// DefaultVectorSourceLimit caps how many vector matches a VectorSource
// contributes per request.
const DefaultVectorSourceLimit = 5

// VectorSource surfaces prior deployment outcomes persisted in the
// vector store as ranked recommendations. It is the optional
// cross-process complement to the in-memory pattern store.
type VectorSource struct {
	store      vectorstore.Store
	collection string
	limit      int
}

// NewVectorSource creates a source reading from the given collection.
func NewVectorSource(store vectorstore.Store, collection string, limit int) (*VectorSource, error) {
	if store == nil {
		return nil, fmt.Errorf("vector store cannot be nil")
	}
	if err := vectorstore.ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultVectorSourceLimit
	}
	return &VectorSource{
		store:      store,
		collection: collection,
		limit:      limit,
	}, nil
}

// Suggest searches the collection for outcomes similar to the candidate
// configuration. A missing collection yields no suggestions, not an
// error; only successes are surfaced.
func (v *VectorSource) Suggest(ctx context.Context, resourceType string, candidate map[string]any) ([]Recommendation, error) {
	exists, err := v.store.CollectionExists(ctx, v.collection)
	if err != nil {
		return nil, fmt.Errorf("checking collection: %w", err)
	}
	if !exists {
		return nil, nil
	}

	query := queryText(resourceType, candidate)
	results, err := v.store.SearchInCollection(ctx, v.collection, query, v.limit, map[string]any{
		"outcome": "success",
	})
	if err != nil {
		return nil, fmt.Errorf("searching collection: %w", err)
	}

	recs := make([]Recommendation, 0, len(results))
	for _, r := range results {
		recs = append(recs, Recommendation{
			Suggestion: r.Content,
			Confidence: clamp01(float64(r.Score)),
			BasedOn:    []string{fmt.Sprintf("vector match %s (score %.2f)", r.ID, r.Score)},
		})
	}
	return recs, nil
}

// queryText flattens the resource type and candidate keys into search
// text. Keys are sorted so the query is deterministic.
func queryText(resourceType string, candidate map[string]any) string {
	parts := make([]string, 0, len(candidate)+1)
	parts = append(parts, resourceType)

	keys := make([]string, 0, len(candidate))
	for k := range candidate {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %v", k, candidate[k]))
	}

	return strings.Join(parts, " ")
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
