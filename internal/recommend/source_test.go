package recommend

import (
	"context"
	"testing"

	"github.com/fyrsmithlabs/deployd/internal/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVectorFixture(t *testing.T) (*VectorSource, vectorstore.Store) {
	t.Helper()
	embedder, err := vectorstore.NewLocalEmbedder(64)
	require.NoError(t, err)
	store, err := vectorstore.NewChromemStore(vectorstore.ChromemConfig{VectorSize: 64}, embedder, nil)
	require.NoError(t, err)

	source, err := NewVectorSource(store, "deploy_patterns", 0)
	require.NoError(t, err)
	return source, store
}

func TestVectorSourceMissingCollection(t *testing.T) {
	source, _ := newVectorFixture(t)

	recs, err := source.Suggest(context.Background(), "web", map[string]any{"framework": "express"})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestVectorSourceSurfacesSuccesses(t *testing.T) {
	source, store := newVectorFixture(t)
	ctx := context.Background()

	_, err := store.AddDocuments(ctx, []vectorstore.Document{
		{
			ID:         "pat-1",
			Content:    "web framework express db postgres deployed successfully",
			Collection: "deploy_patterns",
			Metadata:   map[string]any{"outcome": "success"},
		},
		{
			ID:         "pat-2",
			Content:    "web framework express crashed on startup",
			Collection: "deploy_patterns",
			Metadata:   map[string]any{"outcome": "failure"},
		},
	})
	require.NoError(t, err)

	recs, err := source.Suggest(ctx, "web", map[string]any{"framework": "express"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Contains(t, recs[0].Suggestion, "deployed successfully")
	assert.GreaterOrEqual(t, recs[0].Confidence, 0.0)
	assert.LessOrEqual(t, recs[0].Confidence, 1.0)
	require.Len(t, recs[0].BasedOn, 1)
	assert.Contains(t, recs[0].BasedOn[0], "pat-1")
}

func TestVectorSourceValidation(t *testing.T) {
	_, err := NewVectorSource(nil, "deploy_patterns", 5)
	require.Error(t, err)

	embedder, err := vectorstore.NewLocalEmbedder(8)
	require.NoError(t, err)
	store, err := vectorstore.NewChromemStore(vectorstore.ChromemConfig{VectorSize: 8}, embedder, nil)
	require.NoError(t, err)

	_, err = NewVectorSource(store, "bad name!", 5)
	assert.ErrorIs(t, err, vectorstore.ErrInvalidCollectionName)
}

func TestQueryTextDeterministic(t *testing.T) {
	a := queryText("web", map[string]any{"b": 2, "a": 1, "c": 3})
	b := queryText("web", map[string]any{"c": 3, "a": 1, "b": 2})
	assert.Equal(t, a, b)
	assert.Contains(t, a, "web")
}
