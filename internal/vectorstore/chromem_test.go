package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *ChromemStore {
	t.Helper()
	embedder, err := NewLocalEmbedder(64)
	require.NoError(t, err)

	store, err := NewChromemStore(ChromemConfig{VectorSize: 64}, embedder, nil)
	require.NoError(t, err)
	return store
}

func TestAddAndSearch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ids, err := store.AddDocuments(ctx, []Document{
		{ID: "web-1", Content: "web server nginx ingress", Metadata: map[string]any{"outcome": "success"}},
		{ID: "db-1", Content: "postgres database statefulset", Metadata: map[string]any{"outcome": "success"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"web-1", "db-1"}, ids)

	results, err := store.Search(ctx, "web server nginx", 2)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "web-1", results[0].ID)
	assert.Equal(t, "success", results[0].Metadata["outcome"])
}

func TestAddDocumentsValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddDocuments(ctx, nil)
	assert.ErrorIs(t, err, ErrEmptyDocuments)

	_, err = store.AddDocuments(ctx, []Document{
		{ID: "a", Content: "x", Collection: "one"},
		{ID: "b", Content: "y", Collection: "two"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch targets")
}

func TestAutoGeneratedIDs(t *testing.T) {
	store := newTestStore(t)

	ids, err := store.AddDocuments(context.Background(), []Document{{Content: "no id supplied"}})
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.NotEmpty(t, ids[0])
}

func TestSearchUnknownCollection(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SearchInCollection(context.Background(), "missing", "query", 5, nil)
	assert.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestSearchCapsKAtCollectionSize(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddDocuments(ctx, []Document{{ID: "only", Content: "single document"}})
	require.NoError(t, err)

	results, err := store.Search(ctx, "single document", 50)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchInputValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Search(ctx, "", 5)
	require.Error(t, err)

	_, err = store.Search(ctx, "query", 0)
	require.Error(t, err)

	_, err = store.SearchInCollection(ctx, "bad name!", "query", 5, nil)
	assert.ErrorIs(t, err, ErrInvalidCollectionName)
}

func TestCollectionLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	exists, err := store.CollectionExists(ctx, "deploy_patterns")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.AddDocuments(ctx, []Document{{ID: "p1", Content: "pattern", Collection: "deploy_patterns"}})
	require.NoError(t, err)

	exists, err = store.CollectionExists(ctx, "deploy_patterns")
	require.NoError(t, err)
	assert.True(t, exists)

	names, err := store.ListCollections(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "deploy_patterns")

	info, err := store.GetCollectionInfo(ctx, "deploy_patterns")
	require.NoError(t, err)
	assert.Equal(t, 1, info.PointCount)
}

func TestPersistence(t *testing.T) {
	dir := t.TempDir()
	embedder, err := NewLocalEmbedder(64)
	require.NoError(t, err)

	store, err := NewChromemStore(ChromemConfig{Path: dir, VectorSize: 64}, embedder, nil)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = store.AddDocuments(ctx, []Document{{ID: "persisted", Content: "postgres backend"}})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewChromemStore(ChromemConfig{Path: dir, VectorSize: 64}, embedder, nil)
	require.NoError(t, err)

	results, err := reopened.Search(ctx, "postgres backend", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "persisted", results[0].ID)
}

func TestLocalEmbedderDeterministic(t *testing.T) {
	embedder, err := NewLocalEmbedder(32)
	require.NoError(t, err)

	ctx := context.Background()
	a, err := embedder.EmbedQuery(ctx, "web server deployment")
	require.NoError(t, err)
	b, err := embedder.EmbedQuery(ctx, "web server deployment")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 32)

	batch, err := embedder.EmbedDocuments(ctx, []string{"web server deployment", "something else"})
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, a, batch[0])
}

func TestLocalEmbedderValidation(t *testing.T) {
	_, err := NewLocalEmbedder(0)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
