// Package vectorstore defines the interface for vector storage operations
// and provides an embedded chromem-go implementation.
//
// deployd uses the vector store as a persistence-capable enrichment
// source for the recommendation engine: deployment outcomes are written
// as documents and surfaced in later runs by semantic search.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// Sentinel errors for vector store operations.
var (
	// ErrCollectionNotFound is returned when a collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyDocuments indicates empty or nil documents.
	ErrEmptyDocuments = errors.New("empty or nil documents")

	// ErrEmbeddingFailed indicates embedding generation failure.
	ErrEmbeddingFailed = errors.New("failed to generate embeddings")

	// ErrInvalidCollectionName indicates collection name validation failure.
	ErrInvalidCollectionName = errors.New("invalid collection name")
)

// collectionNamePattern restricts names to a filesystem-safe charset.
var collectionNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]{0,62}$`)

// ValidateCollectionName checks that name is usable as a collection name.
func ValidateCollectionName(name string) error {
	if !collectionNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidCollectionName, name)
	}
	return nil
}

// CollectionInfo contains metadata about a vector collection.
type CollectionInfo struct {
	// Name is the collection name.
	Name string `json:"name"`

	// PointCount is the number of vectors in the collection.
	PointCount int `json:"point_count"`
}

// Embedder generates vector embeddings from text.
type Embedder interface {
	// EmbedDocuments generates embeddings for multiple texts.
	// Returns one embedding per input text, or an error.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Store is the interface for vector storage operations.
//
// The interface is transport-agnostic; the embedded chromem-go store is
// the default implementation, and a remote store can be swapped in
// without touching callers.
type Store interface {
	// AddDocuments stores documents and returns their IDs, in input order.
	// All documents in a batch must target the same collection.
	AddDocuments(ctx context.Context, docs []Document) ([]string, error)

	// Search performs similarity search in the default collection.
	Search(ctx context.Context, query string, k int) ([]SearchResult, error)

	// SearchInCollection performs similarity search in a named collection,
	// optionally filtered by metadata equality.
	SearchInCollection(ctx context.Context, collection, query string, k int, filters map[string]any) ([]SearchResult, error)

	// CollectionExists reports whether a collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)

	// ListCollections returns the names of all collections.
	ListCollections(ctx context.Context) ([]string, error)

	// GetCollectionInfo returns metadata for a collection.
	GetCollectionInfo(ctx context.Context, collection string) (*CollectionInfo, error)

	// Close releases store resources.
	Close() error
}
