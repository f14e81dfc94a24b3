// Package patterns provides the in-memory pattern store: append-only
// per-type collections of deployment successes and failures, consumed by
// the recommendation engine to bias future workflows.
package patterns

import (
	"context"
	"sync"
	"time"

	"github.com/fyrsmithlabs/deployd/internal/logging"
	"go.uber.org/zap"
)

// timeNow is a variable for testing purposes (allows mocking time).
var timeNow = time.Now

// Store records deployment outcomes grouped by resource type.
//
// Records are append-only for the process lifetime: nothing is merged,
// deduplicated, or evicted. The store is safe for concurrent use. It is
// an injected value object, never a package-level singleton, so multiple
// orchestrators (e.g. in tests) do not share state.
type Store struct {
	mu        sync.RWMutex
	successes map[string][]SuccessRecord
	failures  map[string][]FailureRecord
	artifacts map[string]any

	logger *logging.Logger
}

// NewStore creates an empty pattern store. A nil logger is replaced with
// a nop logger.
func NewStore(logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		successes: make(map[string][]SuccessRecord),
		failures:  make(map[string][]FailureRecord),
		artifacts: make(map[string]any),
		logger:    logger.Named("patterns"),
	}
}

// RecordSuccess appends a success record for resourceType with the
// current timestamp. Never fails.
func (s *Store) RecordSuccess(ctx context.Context, resourceType string, cfg map[string]any) {
	rec := SuccessRecord{
		ResourceType: resourceType,
		Config:       cloneConfig(cfg),
		RecordedAt:   timeNow(),
	}

	s.mu.Lock()
	s.successes[resourceType] = append(s.successes[resourceType], rec)
	count := len(s.successes[resourceType])
	s.mu.Unlock()

	s.logger.Debug(ctx, "recorded success pattern",
		zap.String("resource_type", resourceType),
		zap.Int("total", count))
}

// RecordFailure appends a failure record for resourceType with the
// current timestamp. Never fails.
func (s *Store) RecordFailure(ctx context.Context, resourceType string, cfg map[string]any, errorDescription string) {
	rec := FailureRecord{
		ResourceType:     resourceType,
		Config:           cloneConfig(cfg),
		ErrorDescription: errorDescription,
		RecordedAt:       timeNow(),
	}

	s.mu.Lock()
	s.failures[resourceType] = append(s.failures[resourceType], rec)
	count := len(s.failures[resourceType])
	s.mu.Unlock()

	s.logger.Debug(ctx, "recorded failure pattern",
		zap.String("resource_type", resourceType),
		zap.String("error", errorDescription),
		zap.Int("total", count))
}

// SuccessesFor returns the ordered success records for resourceType,
// oldest first. An unknown type yields an empty slice, never an error.
func (s *Store) SuccessesFor(resourceType string) []SuccessRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.successes[resourceType]
	out := make([]SuccessRecord, len(records))
	copy(out, records)
	return out
}

// FailuresFor returns the ordered failure records for resourceType,
// oldest first.
func (s *Store) FailuresFor(resourceType string) []FailureRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.failures[resourceType]
	out := make([]FailureRecord, len(records))
	copy(out, records)
	return out
}

// Put stores an opaque artifact under key, overwriting any previous
// value. It is the escape hatch for session-scoped blobs (e.g. lessons
// learned) not modeled as patterns.
func (s *Store) Put(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[key] = value
}

// Get retrieves an artifact. The second return value reports presence;
// a missing key is not an error.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.artifacts[key]
	return v, ok
}

// cloneConfig shallow-copies cfg so later caller mutation cannot reach
// into a stored record.
func cloneConfig(cfg map[string]any) map[string]any {
	if cfg == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(cfg))
	for k, v := range cfg {
		out[k] = v
	}
	return out
}
