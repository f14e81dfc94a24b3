package workflow

import "sync"

// ContextStore is a per-session scratch mapping that survives
// suspend/resume boundaries (e.g. answers to interactive questions).
//
// Last write wins per key; no cross-key ordering is guaranteed. No
// operation fails.
type ContextStore struct {
	mu      sync.RWMutex
	entries map[string]any
}

// NewContextStore creates an empty context store.
func NewContextStore() *ContextStore {
	return &ContextStore{entries: make(map[string]any)}
}

// Set stores value under key, overwriting any previous value.
func (c *ContextStore) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

// Merge sets every entry of m.
func (c *ContextStore) Merge(m map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range m {
		c.entries[k] = v
	}
}

// Snapshot returns a copy of all entries. Mutating the returned map
// does not affect the store.
func (c *ContextStore) Snapshot() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]any, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}

// Clear removes the given keys, or every entry when called with no
// arguments. Unknown keys are a no-op.
func (c *ContextStore) Clear(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(keys) == 0 {
		c.entries = make(map[string]any)
		return
	}
	for _, k := range keys {
		delete(c.entries, k)
	}
}
