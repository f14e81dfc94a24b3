package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fyrsmithlabs/deployd/internal/workflow"
)

// journalEntry is the durable record of one workflow the CLI has
// driven. The orchestrator keeps sessions in memory; the journal is
// what lets later invocations resume a suspended workflow by replaying
// its inputs.
type journalEntry struct {
	WorkflowID   string         `json:"workflow_id"`
	AppName      string         `json:"app_name"`
	Requirements string         `json:"requirements"`
	Phase        workflow.Phase `json:"phase"`
	Suspended    bool           `json:"suspended,omitempty"`
	Questions    []string       `json:"questions,omitempty"`

	// Responses accumulates every answer given so far. Replaying them
	// against a fresh session reproduces the workflow deterministically.
	Responses map[string]any `json:"responses,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// journal persists journal entries as JSON files, one per workflow.
type journal struct {
	dir string
}

func newJournal(dir string) (*journal, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating session directory %s: %w", dir, err)
	}
	return &journal{dir: dir}, nil
}

func (j *journal) path(id string) string {
	return filepath.Join(j.dir, id+".json")
}

// Save writes the entry, stamping UpdatedAt (and CreatedAt on first
// write).
func (j *journal) Save(entry *journalEntry) error {
	if strings.TrimSpace(entry.WorkflowID) == "" {
		return fmt.Errorf("journal entry has no workflow id")
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	out, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := os.WriteFile(j.path(entry.WorkflowID), out, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

// Load reads one entry by workflow ID.
func (j *journal) Load(id string) (*journalEntry, error) {
	content, err := os.ReadFile(j.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", workflow.ErrUnknownSession, id)
		}
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	var entry journalEntry
	if err := json.Unmarshal(content, &entry); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", id, err)
	}
	return &entry, nil
}

// List returns all entries, most recently updated first.
func (j *journal) List() ([]*journalEntry, error) {
	names, err := filepath.Glob(filepath.Join(j.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	entries := make([]*journalEntry, 0, len(names))
	for _, name := range names {
		id := strings.TrimSuffix(filepath.Base(name), ".json")
		entry, err := j.Load(id)
		if err != nil {
			// A corrupt file should not hide the rest.
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(a, b int) bool {
		return entries[a].UpdatedAt.After(entries[b].UpdatedAt)
	})
	return entries, nil
}
