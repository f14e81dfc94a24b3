package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fyrsmithlabs/deployd/internal/vectorstore"
	"github.com/fyrsmithlabs/deployd/internal/workflow"
	"go.uber.org/zap"
)

// runWorkflow executes phases until the workflow reaches a terminal
// phase or suspends for user input. The returned error carries the
// collaborator cause when the workflow failed.
func runWorkflow(ctx context.Context, a *app, id string) (workflow.ExecuteResult, error) {
	orch := a.registry.Orchestrator()
	for {
		res, err := orch.ExecutePhase(ctx, id)
		if err != nil || res.Suspended || res.Phase.IsTerminal() {
			return res, err
		}
	}
}

// promptAnswers asks each pending question on out and reads one answer
// per line from in.
func promptAnswers(in io.Reader, out io.Writer, questions []string) (map[string]any, error) {
	reader := bufio.NewReader(in)
	responses := make(map[string]any, len(questions))
	for _, q := range questions {
		fmt.Fprintf(out, "%s ", q)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return nil, fmt.Errorf("reading answer: %w", err)
		}
		responses[answerKey(q)] = parseAnswer(strings.TrimSpace(line))
	}
	return responses, nil
}

// answerKey maps a question to the context key its answer belongs
// under. Falls back to a generic key for questions the CLI does not
// recognize.
func answerKey(question string) string {
	lower := strings.ToLower(question)
	for _, key := range []string{"replicas", "port", "image", "namespace"} {
		if strings.Contains(lower, key) {
			return key
		}
	}
	return "answer"
}

// parseAnswer narrows an answer string to int, float, or bool where it
// parses cleanly.
func parseAnswer(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// parseSetFlags turns repeated key=value pairs into a response map.
func parseSetFlags(pairs []string) (map[string]any, error) {
	responses := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid --set value %q, expected key=value", pair)
		}
		responses[strings.TrimSpace(key)] = parseAnswer(strings.TrimSpace(value))
	}
	return responses, nil
}

// mirrorOutcome persists a terminal outcome into the vector store so
// later invocations can surface it as a recommendation. Best effort:
// mirror failures are logged, never fatal.
func mirrorOutcome(ctx context.Context, a *app, workflowID string, view workflow.SessionView, detail string) {
	vs := a.registry.VectorStore()
	if vs == nil || !view.Phase.IsTerminal() {
		return
	}

	outcome := "failure"
	if view.Phase == workflow.PhaseCompleted {
		outcome = "success"
	}
	metadata := map[string]any{
		"outcome": outcome,
		"app":     view.AppName,
		"phase":   string(view.Phase),
	}
	if detail != "" {
		metadata["detail"] = detail
	}

	_, err := vs.AddDocuments(ctx, []vectorstore.Document{{
		ID:         workflowID,
		Content:    patternContent(workflow.DefaultResourceType, view.Config),
		Metadata:   metadata,
		Collection: a.cfg.VectorStore.Collection,
	}})
	if err != nil {
		a.logger.Warn(ctx, "failed to mirror outcome into vector store",
			zap.String("workflow.id", workflowID),
			zap.Error(err))
	}
}

// patternContent flattens a configuration into the searchable text the
// recommendation vector source queries against. Keys are sorted for
// determinism.
func patternContent(resourceType string, cfg map[string]any) string {
	parts := []string{resourceType}
	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %v", k, cfg[k]))
	}
	return strings.Join(parts, " ")
}
