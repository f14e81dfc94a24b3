package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execCLI runs the root command with a sandboxed HOME and returns the
// decoded result envelope.
func execCLI(t *testing.T, args ...string) (envelope, error) {
	t.Helper()
	resetFlags()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	var env envelope
	if buf.Len() > 0 {
		require.NoError(t, json.Unmarshal(buf.Bytes(), &env), "output: %s", buf.String())
	}
	return env, err
}

// resetFlags clears package-level flag state between invocations.
func resetFlags() {
	configPath = ""
	outputFormat = ""
	deployRequirements = ""
	deployInteractive = false
	deployNoInput = false
	continueSet = nil
}

func envelopeData(t *testing.T, env envelope) map[string]any {
	t.Helper()
	data, ok := env.Data.(map[string]any)
	require.True(t, ok, "envelope data is %T", env.Data)
	return data
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDeployCompletesNonInteractively(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	env, err := execCLI(t, "deploy", "shop", "-r", "web server with postgres database", "-o", "json")
	require.NoError(t, err)
	require.True(t, env.Success)

	data := envelopeData(t, env)
	assert.Equal(t, "completed", data["phase"])
	assert.NotEmpty(t, data["workflowId"])

	// The completed workflow is visible via status.
	id := data["workflowId"].(string)
	env, err = execCLI(t, "status", id, "-o", "json")
	require.NoError(t, err)
	require.True(t, env.Success)
	assert.Equal(t, "completed", envelopeData(t, env)["phase"])
}

func TestDeploySuspendsWithNoInputAndContinues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	env, err := execCLI(t, "deploy", "shop", "-r", "web server",
		"--interactive", "--no-input", "-o", "json")
	require.NoError(t, err)
	require.True(t, env.Success)

	data := envelopeData(t, env)
	assert.Equal(t, "planning", data["phase"])
	assert.Equal(t, true, data["suspended"])
	require.NotEmpty(t, data["questions"])
	id := data["workflowId"].(string)

	env, err = execCLI(t, "continue", id, "--set", "replicas=3", "-o", "json")
	require.NoError(t, err)
	require.True(t, env.Success)
	assert.Equal(t, "completed", envelopeData(t, env)["phase"])
}

func TestContinueCompletedWorkflowFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	env, err := execCLI(t, "deploy", "shop", "-r", "web server", "-o", "json")
	require.NoError(t, err)
	id := envelopeData(t, env)["workflowId"].(string)

	env, err = execCLI(t, "continue", id, "--set", "replicas=3", "-o", "json")
	require.Error(t, err)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "already completed")
}

func TestRollbackSuspendedWorkflow(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	env, err := execCLI(t, "deploy", "shop", "-r", "web server",
		"--interactive", "--no-input", "-o", "json")
	require.NoError(t, err)
	id := envelopeData(t, env)["workflowId"].(string)

	env, err = execCLI(t, "rollback", id, "-o", "json")
	require.NoError(t, err)
	require.True(t, env.Success)
	assert.Equal(t, "rolled_back", envelopeData(t, env)["phase"])

	// Rolling back again is a no-op success.
	env, err = execCLI(t, "rollback", id, "-o", "json")
	require.NoError(t, err)
	require.True(t, env.Success)
	assert.Equal(t, "rolled_back", envelopeData(t, env)["phase"])
}

func TestRollbackCompletedWorkflowFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	env, err := execCLI(t, "deploy", "shop", "-r", "web server", "-o", "json")
	require.NoError(t, err)
	id := envelopeData(t, env)["workflowId"].(string)

	env, err = execCLI(t, "rollback", id, "-o", "json")
	require.Error(t, err)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "cannot roll back")
}

func TestDeployFailsWithoutProviderCredential(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := writeConfig(t, "provider:\n  model: remote\n")

	env, err := execCLI(t, "deploy", "shop", "-r", "web server",
		"--config", cfg, "-o", "json")
	require.Error(t, err)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "Deployment failed")
	assert.Contains(t, env.Error, "DEPLOYD_PROVIDER_API_KEY")
}

func TestPatternsRequiresVectorStore(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	env, err := execCLI(t, "patterns", "-o", "json")
	require.Error(t, err)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "vector store is disabled")
}

func TestPatternsListsMirroredOutcomes(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg := writeConfig(t, "vectorstore:\n  enabled: true\n  path: "+
		filepath.Join(home, "vs")+"\n")

	env, err := execCLI(t, "deploy", "shop", "-r", "web server with postgres database",
		"--config", cfg, "-o", "json")
	require.NoError(t, err)
	require.True(t, env.Success)

	env, err = execCLI(t, "patterns", "--config", cfg, "-o", "json")
	require.NoError(t, err)
	require.True(t, env.Success)

	data := envelopeData(t, env)
	assert.Equal(t, float64(1), data["count"])
	matches, ok := data["matches"].([]any)
	require.True(t, ok)
	require.Len(t, matches, 1)
	match := matches[0].(map[string]any)
	assert.Contains(t, match["content"], "postgres")
}

func TestStatusListsWorkflows(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := execCLI(t, "deploy", "a", "-r", "web server", "-o", "json")
	require.NoError(t, err)
	_, err = execCLI(t, "deploy", "b", "-r", "redis cache", "-o", "json")
	require.NoError(t, err)

	env, err := execCLI(t, "status", "-o", "json")
	require.NoError(t, err)
	require.True(t, env.Success)

	workflows, ok := envelopeData(t, env)["workflows"].([]any)
	require.True(t, ok)
	assert.Len(t, workflows, 2)
}
