package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerKey(t *testing.T) {
	assert.Equal(t, "replicas", answerKey("How many replicas should the deployment run?"))
	assert.Equal(t, "port", answerKey("Which port does the service listen on?"))
	assert.Equal(t, "answer", answerKey("Anything else?"))
}

func TestParseAnswer(t *testing.T) {
	assert.Equal(t, 3, parseAnswer("3"))
	assert.Equal(t, 2.5, parseAnswer("2.5"))
	assert.Equal(t, true, parseAnswer("true"))
	assert.Equal(t, "shop:v2", parseAnswer("shop:v2"))
}

func TestParseSetFlags(t *testing.T) {
	responses, err := parseSetFlags([]string{"replicas=3", "image=shop:v2"})
	require.NoError(t, err)
	assert.Equal(t, 3, responses["replicas"])
	assert.Equal(t, "shop:v2", responses["image"])

	_, err = parseSetFlags([]string{"no-equals-sign"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-equals-sign")

	_, err = parseSetFlags([]string{"=value"})
	assert.Error(t, err)
}

func TestPromptAnswers(t *testing.T) {
	in := strings.NewReader("3\n")
	var out strings.Builder

	responses, err := promptAnswers(in, &out, []string{"How many replicas should the deployment run?"})
	require.NoError(t, err)
	assert.Equal(t, 3, responses["replicas"])
	assert.Contains(t, out.String(), "replicas")
}

func TestPatternContent(t *testing.T) {
	content := patternContent("deployment", map[string]any{
		"kind": "Deployment",
		"app":  "shop",
		"port": 8080,
	})
	// Keys are sorted for deterministic search text.
	assert.Equal(t, "deployment app shop kind Deployment port 8080", content)
}
