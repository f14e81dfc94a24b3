package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	env := resultEnvelope(map[string]any{"workflowId": "abc", "phase": "completed"})
	require.NoError(t, render(&buf, "json", env))

	var decoded struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
		Error   string         `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.True(t, decoded.Success)
	assert.Equal(t, "completed", decoded.Data["phase"])
	assert.Empty(t, decoded.Error)
}

func TestRenderYAML(t *testing.T) {
	var buf bytes.Buffer
	env := errorEnvelope("Deployment failed: manifest invalid")
	require.NoError(t, render(&buf, "yaml", env))

	var decoded struct {
		Success bool   `yaml:"success"`
		Error   string `yaml:"error"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.False(t, decoded.Success)
	assert.Equal(t, "Deployment failed: manifest invalid", decoded.Error)
}

func TestRenderUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := render(&buf, "xml", resultEnvelope(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestErrorEnvelopeOmitsData(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render(&buf, "json", errorEnvelope("boom")))
	assert.NotContains(t, buf.String(), "data")
}
