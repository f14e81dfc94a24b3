package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fyrsmithlabs/deployd/internal/config"
	"gopkg.in/yaml.v3"
)

// envelope is the uniform command result shape.
type envelope struct {
	Success bool   `json:"success" yaml:"success"`
	Data    any    `json:"data,omitempty" yaml:"data,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

func resultEnvelope(data any) envelope {
	return envelope{Success: true, Data: data}
}

func errorEnvelope(msg string) envelope {
	return envelope{Success: false, Error: msg}
}

// render writes the envelope to w in the requested format.
func render(w io.Writer, format string, env envelope) error {
	switch format {
	case config.FormatYAML:
		out, err := yaml.Marshal(env)
		if err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	case config.FormatJSON:
		out, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
