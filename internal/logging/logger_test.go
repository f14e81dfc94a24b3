package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerValidatesConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Format = "pretty"

	_, err := NewLogger(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format")
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"trace", TraceLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"bogus", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := LevelFromString(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContextFields(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ContextFields(ctx))

	ctx = ContextWithSessionID(ctx, "sess-1")
	ctx = ContextWithPhase(ctx, "planning")
	ctx = ContextWithRequestID(ctx, "req-9")

	fields := ContextFields(ctx)
	require.Len(t, fields, 3)
	assert.Equal(t, "session.id", fields[0].Key)
	assert.Equal(t, "workflow.phase", fields[1].Key)
	assert.Equal(t, "request.id", fields[2].Key)
}

func TestLoggerEmitsContextFields(t *testing.T) {
	logger := NewTestLogger()

	ctx := ContextWithSessionID(context.Background(), "sess-42")
	logger.Info(ctx, "phase committed", zap.String("phase", "validation"))

	entries := logger.FilterMessage("phase committed").All()
	require.Len(t, entries, 1)

	fieldMap := entries[0].ContextMap()
	assert.Equal(t, "sess-42", fieldMap["session.id"])
	assert.Equal(t, "validation", fieldMap["phase"])
}

func TestTraceFilteredByDefault(t *testing.T) {
	cfg := NewDefaultConfig()
	logger, err := NewLogger(cfg)
	require.NoError(t, err)

	assert.False(t, logger.Enabled(TraceLevel))
	assert.True(t, logger.Enabled(zapcore.InfoLevel))
}

func TestNamedAndWith(t *testing.T) {
	logger := NewTestLogger()
	child := logger.Named("orchestrator").With(zap.String("app", "my-app"))

	child.Info(context.Background(), "started")

	entries := logger.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "orchestrator", entries[0].LoggerName)
	assert.Equal(t, "my-app", entries[0].ContextMap()["app"])
}
