// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/clause-classifier/pkg/types"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{" error ", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"bogus", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), "level %q", tt.in)
	}
}

func TestNew(t *testing.T) {
	for _, dev := range []bool{false, true} {
		l, err := New(types.LogConfig{Level: "debug", Development: dev})
		require.NoError(t, err)
		require.NotNil(t, l)
		l.Info("ready", String("component", "test"))
	}
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewWithCore(core).With(String("run_id", "r1"))

	l.Warn("template missing", String("contract_id", "TN_001"), Int("pairs", 2))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "template missing", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "r1", ctx["run_id"])
	assert.Equal(t, "TN_001", ctx["contract_id"])
	assert.Equal(t, int64(2), ctx["pairs"])
}

func TestNopDiscards(t *testing.T) {
	l := NewNop()
	l.Error("ignored")
	assert.NotNil(t, l.With(Bool("x", true)))
}
