package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Modes(t *testing.T) {
	dev, err := New("development", false)
	require.NoError(t, err)
	assert.False(t, dev.SugaredLogger.Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, dev.SugaredLogger.Desugar().Core().Enabled(zapcore.WarnLevel))

	verbose, err := New("", true)
	require.NoError(t, err)
	assert.True(t, verbose.SugaredLogger.Desugar().Core().Enabled(zapcore.DebugLevel))

	prod, err := New("Production", false)
	require.NoError(t, err)
	assert.True(t, prod.SugaredLogger.Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.False(t, prod.SugaredLogger.Desugar().Core().Enabled(zapcore.DebugLevel))
}

func TestLogger_With(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("run_id", "r1").Info("enforced", "repairs", 3)
	l.Warn("fact check", "issues", 1)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "enforced", entries[0].Message)
	assert.Equal(t, map[string]interface{}{"run_id": "r1", "repairs": int64(3)}, entries[0].ContextMap())
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.Debug("x")
		l.Error("y", "k", "v")
		l.Sync()
	})
}
