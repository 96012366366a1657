package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerFieldsAndLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewWithCore(core, LevelInfo)

	logger.Debug("hidden")
	logger.Info("frame", Int("live", 12), Uint64("frame", 3), Bool("parallel", true))
	logger.With(String("emitter", "boss")).Warn("exhausted", Error(errors.New("full")))

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, "frame", entries[0].Message)
	require.Equal(t, int64(12), entries[0].ContextMap()["live"])
	require.Equal(t, "boss", entries[1].ContextMap()["emitter"])
	require.Equal(t, "full", entries[1].ContextMap()["error"])

	logger.SetLevel(LevelDebug)
	require.Equal(t, LevelDebug, logger.GetLevel())
	logger.Debug("shown")
	require.Equal(t, 3, logs.Len())
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{
		"debug": LevelDebug, "INFO": LevelInfo, "": LevelInfo, "warning": LevelWarn, "error": LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseLevel("loud")
	require.Error(t, err)
}

func TestNopLogger(t *testing.T) {
	l := NewNop()
	l.Info("ignored", Float64("x", 1))
	require.NotNil(t, l.With(Int("a", 1)))
}
