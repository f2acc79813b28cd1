package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		log, err := New(Config{Level: "info", Format: format})
		require.NoError(t, err, "format %q", format)
		assert.NotNil(t, log)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(Config{Level: "loud", Format: "json"})
	assert.Error(t, err)

	_, err = New(Config{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestNamedAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core)).Named("api").With(String("component", "test"))

	log.Info("estimate served",
		Float("probability", 42.5),
		Int("steps", 10),
		Bool("online", false),
		Error(errors.New("boom")),
	)
	log.Debug("debug line")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "api", entries[0].LoggerName)
	assert.Equal(t, "estimate served", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "test", fields["component"])
	assert.Equal(t, 42.5, fields["probability"])
	assert.Equal(t, int64(10), fields["steps"])
	assert.Equal(t, false, fields["online"])
	assert.Equal(t, "boom", fields["error"])
}

func TestNopDiscards(t *testing.T) {
	log := NewNop()
	log.Error("ignored", String("k", "v"))
	assert.NoError(t, log.Sync())
}
