package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func TestInitialize_WritesToConsole(t *testing.T) {
	resetForTest()
	t.Cleanup(resetForTest)

	sink := &zaptest.Buffer{}
	Initialize(Config{Level: "debug"}, sink)

	L().Info("hello flock", zap.Int("boids", 3))
	require.NotEmpty(t, sink.Lines())
	assert.Contains(t, sink.String(), "hello flock")
	assert.Contains(t, sink.String(), "boids")
}

func TestInitialize_BadLevelFallsBackToInfo(t *testing.T) {
	resetForTest()
	t.Cleanup(resetForTest)

	sink := &zaptest.Buffer{}
	Initialize(Config{Level: "chatty"}, sink)

	L().Debug("invisible")
	L().Info("visible")

	assert.NotContains(t, sink.String(), "invisible")
	assert.Contains(t, sink.String(), "visible")
}

func TestInitialize_OnlyOnce(t *testing.T) {
	resetForTest()
	t.Cleanup(resetForTest)

	first := &zaptest.Buffer{}
	second := &zaptest.Buffer{}
	Initialize(Config{Level: "info"}, first)
	Initialize(Config{Level: "info"}, second)

	L().Info("once")
	assert.Contains(t, first.String(), "once")
	assert.Empty(t, second.Lines())
}

func TestL_BeforeInitIsSafe(t *testing.T) {
	resetForTest()
	t.Cleanup(resetForTest)

	// Must not panic; the no-op logger absorbs everything.
	L().Info("into the void")
	Sync()
}

var _ zapcore.WriteSyncer = (*zaptest.Buffer)(nil)
