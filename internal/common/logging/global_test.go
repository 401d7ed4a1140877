package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigureVerbosity(t *testing.T) {
	prev := StdLogger()
	defer ReplaceStdLogger(prev)

	Configure(false)
	assert.False(t, StdLogger().underlying.Desugar().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, StdLogger().underlying.Desugar().Core().Enabled(zapcore.InfoLevel))

	Configure(true)
	assert.True(t, StdLogger().underlying.Desugar().Core().Enabled(zapcore.DebugLevel))
}

func TestReplaceStdLogger(t *testing.T) {
	prev := StdLogger()
	defer ReplaceStdLogger(prev)

	core, observed := observer.New(zap.DebugLevel)
	ReplaceStdLogger(FromZap(zap.New(core)))
	Debugf("solving with the %q engine", "gradient")

	logs := observed.All()
	require.Len(t, logs, 1)
	assert.Equal(t, `solving with the "gradient" engine`, logs[0].Message)
}
