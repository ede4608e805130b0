package observability

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/hr-console/internal/config"
)

func TestNewLogger_Levels(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "WARN", Output: "stderr"})
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = NewLogger(config.LoggerConfig{Level: "loud", Encoding: "yaml", Output: "stderr"})
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLogger_ConsoleEncoding(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "debug", Encoding: "console", Output: "stderr", Service: "hrctl"})
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}
