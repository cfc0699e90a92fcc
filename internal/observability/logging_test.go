package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/hotel/internal/config"
)

func TestZapConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.LoggingConfig
		encoding string
		level    zapcore.Level
		wantErr  bool
	}{
		{name: "json info", cfg: config.LoggingConfig{Level: "info", Format: "json"}, encoding: "json", level: zapcore.InfoLevel},
		{name: "console debug", cfg: config.LoggingConfig{Level: "debug", Format: "console"}, encoding: "console", level: zapcore.DebugLevel},
		{name: "json warn", cfg: config.LoggingConfig{Level: "warn", Format: "json"}, encoding: "json", level: zapcore.WarnLevel},
		{name: "json error", cfg: config.LoggingConfig{Level: "error", Format: "json"}, encoding: "json", level: zapcore.ErrorLevel},
		{name: "unknown level", cfg: config.LoggingConfig{Level: "trace", Format: "json"}, wantErr: true},
		{name: "unknown format", cfg: config.LoggingConfig{Level: "info", Format: "xml"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zc, err := zapConfig(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.encoding, zc.Encoding)
			assert.Equal(t, tt.level, zc.Level.Level())
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json"}, "deskserver")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = NewLogger(config.LoggingConfig{Level: "loud", Format: "json"}, "deskserver")
	assert.Error(t, err)
}
