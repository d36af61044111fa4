package logger

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgsg-dev/mgsg-bot/pkg/config"
)

func TestNewBuildsSentryFanout(t *testing.T) {
	cfg := &config.Config{
		AppEnv: "test",
		Logger: config.LoggerConfig{Level: "error", Format: "text"},
		Sentry: config.SentryConfig{Enabled: true},
	}

	log := New(cfg)
	require.NotNil(t, log)

	// the sentry SDK is not initialized here; emitting through the fanout
	// must still be safe
	log.Error("upstream failed", slog.String("api_key", "sk-123"))
}

func TestMaskSensitive(t *testing.T) {
	cases := []struct {
		key    string
		masked bool
	}{
		{"token", true},
		{"API_KEY", true},
		{"dsn", true},
		{"user_id", false},
	}
	for _, tc := range cases {
		attr := maskSensitive(nil, slog.String(tc.key, "value"))
		if tc.masked {
			assert.Equal(t, "***", attr.Value.String(), tc.key)
		} else {
			assert.Equal(t, "value", attr.Value.String(), tc.key)
		}
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, parseLevel("anything"))
}
