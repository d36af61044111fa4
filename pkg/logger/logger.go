// Package logger builds the application slog.Logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	slogsentry "github.com/samber/slog-sentry/v2"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/mgsg-dev/mgsg-bot/pkg/config"
)

var sensitiveKeys = []string{
	"password",
	"token",
	"secret",
	"api_key",
	"authorization",
	"dsn",
}

// New creates a logger according to the logger and sentry sections of cfg.
func New(cfg *config.Config) *slog.Logger {
	var out io.Writer = os.Stdout
	if cfg.Logger.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.Logger.File,
			MaxSize:    cfg.Logger.MaxSizeMB,
			MaxBackups: cfg.Logger.MaxBackups,
			MaxAge:     cfg.Logger.MaxAgeDays,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotated)
	}

	opts := &slog.HandlerOptions{
		Level:       parseLevel(cfg.Logger.Level),
		ReplaceAttr: maskSensitive,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Logger.Format, "text") {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	if cfg.Sentry.Enabled {
		sentryHandler := slogsentry.Option{Level: slog.LevelError}.NewSentryHandler()
		handler = newFanoutHandler(handler, sentryHandler)
	}

	log := slog.New(handler).With(slog.String("env", cfg.AppEnv))
	slog.SetDefault(log)

	return log
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// maskSensitive hides values of secret-looking attributes before they reach
// any handler, file output included.
func maskSensitive(_ []string, attr slog.Attr) slog.Attr {
	for _, key := range sensitiveKeys {
		if strings.EqualFold(attr.Key, key) {
			attr.Value = slog.StringValue("***")
			break
		}
	}
	return attr
}
