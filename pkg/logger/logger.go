// Package logger builds the application slog.Logger and its handler
// chain: level filtering, optional file rotation, optional Sentry
// forwarding, and masking of sensitive attributes.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	slogsentry "github.com/samber/slog-sentry/v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/slh-community/slh-bot/pkg/config"
)

const sentryFlushTimeout = 2 * time.Second

// New constructs the application logger from configuration. The
// returned cleanup function flushes buffered Sentry events and must be
// called on shutdown.
func New(cfg config.LoggerConfig, sentryCfg config.SentryConfig, env string) (*slog.Logger, func(), error) {
	handler := baseHandler(cfg)

	cleanup := func() {}
	if sentryCfg.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         sentryCfg.DSN,
			Environment: env,
		}); err != nil {
			return nil, nil, fmt.Errorf("init sentry: %w", err)
		}
		cleanup = func() { sentry.Flush(sentryFlushTimeout) }

		sentryHandler := slogsentry.Option{Level: slog.LevelWarn}.NewSentryHandler()
		handler = newTeeHandler(handler, sentryHandler)
	}

	return slog.New(NewMaskingHandler(handler)), cleanup, nil
}

func baseHandler(cfg config.LoggerConfig) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var out io.Writer = os.Stdout
	if cfg.File != "" {
		out = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
	}

	if cfg.Format == "json" {
		return slog.NewJSONHandler(out, opts)
	}

	return slog.NewTextHandler(out, opts)
}

func parseLevel(level string) slog.Level {
	switch level {
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
