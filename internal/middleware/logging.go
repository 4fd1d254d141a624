// Package middleware provides the cross-cutting wrappers for the
// command chain and the ops HTTP server.
package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/slh-community/slh-bot/internal/command"
	"github.com/slh-community/slh-bot/pkg/logger"
)

// Logging attaches a correlation id to the request context and logs
// every handled command with its outcome and duration.
func Logging(log *slog.Logger) command.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next command.Handler) command.Handler {
		return func(ctx context.Context, req command.Request) (string, error) {
			correlationID := logger.CorrelationIDFromContext(ctx)
			if correlationID == "" {
				correlationID = uuid.NewString()
				ctx = logger.WithCorrelationID(ctx, correlationID)
			}

			start := time.Now()
			reply, err := next(ctx, req)

			attrs := []any{
				slog.String("command", commandLabel(req)),
				slog.Int64("chat_id", req.Identity.ChatID),
				slog.Duration("duration", time.Since(start)),
				slog.String("correlation_id", correlationID),
			}

			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
				log.Warn("command completed with error", attrs...)
				return reply, err
			}

			log.Info("command handled", attrs...)
			return reply, nil
		}
	}
}

func commandLabel(req command.Request) string {
	if req.Command == "" {
		return "default"
	}
	return req.Command
}
