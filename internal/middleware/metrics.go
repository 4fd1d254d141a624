package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/slh-community/slh-bot/internal/command"
	"github.com/slh-community/slh-bot/internal/ledger"
	"github.com/slh-community/slh-bot/internal/orders"
	"github.com/slh-community/slh-bot/internal/ratelimit"
	"github.com/slh-community/slh-bot/internal/store"
	"github.com/slh-community/slh-bot/pkg/metrics"
)

// Metrics measures execution time and outcome for command handlers,
// reporting them to Prometheus.
func Metrics(next command.Handler) command.Handler {
	return func(ctx context.Context, req command.Request) (string, error) {
		start := time.Now()
		reply, err := next(ctx, req)

		metrics.RecordCommand(commandLabel(req), statusOf(err), time.Since(start))

		return reply, err
	}
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return metrics.StatusOK
	case isExpectedRejection(err):
		return metrics.StatusRejected
	default:
		return metrics.StatusError
	}
}

func isExpectedRejection(err error) bool {
	return ledger.IsValidation(err) ||
		orders.IsValidation(err) ||
		errors.Is(err, store.ErrUserNotFound) ||
		errors.Is(err, ratelimit.ErrLimitExceeded)
}
