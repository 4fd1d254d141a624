package ratelimit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	limiterChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_ratelimit_checks_total",
		Help: "Rate limit checks by backend and outcome.",
	}, []string{"backend", "outcome"})

	limiterFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_ratelimit_fallbacks_total",
		Help: "Times the Redis limiter failed and the in-process fallback took over.",
	})
)

// AdaptiveLimiter fronts the Redis limiter with an in-process fallback.
// While Redis is unreachable it keeps throttling locally at half the
// configured budget, so a cache outage cannot turn the faucet into an
// unlimited tap.
type AdaptiveLimiter struct {
	primary  Limiter
	fallback Limiter
	log      *slog.Logger
}

var _ Limiter = (*AdaptiveLimiter)(nil)

// NewAdaptiveLimiter pairs the Redis-backed limiter with its in-process
// fallback.
func NewAdaptiveLimiter(primary, fallback Limiter, log *slog.Logger) *AdaptiveLimiter {
	if log == nil {
		log = slog.Default()
	}

	return &AdaptiveLimiter{
		primary:  primary,
		fallback: fallback,
		log:      log,
	}
}

// Check evaluates the key on the primary backend and degrades to the
// fallback, with the budget halved, only on infrastructure failure. A
// blocked result is an answer, not a failure, and never falls through.
func (a *AdaptiveLimiter) Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	result, err := a.primary.Check(ctx, key, limit, window)
	if err == nil || errors.Is(err, ErrLimitExceeded) {
		return observe("primary", result)
	}

	limiterFallbacksTotal.Inc()
	a.log.Warn("redis limiter unavailable, throttling in process",
		slog.String("key", key),
		slog.Any("error", err),
	)

	local := limit / 2
	if local < 1 {
		local = 1
	}

	result, err = a.fallback.Check(ctx, key, local, window)
	if err != nil && result == nil {
		return nil, err
	}

	return observe("fallback", result)
}

// Forget clears the key on both backends so a refund survives a
// mid-outage failover in either direction.
func (a *AdaptiveLimiter) Forget(ctx context.Context, key string) error {
	err := a.primary.Forget(ctx, key)
	if ferr := a.fallback.Forget(ctx, key); err == nil {
		err = ferr
	}

	return err
}

func observe(backend string, result *Result) (*Result, error) {
	if !result.Allowed {
		limiterChecksTotal.WithLabelValues(backend, "blocked").Inc()
		return result, ErrLimitExceeded
	}

	limiterChecksTotal.WithLabelValues(backend, "allowed").Inc()
	return result, nil
}
