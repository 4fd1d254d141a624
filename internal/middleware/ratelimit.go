package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/slh-community/slh-bot/internal/command"
	"github.com/slh-community/slh-bot/internal/ratelimit"
)

// RateLimit enforces the per-user command budget plus a long-window
// cooldown on faucet claims. Limiter outages fail open.
type RateLimit struct {
	limiter ratelimit.Limiter
	rules   *ratelimit.Rules
	log     *slog.Logger
}

// NewRateLimit constructs the rate-limit middleware.
func NewRateLimit(limiter ratelimit.Limiter, rules *ratelimit.Rules, log *slog.Logger) *RateLimit {
	if log == nil {
		log = slog.Default()
	}

	return &RateLimit{
		limiter: limiter,
		rules:   rules,
		log:     log,
	}
}

// Handle wraps the handler chain with rate limiting.
func (m *RateLimit) Handle(next command.Handler) command.Handler {
	return func(ctx context.Context, req command.Request) (string, error) {
		if m.limiter == nil || m.rules == nil {
			return next(ctx, req)
		}

		chatID := req.Identity.ChatID
		if m.rules.IsWhitelisted(chatID) {
			return next(ctx, req)
		}

		if reply, err := m.checkPerUser(ctx, chatID); err != nil {
			return reply, err
		}

		if req.Command == command.CommandFaucet {
			return m.handleFaucet(ctx, req, next)
		}

		return next(ctx, req)
	}
}

func (m *RateLimit) checkPerUser(ctx context.Context, chatID int64) (string, error) {
	limit, window := m.rules.PerUserLimit()
	if limit <= 0 || window <= 0 {
		return "", nil
	}

	result, err := m.limiter.Check(ctx, ratelimit.UserKey(chatID), limit, window)
	if err != nil && result == nil {
		m.log.Warn("rate limiter error",
			slog.Int64("chat_id", chatID),
			slog.Any("error", err),
		)
		return "", nil
	}

	if !result.Allowed {
		m.log.Warn("rate limit exceeded", slog.Int64("chat_id", chatID))
		return "Too many requests. Try again later.", ratelimit.ErrLimitExceeded
	}

	return "", nil
}

// handleFaucet claims the cooldown slot, runs the command, and refunds
// the slot when the claim itself fails. A store fault must not burn the
// user's whole cooldown window.
func (m *RateLimit) handleFaucet(ctx context.Context, req command.Request, next command.Handler) (string, error) {
	chatID := req.Identity.ChatID
	cooldown := m.rules.FaucetCooldown()
	if cooldown <= 0 {
		return next(ctx, req)
	}

	key := ratelimit.FaucetKey(chatID)
	result, err := m.limiter.Check(ctx, key, 1, cooldown)
	if err != nil && result == nil {
		m.log.Warn("faucet cooldown check failed",
			slog.Int64("chat_id", chatID),
			slog.Any("error", err),
		)
		return next(ctx, req)
	}

	if !result.Allowed {
		wait := time.Until(result.ResetAt).Round(time.Minute)
		if wait <= 0 {
			wait = cooldown
		}
		return fmt.Sprintf("Faucet already claimed. Try again in about %s.", wait),
			ratelimit.ErrLimitExceeded
	}

	reply, err := next(ctx, req)
	if err != nil {
		if ferr := m.limiter.Forget(ctx, key); ferr != nil {
			m.log.Warn("faucet cooldown refund failed",
				slog.Int64("chat_id", chatID),
				slog.Any("error", ferr),
			)
		}
	}

	return reply, err
}
