package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slh-community/slh-bot/internal/command"
	"github.com/slh-community/slh-bot/internal/domain"
	"github.com/slh-community/slh-bot/internal/ratelimit"
	"github.com/slh-community/slh-bot/pkg/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler(ctx context.Context, req command.Request) (string, error) {
	return "ok", nil
}

func newRequest(chatID int64, cmd string) command.Request {
	return command.Request{Identity: domain.Identity{ChatID: chatID}, Command: cmd}
}

func TestRateLimitAllowsWithinBudget(t *testing.T) {
	rules := ratelimit.NewRules(config.RateLimitConfig{
		PerUser: config.RateLimitRule{Limit: 3, Window: time.Minute},
	})
	mw := NewRateLimit(ratelimit.NewMemoryLimiter(testLogger()), rules, testLogger())
	handler := mw.Handle(okHandler)

	for i := 0; i < 3; i++ {
		reply, err := handler(context.Background(), newRequest(1, command.CommandWallet))
		require.NoError(t, err)
		assert.Equal(t, "ok", reply)
	}
}

func TestRateLimitBlocksOverBudget(t *testing.T) {
	rules := ratelimit.NewRules(config.RateLimitConfig{
		PerUser: config.RateLimitRule{Limit: 2, Window: time.Minute},
	})
	mw := NewRateLimit(ratelimit.NewMemoryLimiter(testLogger()), rules, testLogger())
	handler := mw.Handle(okHandler)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := handler(ctx, newRequest(1, command.CommandWallet))
		require.NoError(t, err)
	}

	reply, err := handler(ctx, newRequest(1, command.CommandWallet))
	assert.ErrorIs(t, err, ratelimit.ErrLimitExceeded)
	assert.Equal(t, "Too many requests. Try again later.", reply)

	// A different user still gets through.
	_, err = handler(ctx, newRequest(2, command.CommandWallet))
	assert.NoError(t, err)
}

func TestRateLimitWhitelistBypasses(t *testing.T) {
	rules := ratelimit.NewRules(config.RateLimitConfig{
		PerUser:   config.RateLimitRule{Limit: 1, Window: time.Minute},
		Whitelist: []int64{7},
	})
	mw := NewRateLimit(ratelimit.NewMemoryLimiter(testLogger()), rules, testLogger())
	handler := mw.Handle(okHandler)

	for i := 0; i < 5; i++ {
		_, err := handler(context.Background(), newRequest(7, command.CommandWallet))
		require.NoError(t, err)
	}
}

func TestFaucetCooldown(t *testing.T) {
	rules := ratelimit.NewRules(config.RateLimitConfig{
		PerUser:        config.RateLimitRule{Limit: 100, Window: time.Minute},
		FaucetCooldown: time.Hour,
	})
	mw := NewRateLimit(ratelimit.NewMemoryLimiter(testLogger()), rules, testLogger())
	handler := mw.Handle(okHandler)

	ctx := context.Background()

	_, err := handler(ctx, newRequest(1, command.CommandFaucet))
	require.NoError(t, err)

	reply, err := handler(ctx, newRequest(1, command.CommandFaucet))
	assert.ErrorIs(t, err, ratelimit.ErrLimitExceeded)
	assert.Contains(t, reply, "Faucet already claimed")

	// Cooldown only applies to the faucet.
	_, err = handler(ctx, newRequest(1, command.CommandWallet))
	assert.NoError(t, err)
}

func TestFaucetCooldownRefundedOnFailure(t *testing.T) {
	rules := ratelimit.NewRules(config.RateLimitConfig{
		PerUser:        config.RateLimitRule{Limit: 100, Window: time.Minute},
		FaucetCooldown: time.Hour,
	})
	mw := NewRateLimit(ratelimit.NewMemoryLimiter(testLogger()), rules, testLogger())

	calls := 0
	flaky := func(ctx context.Context, req command.Request) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("store unavailable")
		}
		return "ok", nil
	}
	handler := mw.Handle(flaky)
	ctx := context.Background()

	_, err := handler(ctx, newRequest(1, command.CommandFaucet))
	require.Error(t, err)

	// The failed claim did not consume the cooldown slot.
	reply, err := handler(ctx, newRequest(1, command.CommandFaucet))
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)

	// The successful claim did.
	_, err = handler(ctx, newRequest(1, command.CommandFaucet))
	assert.ErrorIs(t, err, ratelimit.ErrLimitExceeded)
}

func TestRateLimitDisabledWithoutLimiter(t *testing.T) {
	mw := NewRateLimit(nil, nil, testLogger())
	handler := mw.Handle(okHandler)

	for i := 0; i < 10; i++ {
		_, err := handler(context.Background(), newRequest(1, command.CommandWallet))
		require.NoError(t, err)
	}
}
