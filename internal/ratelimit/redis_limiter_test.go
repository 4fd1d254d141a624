package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRedisLimiter(t *testing.T) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisLimiter(client, testLogger()), mr
}

func TestRedisLimiterCommandBudget(t *testing.T) {
	limiter, mr := newRedisLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result, err := limiter.Check(ctx, UserKey(100), 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}

	result, err := limiter.Check(ctx, UserKey(100), 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Zero(t, result.Remaining)

	assert.True(t, mr.Exists("slh:ratelimit:user:100"))
}

func TestRedisLimiterIsolatesUsers(t *testing.T) {
	limiter, _ := newRedisLimiter(t)
	ctx := context.Background()

	result, err := limiter.Check(ctx, UserKey(1), 1, time.Minute)
	require.NoError(t, err)
	require.True(t, result.Allowed)

	result, err = limiter.Check(ctx, UserKey(1), 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, result.Allowed)

	result, err = limiter.Check(ctx, UserKey(2), 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestRedisLimiterFaucetCooldown(t *testing.T) {
	limiter, _ := newRedisLimiter(t)
	ctx := context.Background()

	result, err := limiter.Check(ctx, FaucetKey(100), 1, time.Hour)
	require.NoError(t, err)
	require.True(t, result.Allowed)

	result, err = limiter.Check(ctx, FaucetKey(100), 1, time.Hour)
	require.NoError(t, err)
	assert.False(t, result.Allowed)

	// The claim does not touch the user's general command budget.
	result, err = limiter.Check(ctx, UserKey(100), 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestRedisLimiterForgetReleasesCooldown(t *testing.T) {
	limiter, mr := newRedisLimiter(t)
	ctx := context.Background()

	result, err := limiter.Check(ctx, FaucetKey(5), 1, time.Hour)
	require.NoError(t, err)
	require.True(t, result.Allowed)

	require.NoError(t, limiter.Forget(ctx, FaucetKey(5)))
	assert.False(t, mr.Exists("slh:ratelimit:faucet:5"))

	result, err = limiter.Check(ctx, FaucetKey(5), 1, time.Hour)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestRedisLimiterWindowSlides(t *testing.T) {
	limiter, _ := newRedisLimiter(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		result, err := limiter.Check(ctx, UserKey(9), 2, 500*time.Millisecond)
		require.NoError(t, err)
		require.True(t, result.Allowed)
	}

	result, err := limiter.Check(ctx, UserKey(9), 2, 500*time.Millisecond)
	require.NoError(t, err)
	require.False(t, result.Allowed)

	time.Sleep(600 * time.Millisecond)

	result, err = limiter.Check(ctx, UserKey(9), 2, 500*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}
