package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterBlocksOverBudget(t *testing.T) {
	limiter := NewMemoryLimiter(testLogger())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		result, err := limiter.Check(ctx, UserKey(1), 2, time.Minute)
		require.NoError(t, err)
		require.True(t, result.Allowed)
	}

	result, err := limiter.Check(ctx, UserKey(1), 2, time.Minute)
	assert.ErrorIs(t, err, ErrLimitExceeded)
	require.NotNil(t, result)
	assert.False(t, result.Allowed)
	assert.Zero(t, result.Remaining)
}

func TestMemoryLimiterResetAtTracksOldestHit(t *testing.T) {
	limiter := NewMemoryLimiter(testLogger())
	ctx := context.Background()
	cooldown := time.Hour

	claimed := time.Now()
	_, err := limiter.Check(ctx, FaucetKey(1), 1, cooldown)
	require.NoError(t, err)

	result, err := limiter.Check(ctx, FaucetKey(1), 1, cooldown)
	assert.ErrorIs(t, err, ErrLimitExceeded)
	assert.WithinDuration(t, claimed.Add(cooldown), result.ResetAt, time.Second)
}

func TestMemoryLimiterForget(t *testing.T) {
	limiter := NewMemoryLimiter(testLogger())
	ctx := context.Background()

	_, err := limiter.Check(ctx, FaucetKey(1), 1, time.Hour)
	require.NoError(t, err)

	require.NoError(t, limiter.Forget(ctx, FaucetKey(1)))

	result, err := limiter.Check(ctx, FaucetKey(1), 1, time.Hour)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestMemoryLimiterCleanupKeepsLiveWindows(t *testing.T) {
	limiter := NewMemoryLimiter(testLogger())
	ctx := context.Background()

	_, err := limiter.Check(ctx, FaucetKey(1), 1, time.Hour)
	require.NoError(t, err)

	limiter.Cleanup(2 * time.Hour)

	result, err := limiter.Check(ctx, FaucetKey(1), 1, time.Hour)
	assert.ErrorIs(t, err, ErrLimitExceeded)
	assert.False(t, result.Allowed)
}
