package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type downLimiter struct{}

func (downLimiter) Check(context.Context, string, int, time.Duration) (*Result, error) {
	return nil, errors.New("connection refused")
}

func (downLimiter) Forget(context.Context, string) error {
	return errors.New("connection refused")
}

func TestAdaptiveLimiterUsesPrimaryWhenHealthy(t *testing.T) {
	fallback := NewMemoryLimiter(testLogger())
	limiter := NewAdaptiveLimiter(NewMemoryLimiter(testLogger()), fallback, testLogger())
	ctx := context.Background()

	result, err := limiter.Check(ctx, UserKey(1), 1, time.Minute)
	require.NoError(t, err)
	require.True(t, result.Allowed)

	// The fallback saw no traffic.
	result, err = fallback.Check(ctx, UserKey(1), 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestAdaptiveLimiterFallsBackAtHalfBudget(t *testing.T) {
	limiter := NewAdaptiveLimiter(downLimiter{}, NewMemoryLimiter(testLogger()), testLogger())
	ctx := context.Background()

	// A budget of 4 degrades to 2 while Redis is down.
	for i := 0; i < 2; i++ {
		result, err := limiter.Check(ctx, UserKey(1), 4, time.Minute)
		require.NoError(t, err)
		require.True(t, result.Allowed)
	}

	result, err := limiter.Check(ctx, UserKey(1), 4, time.Minute)
	assert.ErrorIs(t, err, ErrLimitExceeded)
	require.NotNil(t, result)
	assert.False(t, result.Allowed)
}

func TestAdaptiveLimiterBlockedPrimaryDoesNotFallBack(t *testing.T) {
	primary := NewMemoryLimiter(testLogger())
	fallback := NewMemoryLimiter(testLogger())
	limiter := NewAdaptiveLimiter(primary, fallback, testLogger())
	ctx := context.Background()

	_, err := limiter.Check(ctx, FaucetKey(1), 1, time.Hour)
	require.NoError(t, err)

	result, err := limiter.Check(ctx, FaucetKey(1), 1, time.Hour)
	assert.ErrorIs(t, err, ErrLimitExceeded)
	require.NotNil(t, result)
	assert.False(t, result.Allowed)

	// The blocked answer never consulted the fallback.
	result, err = fallback.Check(ctx, FaucetKey(1), 1, time.Hour)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestAdaptiveLimiterForgetClearsBothBackends(t *testing.T) {
	primary := NewMemoryLimiter(testLogger())
	fallback := NewMemoryLimiter(testLogger())
	limiter := NewAdaptiveLimiter(primary, fallback, testLogger())
	ctx := context.Background()

	_, err := limiter.Check(ctx, FaucetKey(7), 1, time.Hour)
	require.NoError(t, err)
	_, err = fallback.Check(ctx, FaucetKey(7), 1, time.Hour)
	require.NoError(t, err)

	require.NoError(t, limiter.Forget(ctx, FaucetKey(7)))

	result, err := primary.Check(ctx, FaucetKey(7), 1, time.Hour)
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	result, err = fallback.Check(ctx, FaucetKey(7), 1, time.Hour)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}
