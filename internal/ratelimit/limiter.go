// Package ratelimit throttles the command layer: a sliding-window
// per-user limit on all commands plus a long-window cooldown on faucet
// claims.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Result captures the outcome of a rate-limit evaluation.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter describes a rate-limiting strategy interface.
type Limiter interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
	// Forget drops every recorded hit for a key, releasing its window
	// immediately. The faucet middleware uses it to refund a cooldown
	// slot when the claim itself fails.
	Forget(ctx context.Context, key string) error
}

// ErrLimitExceeded indicates the rate limit has been reached for the key.
var ErrLimitExceeded = errors.New("rate limit exceeded")

// UserKey builds the limiter key for a user's overall command budget.
func UserKey(chatID int64) string {
	return fmt.Sprintf("user:%d", chatID)
}

// FaucetKey builds the limiter key for a user's faucet cooldown.
func FaucetKey(chatID int64) string {
	return fmt.Sprintf("faucet:%d", chatID)
}
