package ratelimit

import (
	"sync"
	"time"

	"github.com/slh-community/slh-bot/pkg/config"
)

// Rules encapsulates configured rate limits and helper methods. Limits
// can be swapped at runtime when the config file is reloaded.
type Rules struct {
	mu     sync.RWMutex
	config config.RateLimitConfig
}

// NewRules constructs rate limiting rules from configuration settings.
func NewRules(cfg config.RateLimitConfig) *Rules {
	return &Rules{config: cfg}
}

// Update replaces the active limits with a reloaded configuration.
func (r *Rules) Update(cfg config.RateLimitConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config = cfg
}

// IsWhitelisted returns true if the chat id bypasses rate limits.
func (r *Rules) IsWhitelisted(chatID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.config.Whitelist {
		if id == chatID {
			return true
		}
	}
	return false
}

// PerUserLimit returns the per-user command limit and its window. A
// zero limit or window disables per-user throttling.
func (r *Rules) PerUserLimit() (int, time.Duration) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.config.PerUser.Limit, r.config.PerUser.Window
}

// FaucetCooldown returns the minimum gap between faucet claims per
// user. Zero disables the cooldown.
func (r *Rules) FaucetCooldown() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.config.FaucetCooldown
}
