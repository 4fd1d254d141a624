package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/slh-community/slh-bot/pkg/config"
)

func TestRulesWhitelist(t *testing.T) {
	rules := NewRules(config.RateLimitConfig{Whitelist: []int64{1, 2}})

	assert.True(t, rules.IsWhitelisted(1))
	assert.True(t, rules.IsWhitelisted(2))
	assert.False(t, rules.IsWhitelisted(3))
}

func TestRulesUpdateSwapsLimits(t *testing.T) {
	rules := NewRules(config.RateLimitConfig{
		PerUser:        config.RateLimitRule{Limit: 10, Window: time.Minute},
		FaucetCooldown: time.Hour,
	})

	rules.Update(config.RateLimitConfig{
		PerUser:        config.RateLimitRule{Limit: 5, Window: 30 * time.Second},
		FaucetCooldown: 24 * time.Hour,
		Whitelist:      []int64{9},
	})

	limit, window := rules.PerUserLimit()
	assert.Equal(t, 5, limit)
	assert.Equal(t, 30*time.Second, window)
	assert.Equal(t, 24*time.Hour, rules.FaucetCooldown())
	assert.True(t, rules.IsWhitelisted(9))
}
