// Package usercache caches resolved user profiles in Redis so repeat
// commands skip the registry upsert path.
package usercache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/slh-community/slh-bot/internal/domain"
)

// KV is the key-value surface the cache needs. Both the plain and the
// metrics-instrumented Redis clients satisfy it.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Cache provides Redis-backed caching for user profiles, keyed by the
// external chat id.
type Cache struct {
	kv KV
}

// NewCache constructs a user cache backed by the provided client. A nil
// client yields a no-op cache.
func NewCache(kv KV) *Cache {
	return &Cache{kv: kv}
}

// Get fetches a cached user profile if it exists.
func (c *Cache) Get(ctx context.Context, chatID int64) (*domain.User, error) {
	if c == nil || c.kv == nil {
		return nil, nil
	}

	data, err := c.kv.Get(ctx, cacheKey(chatID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached user: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("decode cached user: %w", err)
	}

	return &user, nil
}

// Set stores the user profile in cache for the provided TTL.
func (c *Cache) Set(ctx context.Context, chatID int64, user *domain.User, ttl time.Duration) error {
	if c == nil || c.kv == nil || user == nil {
		return nil
	}

	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user for cache: %w", err)
	}

	if err := c.kv.Set(ctx, cacheKey(chatID), payload, ttl); err != nil {
		return fmt.Errorf("set cached user: %w", err)
	}

	return nil
}

// Invalidate removes the cached profile entry if it exists.
func (c *Cache) Invalidate(ctx context.Context, chatID int64) error {
	if c == nil || c.kv == nil {
		return nil
	}

	if err := c.kv.Delete(ctx, cacheKey(chatID)); err != nil {
		return fmt.Errorf("delete cached user: %w", err)
	}

	return nil
}

func cacheKey(chatID int64) string {
	return fmt.Sprintf("slh:user:chat:%d", chatID)
}
