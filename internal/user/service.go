// Package user resolves chat identities to application users.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/slh-community/slh-bot/internal/domain"
	"github.com/slh-community/slh-bot/internal/store"
	"github.com/slh-community/slh-bot/internal/usercache"
)

const cacheTTL = 5 * time.Minute

// Service provides business operations over users.
type Service struct {
	store store.Store
	cache *usercache.Cache
	log   *slog.Logger
}

// NewService constructs a new Service instance. The cache is optional.
func NewService(st store.Store, cache *usercache.Cache, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{store: st, cache: cache, log: log}
}

// GetOrCreate resolves the sender's identity to a user record, creating
// it on first contact and refreshing the profile fields in place when
// they change. The cache only short-circuits when the cached profile
// still matches what the transport reports.
func (s *Service) GetOrCreate(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	if identity.ChatID == 0 {
		return nil, errors.New("identity has no chat id")
	}

	if cached, err := s.cache.Get(ctx, identity.ChatID); err != nil {
		s.logError("get_or_create.cache", identity.ChatID, err)
	} else if cached != nil {
		if profileMatches(cached, identity) {
			return cached, nil
		}
		// Drop the stale entry first, so a failed upsert cannot leave
		// the old profile serving reads until the TTL expires.
		if err := s.cache.Invalidate(ctx, identity.ChatID); err != nil {
			s.logError("get_or_create.cache_invalidate", identity.ChatID, err)
		}
	}

	user, err := s.store.GetOrCreateUser(ctx, identity)
	if err != nil {
		s.logError("get_or_create.upsert", identity.ChatID, err)
		return nil, fmt.Errorf("get or create user: %w", err)
	}

	if err := s.cache.Set(ctx, identity.ChatID, user, cacheTTL); err != nil {
		s.logError("get_or_create.cache_set", identity.ChatID, err)
	}

	return user, nil
}

// Resolve finds the recipient a /send command names. A leading @ always
// means a username; a bare numeric target is treated as a chat id.
func (s *Service) Resolve(ctx context.Context, target string) (*domain.User, error) {
	if len(target) > 0 && target[0] == '@' {
		return s.store.GetUserByUsername(ctx, target[1:])
	}

	if chatID, err := strconv.ParseInt(target, 10, 64); err == nil {
		return s.store.GetUserByChatID(ctx, chatID)
	}

	return s.store.GetUserByUsername(ctx, target)
}

func profileMatches(user *domain.User, identity domain.Identity) bool {
	return user.Username == trimAt(identity.Username) &&
		user.FirstName == identity.FirstName &&
		user.LastName == identity.LastName
}

func trimAt(username string) string {
	if len(username) > 0 && username[0] == '@' {
		return username[1:]
	}
	return username
}

func (s *Service) logError(operation string, chatID int64, err error) {
	if err == nil {
		return
	}

	s.log.Error("user service operation failed",
		slog.String("operation", operation),
		slog.Int64("chat_id", chatID),
		slog.Any("error", err),
	)
}
