package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/slh-community/slh-bot/internal/domain"
	"github.com/slh-community/slh-bot/internal/store"
)

// GetOrCreateUser upserts a user keyed by the external chat id and
// refreshes the profile fields in place when the transport reports new
// values. The chat id itself is immutable.
func (s *Store) GetOrCreateUser(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	const query = `
		INSERT INTO users (chat_id, username, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (chat_id) DO UPDATE SET
			username   = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name  = EXCLUDED.last_name
		RETURNING id, chat_id, username, first_name, last_name, created_at
	`

	row := s.db.QueryRowContext(ctx, query,
		identity.ChatID,
		strings.TrimPrefix(identity.Username, "@"),
		identity.FirstName,
		identity.LastName,
	)

	user, err := scanUser(row)
	if err != nil {
		s.log.Error("failed to upsert user", "chat_id", identity.ChatID, "error", err)
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	return user, nil
}

// GetUserByChatID fetches a user by the external chat identifier.
func (s *Store) GetUserByChatID(ctx context.Context, chatID int64) (*domain.User, error) {
	const query = `
		SELECT id, chat_id, username, first_name, last_name, created_at
		FROM users
		WHERE chat_id = $1
	`

	user, err := scanUser(s.db.QueryRowContext(ctx, query, chatID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("select user by chat id: %w", err)
	}

	return user, nil
}

// GetUserByUsername fetches a user by username, with or without the
// leading @ the chat transport shows.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `
		SELECT id, chat_id, username, first_name, last_name, created_at
		FROM users
		WHERE username = $1
	`

	clean := strings.TrimPrefix(username, "@")

	user, err := scanUser(s.db.QueryRowContext(ctx, query, clean))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("select user by username: %w", err)
	}

	return user, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.ChatID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &user, nil
}
