package domain

import "time"

// Identity carries the fields the chat transport knows about a sender.
// It is the only shape the command layer accepts, so no transport types
// leak into the services below it.
type Identity struct {
	ChatID    int64
	Username  string
	FirstName string
	LastName  string
}

// User represents an application user stored in the database.
// The external chat id is unique and never changes; profile fields are
// refreshed in place whenever the transport reports new values.
type User struct {
	ID        int64
	ChatID    int64
	Username  string
	FirstName string
	LastName  string
	CreatedAt time.Time
}

// DisplayName returns the friendliest name available for replies.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return ""
}
