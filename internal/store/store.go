// Package store persists user rows: chosen language and conversation transcript.
package store

import (
	"context"
	"errors"
	"time"

	"talkbot/internal/transcript"
)

var ErrUserNotFound = errors.New("user not found")

type User struct {
	ID         int64
	Language   string
	Transcript string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Store defines the persistence operations the bot needs.
type Store interface {
	// User operations
	EnsureUser(ctx context.Context, userID int64) (bool, error)
	User(ctx context.Context, userID int64) (*User, error)
	Language(ctx context.Context, userID int64) (string, error)
	SetLanguage(ctx context.Context, userID int64, lang string) error
	CountUsers(ctx context.Context) (int, error)

	// Transcript operations
	Append(ctx context.Context, userID int64, turn transcript.Turn) error
	Turns(ctx context.Context, userID int64) ([]transcript.Turn, error)
	Raw(ctx context.Context, userID int64) (string, error)
	Clear(ctx context.Context, userID int64) error
	Replace(ctx context.Context, userID int64, blob string) error

	// Lifecycle
	Close() error
}
