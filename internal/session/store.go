package session

import (
	"context"
	"time"
)

// Session records which user is signed in on one browser client.
// It stores identity pointers only; profile data lives in the directory.
type Session struct {
	SessionID string    `json:"session_id"` // browser client ID
	UserID    string    `json:"user_id"`    // references users.id
	Provider  string    `json:"provider"`   // sign-in method used, e.g. "password"
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"` // absolute expiry time
}

// Store defines how sessions are stored and retrieved.
// Get returns (nil, nil) when no session exists.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, s Session) error
	Delete(ctx context.Context, sessionID string) error
}
