// Package session persists the logged-in user between process restarts.
package session

import (
	"context"
	"time"

	"storefront/internal/model"
)

// Session identifies the authenticated user.
type Session struct {
	UserID          string     `json:"userId"`
	Email           string     `json:"email"`
	Role            model.Role `json:"role"`
	ActiveSessionID string     `json:"activeSessionId,omitempty"`
	LoggedInAt      time.Time  `json:"loggedInAt"`
}

// Store saves and restores the current session.
// Load returns nil, nil when no session is stored.
type Store interface {
	Save(ctx context.Context, s Session) error
	Load(ctx context.Context) (*Session, error)
	Clear(ctx context.Context) error
}
