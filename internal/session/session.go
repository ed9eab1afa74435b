package session

import (
	"context"
	"time"
)

// Session ties a browser cookie to a user. Username is empty for visitors
// that have not logged in yet; they still get a session so flashes survive
// redirects.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Authenticated() bool {
	return s != nil && s.Username != ""
}

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string `json:"category"` // success, info, warning, danger
	Message  string `json:"message"`
}

const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

// Store keeps sessions and their pending flashes.
type Store interface {
	Create(ctx context.Context, username string) (*Session, error)
	// Get returns apperrors.ErrSessionNotFound for unknown or expired tokens.
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	AddFlash(ctx context.Context, token string, flash Flash) error
	// PopFlashes returns the pending flashes in order and clears them.
	PopFlashes(ctx context.Context, token string) ([]Flash, error)
}
