package session

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core/user"
)

var (
	// errors
	ErrNoSession = errors.New("no active session")
	ErrExpired   = errors.New("session expired")
	ErrNotFound  = errors.New("session not found")
)

// Session binds an authenticated subject to the role verified at login.
// The role never changes for the session's lifetime; a new role requires a new session.
type Session struct {
	ID            string    `json:"id"`
	SubjectID     string    `json:"subject_id"`
	Role          user.Role `json:"role"`
	EstablishedAt time.Time `json:"established_at"` // UTC
	ExpiresAt     time.Time `json:"expires_at"`     // UTC
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type (
	// Store persists sessions server-side.
	Store interface {
		// Save stores sess until its ExpiresAt.
		Save(ctx context.Context, sess Session) error
		// Get returns ErrNotFound if there is no live session with that ID.
		Get(ctx context.Context, id string) (Session, error)
		// Delete is a no-op for unknown IDs.
		Delete(ctx context.Context, id string) error
	}

	// Slot is the client-side key/value slot a browser context keeps its session token in.
	Slot interface {
		// Token returns the stored token or "" when the slot is empty.
		Token() string
		Put(token string, expiresAt time.Time)
		Clear()
	}
)
