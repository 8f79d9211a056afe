// Package session stores view sessions for the HTTP API.
//
// A view session remembers what one client is looking at: the encoded view
// state (see package state) and the lineage mode. The layout engine itself
// is rebuilt from this record whenever a server instance has no live view
// controller for the session, so a session may move between instances that
// share a Redis store.
//
// Backends:
//   - [MemoryStore]: a single process, used in tests and by `serve` without Redis
//   - [RedisStore]: shared between instances
//   - [FileStore]: the CLI's last explored view
//
// # Usage
//
//	sess := session.New(session.DefaultTTL)
//	sess.State = encoded
//	if err := store.Set(ctx, sess); err != nil {
//	    return err
//	}
//
//	sess, err := store.Get(ctx, id)
//	if err != nil {
//	    return err
//	}
//	if sess == nil {
//	    // unknown or expired
//	}
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidID is returned for ids that are not uuids.
	ErrInvalidID = errors.New("invalid session id")
)

// Session is one client's view of a family tree.
type Session struct {
	ID        string    `json:"id"`
	State     string    `json:"state,omitempty"`
	Mode      string    `json:"mode,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch records an update and extends the session by ttl.
func (s *Session) Touch(ttl time.Duration) {
	now := time.Now()
	s.UpdatedAt = now
	s.ExpiresAt = now.Add(ttl)
}

// TTL returns the time left before expiry, at least one second.
func (s *Session) TTL() time.Duration {
	if d := time.Until(s.ExpiresAt); d > time.Second {
		return d
	}
	return time.Second
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (may be a no-op for Redis).
	Cleanup(ctx context.Context) error
}

// DefaultTTL is the default session duration.
const DefaultTTL = 24 * time.Hour

// New creates an empty session with a fresh uuid.
func New(ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidateID reports ErrInvalidID unless id is a uuid.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}
