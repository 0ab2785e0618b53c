// Package session persists viewer sessions.
//
// A viewer session is the serializable side of a [view.GraphSession]: the
// hash of the document being viewed and the snapshot (operation log and
// selection) needed to rebuild the view by replay. Sessions expire after a
// TTL that is refreshed on every change.
//
// Backends:
//   - [MemoryStore]: in-process, used by default and in tests
//   - [FileStore]: JSON files, used by the CLI (~/.config/netdraw/sessions/)
//   - [RedisStore]: shared by server replicas
//
// # Usage
//
//	sess := session.New(gs.Snapshot(), session.DefaultTTL)
//	if err := store.Set(ctx, sess); err != nil {
//	    return err
//	}
//
//	sess, err := store.Get(ctx, id)
//	if err != nil {
//	    return err
//	}
//	if sess == nil {
//	    // Not found or expired
//	}
//	gs, err := view.Restore(g, sess.Snapshot)
//
// [view.GraphSession]: github.com/matzehuels/netdraw/pkg/view.GraphSession
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/netdraw/pkg/view"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned by helpers that require an existing session.
	ErrNotFound = errors.New("session not found")

	// ErrInvalidID is returned for ids that are not UUIDs.
	ErrInvalidID = errors.New("invalid session id")
)

// DefaultTTL is the default session lifetime.
const DefaultTTL = 24 * time.Hour

// Session is a persisted viewer session.
type Session struct {
	ID           string        `json:"id"`
	DocumentHash string        `json:"document_hash"`
	Snapshot     view.Snapshot `json:"snapshot"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	ExpiresAt    time.Time     `json:"expires_at"`
}

// New creates a session with a fresh random id.
func New(snap view.Snapshot, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:           uuid.NewString(),
		DocumentHash: snap.DocumentHash,
		Snapshot:     snap,
		CreatedAt:    now,
		UpdatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}
}

// Update replaces the snapshot and extends the expiry by ttl from now.
func (s *Session) Update(snap view.Snapshot, ttl time.Duration) {
	now := time.Now()
	s.Snapshot = snap
	s.DocumentHash = snap.DocumentHash
	s.UpdatedAt = now
	s.ExpiresAt = now.Add(ttl)
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// ValidateID reports whether id can name a session.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session, replacing any previous version.
	Set(ctx context.Context, sess *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions. It may be a no-op for backends
	// with native expiry.
	Cleanup(ctx context.Context) error

	Close() error
}

// MustGet is Get that reports a missing session as [ErrNotFound].
func MustGet(ctx context.Context, st Store, id string) (*Session, error) {
	sess, err := st.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNotFound
	}
	return sess, nil
}
