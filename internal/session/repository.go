// File: internal/session/repository.go
package session

import (
	"context"
	"errors"
)

var (
	// ErrNoSession is returned by Get when no session exists for the key.
	ErrNoSession = errors.New("no active session")
	// ErrNoHandoff is returned by GetHandoff when no credential is staged.
	ErrNoHandoff = errors.New("no staged credential")
)

// Repository stores sessions and transient credential handoffs, keyed by the
// opaque client key each browser carries.
type Repository interface {
	// Get returns a snapshot of the session for key, or ErrNoSession.
	Get(ctx context.Context, key string) (*Session, error)
	// Set replaces any existing session for key wholesale.
	Set(ctx context.Context, key string, s Session) error
	// Clear removes the session for key. Clearing an absent key is a no-op.
	Clear(ctx context.Context, key string) error

	// PutHandoff stages a provider credential for key.
	PutHandoff(ctx context.Context, key string, h Handoff) error
	// GetHandoff returns the staged credential for key, or ErrNoHandoff.
	GetHandoff(ctx context.Context, key string) (*Handoff, error)
	// ClearHandoff removes the staged credential. Idempotent: clearing an
	// absent entry succeeds.
	ClearHandoff(ctx context.Context, key string) error
}

// Sweeper is implemented by backends that need periodic expiry of stale
// entries. The Redis backend relies on key TTLs instead.
type Sweeper interface {
	Sweep(ctx context.Context) (sessions int, handoffs int, err error)
}
