// File: internal/session/memory.go
package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

type handoffEntry struct {
	handoff   Handoff
	expiresAt time.Time
}

// MemoryRepository is the default in-process session store. It is also the
// backend used by the test suite.
type MemoryRepository struct {
	mu         sync.RWMutex
	sessions   map[string]memoryEntry
	handoffs   map[string]handoffEntry
	sessionTTL time.Duration
	handoffTTL time.Duration
	bus        *Bus
	now        func() time.Time
}

var _ Repository = (*MemoryRepository)(nil)
var _ Sweeper = (*MemoryRepository)(nil)

// NewMemoryRepository creates an in-memory session repository. The bus may be
// nil when session-changed notifications are not needed (tests).
func NewMemoryRepository(sessionTTL, handoffTTL time.Duration, bus *Bus) *MemoryRepository {
	return &MemoryRepository{
		sessions:   make(map[string]memoryEntry),
		handoffs:   make(map[string]handoffEntry),
		sessionTTL: sessionTTL,
		handoffTTL: handoffTTL,
		bus:        bus,
		now:        time.Now,
	}
}

func (r *MemoryRepository) Get(ctx context.Context, key string) (*Session, error) {
	r.mu.RLock()
	entry, ok := r.sessions[key]
	r.mu.RUnlock()
	if !ok || r.now().After(entry.expiresAt) {
		return nil, ErrNoSession
	}
	snapshot := entry.session
	return &snapshot, nil
}

func (r *MemoryRepository) Set(ctx context.Context, key string, s Session) error {
	r.mu.Lock()
	r.sessions[key] = memoryEntry{session: s, expiresAt: r.now().Add(r.sessionTTL)}
	r.mu.Unlock()
	r.bus.Publish(Event{Key: key, Kind: EventSet})
	return nil
}

func (r *MemoryRepository) Clear(ctx context.Context, key string) error {
	r.mu.Lock()
	_, existed := r.sessions[key]
	delete(r.sessions, key)
	r.mu.Unlock()
	if existed {
		r.bus.Publish(Event{Key: key, Kind: EventCleared})
	}
	return nil
}

func (r *MemoryRepository) PutHandoff(ctx context.Context, key string, h Handoff) error {
	r.mu.Lock()
	r.handoffs[key] = handoffEntry{handoff: h, expiresAt: r.now().Add(r.handoffTTL)}
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) GetHandoff(ctx context.Context, key string) (*Handoff, error) {
	r.mu.RLock()
	entry, ok := r.handoffs[key]
	r.mu.RUnlock()
	if !ok || r.now().After(entry.expiresAt) {
		return nil, ErrNoHandoff
	}
	snapshot := entry.handoff
	return &snapshot, nil
}

func (r *MemoryRepository) ClearHandoff(ctx context.Context, key string) error {
	r.mu.Lock()
	delete(r.handoffs, key)
	r.mu.Unlock()
	return nil
}

// Sweep removes expired sessions and handoffs. Called by the cleanup job.
func (r *MemoryRepository) Sweep(ctx context.Context) (int, int, error) {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions := 0
	for key, entry := range r.sessions {
		if now.After(entry.expiresAt) {
			delete(r.sessions, key)
			sessions++
		}
	}
	handoffs := 0
	for key, entry := range r.handoffs {
		if now.After(entry.expiresAt) {
			delete(r.handoffs, key)
			handoffs++
		}
	}
	return sessions, handoffs, nil
}
