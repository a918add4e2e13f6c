// File: internal/session/events.go
package session

import "sync"

// EventKind distinguishes session writes from session clears.
type EventKind string

const (
	EventSet     EventKind = "set"
	EventCleared EventKind = "cleared"
)

// Event is published whenever a session is replaced or cleared. It stands in
// for the SPA's old "reload the whole page after login" behavior: interested
// components subscribe instead of re-reading ambient state.
type Event struct {
	Key  string
	Kind EventKind
}

// Bus is a small in-process fan-out for session events.
type Bus struct {
	mu          sync.RWMutex
	subscribers []func(Event)
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a callback invoked on every session event. Callbacks
// must not block; they run on the publisher's goroutine.
func (b *Bus) Subscribe(fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, fn)
}

// Publish delivers the event to all subscribers. Safe on a nil bus.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	subs := make([]func(Event), len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(e)
	}
}
