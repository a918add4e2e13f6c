// File: internal/session/memory_test.go
package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_SetReplacesWholesale(t *testing.T) {
	repo := NewMemoryRepository(time.Hour, time.Minute, nil)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "c1", Session{Email: "a@acme.com", APIKey: "K1", APISecret: "S1", RoleProfile: "Admin"}))
	require.NoError(t, repo.Set(ctx, "c1", Session{Email: "b@globex.com", APIKey: "K2", APISecret: "S2"}))

	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "b@globex.com", got.Email)
	assert.Equal(t, "K2", got.APIKey)
	assert.Empty(t, got.RoleProfile)
}

func TestMemoryRepository_GetReturnsSnapshot(t *testing.T) {
	repo := NewMemoryRepository(time.Hour, time.Minute, nil)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "c1", Session{Email: "a@acme.com"}))
	first, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	first.Email = "mutated@acme.com"

	second, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "a@acme.com", second.Email)
}

func TestMemoryRepository_SessionExpiry(t *testing.T) {
	repo := NewMemoryRepository(time.Hour, time.Minute, nil)
	ctx := context.Background()

	base := time.Now()
	repo.now = func() time.Time { return base }
	require.NoError(t, repo.Set(ctx, "c1", Session{Email: "a@acme.com"}))

	repo.now = func() time.Time { return base.Add(2 * time.Hour) }
	_, err := repo.Get(ctx, "c1")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMemoryRepository_ClearHandoffIsIdempotent(t *testing.T) {
	repo := NewMemoryRepository(time.Hour, time.Minute, nil)
	ctx := context.Background()

	require.NoError(t, repo.PutHandoff(ctx, "c1", Handoff{Provider: "google", Token: "tok"}))
	require.NoError(t, repo.ClearHandoff(ctx, "c1"))
	require.NoError(t, repo.ClearHandoff(ctx, "c1"))
	require.NoError(t, repo.ClearHandoff(ctx, "never-staged"))

	_, err := repo.GetHandoff(ctx, "c1")
	assert.ErrorIs(t, err, ErrNoHandoff)
}

func TestMemoryRepository_HandoffExpiry(t *testing.T) {
	repo := NewMemoryRepository(time.Hour, time.Minute, nil)
	ctx := context.Background()

	base := time.Now()
	repo.now = func() time.Time { return base }
	require.NoError(t, repo.PutHandoff(ctx, "c1", Handoff{Provider: "google", Token: "tok"}))

	repo.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err := repo.GetHandoff(ctx, "c1")
	assert.ErrorIs(t, err, ErrNoHandoff)
}

func TestMemoryRepository_Sweep(t *testing.T) {
	repo := NewMemoryRepository(time.Hour, time.Minute, nil)
	ctx := context.Background()

	base := time.Now()
	repo.now = func() time.Time { return base }
	require.NoError(t, repo.Set(ctx, "stale", Session{Email: "old@acme.com"}))
	require.NoError(t, repo.PutHandoff(ctx, "stale", Handoff{Token: "tok"}))

	repo.now = func() time.Time { return base.Add(30 * time.Minute) }
	require.NoError(t, repo.Set(ctx, "fresh", Session{Email: "new@acme.com"}))

	repo.now = func() time.Time { return base.Add(90 * time.Minute) }
	sessions, handoffs, err := repo.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sessions)
	assert.Equal(t, 1, handoffs)

	_, err = repo.Get(ctx, "fresh")
	assert.NoError(t, err)
}

func TestMemoryRepository_PublishesEvents(t *testing.T) {
	bus := NewBus()
	events := make(chan Event, 4)
	bus.Subscribe(func(e Event) { events <- e })

	repo := NewMemoryRepository(time.Hour, time.Minute, bus)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "c1", Session{Email: "a@acme.com"}))
	require.NoError(t, repo.Clear(ctx, "c1"))
	// Clearing a key with no session publishes nothing.
	require.NoError(t, repo.Clear(ctx, "c1"))

	assert.Equal(t, Event{Key: "c1", Kind: EventSet}, <-events)
	assert.Equal(t, Event{Key: "c1", Kind: EventCleared}, <-events)
	assert.Empty(t, events)
}
