// File: internal/notification/service_test.go
package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEnqueueAndDrain(t *testing.T) {
	service := NewService(zap.NewNop())

	service.Enqueue("c1", ToastSuccess, "Logged in successfully.", 5*time.Second)
	service.Enqueue("c1", ToastError, "Something failed.", 5*time.Second)
	service.Enqueue("c2", ToastSuccess, "Other client.", 5*time.Second)

	toasts := service.Drain("c1")
	require.Len(t, toasts, 2)
	assert.Equal(t, ToastSuccess, toasts[0].Type)
	assert.Equal(t, "Logged in successfully.", toasts[0].Message)
	assert.Equal(t, ToastError, toasts[1].Type)

	// Drained toasts are gone; the other client's queue is untouched.
	assert.Empty(t, service.Drain("c1"))
	assert.Len(t, service.Drain("c2"), 1)
}

func TestDrain_SkipsExpired(t *testing.T) {
	service := NewService(zap.NewNop())
	base := time.Now()
	service.now = func() time.Time { return base }

	service.Enqueue("c1", ToastSuccess, "short lived", 3*time.Second)
	service.Enqueue("c1", ToastSuccess, "long lived", time.Minute)

	service.now = func() time.Time { return base.Add(10 * time.Second) }
	toasts := service.Drain("c1")
	require.Len(t, toasts, 1)
	assert.Equal(t, "long lived", toasts[0].Message)
}

func TestDiscard(t *testing.T) {
	service := NewService(zap.NewNop())

	service.Enqueue("c1", ToastSuccess, "stale", time.Minute)
	service.Enqueue("c2", ToastSuccess, "kept", time.Minute)

	service.Discard("c1")
	assert.Empty(t, service.Drain("c1"))
	assert.Len(t, service.Drain("c2"), 1)
}

func TestSweep(t *testing.T) {
	service := NewService(zap.NewNop())
	base := time.Now()
	service.now = func() time.Time { return base }

	service.Enqueue("c1", ToastSuccess, "expired", 3*time.Second)
	service.Enqueue("c2", ToastSuccess, "expired too", 3*time.Second)
	service.Enqueue("c2", ToastSuccess, "still fresh", time.Minute)

	service.now = func() time.Time { return base.Add(10 * time.Second) }
	assert.Equal(t, 2, service.Sweep())

	assert.Empty(t, service.Drain("c1"))
	assert.Len(t, service.Drain("c2"), 1)
}
