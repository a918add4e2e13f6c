// File: internal/notification/service.go
package notification

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service queues toasts per client key.
type Service struct {
	mu      sync.Mutex
	pending map[string][]Toast
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a toast queue.
func NewService(logger *zap.Logger) *Service {
	return &Service{
		pending: make(map[string][]Toast),
		logger:  logger.Named("NotificationService"),
		now:     time.Now,
	}
}

// Enqueue queues a toast for the client. ttl bounds how long an undelivered
// toast stays retrievable.
func (s *Service) Enqueue(key string, toastType ToastType, message string, ttl time.Duration) Toast {
	toast := Toast{
		ID:        uuid.New(),
		Type:      toastType,
		Message:   message,
		CreatedAt: s.now(),
		ExpiresAt: s.now().Add(ttl),
	}
	s.mu.Lock()
	s.pending[key] = append(s.pending[key], toast)
	s.mu.Unlock()
	return toast
}

// Drain returns and removes all pending, unexpired toasts for the client.
func (s *Service) Drain(key string) []Toast {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	queued := s.pending[key]
	delete(s.pending, key)

	toasts := make([]Toast, 0, len(queued))
	for _, t := range queued {
		if now.Before(t.ExpiresAt) {
			toasts = append(toasts, t)
		}
	}
	return toasts
}

// Discard drops all pending toasts for the client without delivering them.
// Invoked when the client's session is cleared so a fresh login does not
// receive leftovers from the previous account.
func (s *Service) Discard(key string) {
	s.mu.Lock()
	delete(s.pending, key)
	s.mu.Unlock()
}

// Sweep drops expired toasts. Called by the cleanup job.
func (s *Service) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, queued := range s.pending {
		kept := queued[:0]
		for _, t := range queued {
			if now.Before(t.ExpiresAt) {
				kept = append(kept, t)
			} else {
				removed++
			}
		}
		if len(kept) == 0 {
			delete(s.pending, key)
		} else {
			s.pending[key] = kept
		}
	}
	return removed
}
