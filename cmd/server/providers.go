// File: cmd/server/providers.go
package main

import (
	"context"
	"fmt"
	"log"

	"crm_gateway_backend/internal/config"
	"crm_gateway_backend/internal/notification"
	"crm_gateway_backend/internal/session"

	"go.uber.org/zap"
)

// provideSessionBus creates the in-process session event bus.
func provideSessionBus() *session.Bus {
	return session.NewBus()
}

// provideSessionRepository selects the session backend from config.
func provideSessionRepository(cfg *config.Config, bus *session.Bus, logger *zap.Logger) (session.Repository, error) {
	switch cfg.SessionBackend {
	case "redis":
		client, err := session.NewRedisClient(context.Background(), cfg)
		if err != nil {
			return nil, fmt.Errorf("connect session redis: %w", err)
		}
		logger.Info("Using Redis session backend", zap.String("addr", cfg.RedisAddr))
		return session.NewRedisRepository(client, cfg.SessionTTL, cfg.HandoffTTL, bus), nil
	case "memory", "":
		logger.Info("Using in-memory session backend")
		return session.NewMemoryRepository(cfg.SessionTTL, cfg.HandoffTTL, bus), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}

// provideNotificationService creates the toast queue and subscribes it to
// session events: a cleared session drops the client's undelivered toasts.
func provideNotificationService(bus *session.Bus, logger *zap.Logger) *notification.Service {
	toasts := notification.NewService(logger)
	bus.Subscribe(func(e session.Event) {
		if e.Kind == session.EventCleared {
			toasts.Discard(e.Key)
		}
	})
	return toasts
}

// provideCleanup flushes the logger on shutdown.
func provideCleanup(logger *zap.Logger) func() {
	return func() {
		logger.Info("Executing cleanup tasks...")
		if err := logger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
		log.Println("Cleanup finished.")
	}
}
