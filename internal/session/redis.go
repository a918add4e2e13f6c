// File: internal/session/redis.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"crm_gateway_backend/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "crm:session:"
	handoffKeyPrefix = "crm:handoff:"
)

// RedisRepository stores sessions in Redis so the gateway can run with more
// than one replica. Entries expire via key TTL; no sweep job is needed.
type RedisRepository struct {
	client     *redis.Client
	sessionTTL time.Duration
	handoffTTL time.Duration
	bus        *Bus
}

var _ Repository = (*RedisRepository)(nil)

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// NewRedisRepository creates a Redis-backed session repository.
func NewRedisRepository(client *redis.Client, sessionTTL, handoffTTL time.Duration, bus *Bus) *RedisRepository {
	return &RedisRepository{client: client, sessionTTL: sessionTTL, handoffTTL: handoffTTL, bus: bus}
}

func (r *RedisRepository) Get(ctx context.Context, key string) (*Session, error) {
	raw, err := r.client.Get(ctx, sessionKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (r *RedisRepository) Set(ctx context.Context, key string, s Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKeyPrefix+key, raw, r.sessionTTL).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	r.bus.Publish(Event{Key: key, Kind: EventSet})
	return nil
}

func (r *RedisRepository) Clear(ctx context.Context, key string) error {
	deleted, err := r.client.Del(ctx, sessionKeyPrefix+key).Result()
	if err != nil {
		return fmt.Errorf("redis clear session: %w", err)
	}
	if deleted > 0 {
		r.bus.Publish(Event{Key: key, Kind: EventCleared})
	}
	return nil
}

func (r *RedisRepository) PutHandoff(ctx context.Context, key string, h Handoff) error {
	raw, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("encode handoff: %w", err)
	}
	if err := r.client.Set(ctx, handoffKeyPrefix+key, raw, r.handoffTTL).Err(); err != nil {
		return fmt.Errorf("redis put handoff: %w", err)
	}
	return nil
}

func (r *RedisRepository) GetHandoff(ctx context.Context, key string) (*Handoff, error) {
	raw, err := r.client.Get(ctx, handoffKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoHandoff
		}
		return nil, fmt.Errorf("redis get handoff: %w", err)
	}
	var h Handoff
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("decode handoff: %w", err)
	}
	return &h, nil
}

func (r *RedisRepository) ClearHandoff(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, handoffKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis clear handoff: %w", err)
	}
	return nil
}
