// Package cache holds short-lived keys such as resend cooldowns. Redis is used
// when configured; otherwise, or when Redis is unreachable, keys live in
// process memory.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/librescript/backend/internal/config"
)

type Store interface {
	// TrySet stores key for ttl unless it already exists. It reports whether
	// the key was set.
	TrySet(ctx context.Context, key string, ttl time.Duration) bool
	Close() error
}

// New returns a Redis backed store when REDIS_ADDR is set, else a memory store.
func New(cfg config.Config, log *zap.Logger) Store {
	mem := NewMemory()
	if cfg.RedisAddr == "" {
		log.Info("redis not configured, using in-memory cache")
		return mem
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis ping failed, falling back to memory on errors", zap.Error(err))
	}
	return &Redis{client: client, fallback: mem, log: log}
}

type Redis struct {
	client   *redis.Client
	fallback *Memory
	log      *zap.Logger
}

func NewRedis(client *redis.Client, log *zap.Logger) *Redis {
	return &Redis{client: client, fallback: NewMemory(), log: log}
}

func (r *Redis) TrySet(ctx context.Context, key string, ttl time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	ok, err := r.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		r.log.Warn("redis setnx failed", zap.String("key", key), zap.Error(err))
		return r.fallback.TrySet(ctx, key, ttl)
	}
	return ok
}

func (r *Redis) Close() error {
	return r.client.Close()
}

type Memory struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: map[string]time.Time{}, now: time.Now}
}

func (m *Memory) TrySet(_ context.Context, key string, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, exp := range m.entries {
		if !now.Before(exp) {
			delete(m.entries, k)
		}
	}
	if _, ok := m.entries[key]; ok {
		return false
	}
	m.entries[key] = now.Add(ttl)
	return true
}

func (m *Memory) Close() error { return nil }
