package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/librescript/backend/internal/config"
)

func TestMemoryTrySet(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 25, 8, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	assert.True(t, m.TrySet(ctx, "cooldown:1", time.Minute))
	assert.False(t, m.TrySet(ctx, "cooldown:1", time.Minute))
	assert.True(t, m.TrySet(ctx, "cooldown:2", time.Minute))

	now = now.Add(time.Minute)
	assert.True(t, m.TrySet(ctx, "cooldown:1", time.Minute))
}

func TestNewWithoutRedisUsesMemory(t *testing.T) {
	store := New(config.Config{}, zap.NewNop())
	_, ok := store.(*Memory)
	assert.True(t, ok)
}

func TestRedisFallsBackToMemory(t *testing.T) {
	// Nothing listens on this port; every command fails fast.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	r := NewRedis(client, zap.NewNop())
	defer r.Close()

	ctx := context.Background()
	assert.True(t, r.TrySet(ctx, "k", time.Minute))
	assert.False(t, r.TrySet(ctx, "k", time.Minute))
}
