package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGuardRejectsInFlightDuplicate(t *testing.T) {
	g := NewMemoryGuard(time.Minute)
	ctx := context.Background()

	release, err := g.Acquire(ctx, "lead")
	require.NoError(t, err)

	_, err = g.Acquire(ctx, "lead")
	assert.ErrorIs(t, err, ErrDuplicateSubmission)

	other, err := g.Acquire(ctx, "other")
	require.NoError(t, err)
	other()

	release()
	release()

	again, err := g.Acquire(ctx, "lead")
	require.NoError(t, err)
	again()
}

func TestMemoryGuardExpires(t *testing.T) {
	g := NewMemoryGuard(time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }
	ctx := context.Background()

	stale, err := g.Acquire(ctx, "lead")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	fresh, err := g.Acquire(ctx, "lead")
	require.NoError(t, err)

	// the expired holder must not free the new lock
	stale()
	_, err = g.Acquire(ctx, "lead")
	assert.ErrorIs(t, err, ErrDuplicateSubmission)

	fresh()
	_, err = g.Acquire(ctx, "lead")
	assert.NoError(t, err)
}

func TestRedisGuard(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	g := NewRedisGuard(client, time.Minute)
	key := "test-" + uuid.NewString()

	release, err := g.Acquire(ctx, key)
	require.NoError(t, err)

	_, err = g.Acquire(ctx, key)
	assert.ErrorIs(t, err, ErrDuplicateSubmission)

	ttl, err := client.PTTL(ctx, g.prefix+key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	release()
	again, err := g.Acquire(ctx, key)
	require.NoError(t, err)
	again()
}
