package session

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RoundTripAndExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "visitor-1", "tok", time.Hour))
	got, err := store.Load(ctx, "visitor-1")
	require.NoError(t, err)
	assert.Equal(t, "tok", got)

	now = now.Add(time.Hour)
	_, err = store.Load(ctx, "visitor-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_SweepDropsExpired(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "short", "a", time.Minute))
	require.NoError(t, store.Save(ctx, "long", "b", time.Hour))
	require.NoError(t, store.Save(ctx, "forever", "c", 0))
	now = now.Add(10 * time.Minute)

	assert.Equal(t, 1, store.Sweep())
	assert.Len(t, store.entries, 2)
	got, err := store.Load(ctx, "long")
	require.NoError(t, err)
	assert.Equal(t, "b", got)
	assert.Equal(t, 0, store.Sweep())
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "visitor-1", "tok", 0))
	require.NoError(t, store.Delete(ctx, "visitor-1"))

	_, err := store.Load(ctx, "visitor-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_UsesPrefixedKeyWithTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client, nil)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "visitor-1", "tok", 30*time.Minute))

	raw, err := mr.Get("sly_admin_auth:visitor-1")
	require.NoError(t, err)
	assert.Equal(t, "tok", raw)
	assert.Equal(t, 30*time.Minute, mr.TTL("sly_admin_auth:visitor-1"))

	got, err := store.Load(ctx, "visitor-1")
	require.NoError(t, err)
	assert.Equal(t, "tok", got)

	mr.FastForward(31 * time.Minute)
	_, err = store.Load(ctx, "visitor-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Delete(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client, nil)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "visitor-1", "tok", time.Minute))
	require.NoError(t, store.Delete(ctx, "visitor-1"))

	assert.False(t, mr.Exists("sly_admin_auth:visitor-1"))
	_, err := store.Load(ctx, "visitor-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_ConnectionFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client, nil)
	mr.Close()

	_, err := store.Load(context.Background(), "visitor-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
