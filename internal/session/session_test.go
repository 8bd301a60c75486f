package session

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

func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()
	user := uuid.New()
	hash := "hash-" + uuid.NewString()

	require.NoError(t, s.SaveRefreshToken(ctx, hash, user, time.Minute))
	got, ok, err := s.ConsumeRefreshToken(ctx, hash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, user, got)

	_, ok, err = s.ConsumeRefreshToken(ctx, hash)
	require.NoError(t, err)
	assert.False(t, ok, "refresh tokens are single use")

	require.NoError(t, s.SaveRefreshToken(ctx, hash, user, time.Minute))
	require.NoError(t, s.RevokeRefreshToken(ctx, hash))
	_, ok, err = s.ConsumeRefreshToken(ctx, hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.CurrentList(ctx, user)
	require.NoError(t, err)
	assert.False(t, ok)

	list := uuid.New()
	require.NoError(t, s.SetCurrentList(ctx, user, list))
	current, ok, err := s.CurrentList(ctx, user)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, list, current)

	_, ok, err = s.CurrentList(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.ClearCurrentList(ctx, user))
	_, ok, err = s.CurrentList(ctx, user)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreExpiresRefreshTokens(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.SaveRefreshToken(ctx, "h", uuid.New(), time.Hour))
	now = now.Add(2 * time.Hour)

	_, ok, err := s.ConsumeRefreshToken(ctx, "h")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	s := NewRedisStore(rdb)
	require.NoError(t, s.Ping(context.Background()))

	exerciseStore(t, s)
}
