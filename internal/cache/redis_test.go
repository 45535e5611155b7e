package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "blog:", ttl), mr
}

func TestRedisStore_GetSet(t *testing.T) {
	ctx := context.Background()
	s, mr := setupRedis(t, 20*time.Second)

	_, ok, err := s.Get(ctx, "page:/")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "page:/", []byte("body")))
	assert.True(t, mr.Exists("blog:page:/"))
	assert.Equal(t, 20*time.Second, mr.TTL("blog:page:/"))

	v, ok, err := s.Get(ctx, "page:/")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("body"), v)
}

func TestRedisStore_Expires(t *testing.T) {
	ctx := context.Background()
	s, mr := setupRedis(t, 20*time.Second)
	require.NoError(t, s.Set(ctx, "page:/", []byte("body")))

	mr.FastForward(21 * time.Second)

	_, ok, err := s.Get(ctx, "page:/")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_ClearKeepsForeignKeys(t *testing.T) {
	ctx := context.Background()
	s, mr := setupRedis(t, time.Minute)
	for i := 0; i < 250; i++ {
		require.NoError(t, s.Set(ctx, fmt.Sprintf("page:/?page=%d", i), []byte("x")))
	}
	require.NoError(t, mr.Set("other:key", "keep"))

	require.NoError(t, s.Clear(ctx))

	keys := mr.Keys()
	assert.Equal(t, []string{"other:key"}, keys)
}

func TestRedisStore_GetError(t *testing.T) {
	ctx := context.Background()
	s, mr := setupRedis(t, time.Minute)
	mr.Close()

	_, ok, err := s.Get(ctx, "page:/")
	assert.Error(t, err)
	assert.False(t, ok)
}
