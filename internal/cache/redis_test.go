package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisStore on it
func setupTestRedis(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, ttl), mr
}

func TestRedisStore_Get_Success(t *testing.T) {
	store, mr := setupTestRedis(t, time.Hour)

	require.NoError(t, mr.Set(redisKey("sess1"), `{"items":[]}`))

	data, err := store.Get(context.Background(), "sess1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[]}`, string(data))
}

func TestRedisStore_Get_Miss(t *testing.T) {
	store, _ := setupTestRedis(t, time.Hour)

	data, err := store.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, data)
}

func TestRedisStore_Put_SetsTTL(t *testing.T) {
	store, mr := setupTestRedis(t, 2*time.Hour)

	require.NoError(t, store.Put(context.Background(), "sess2", []byte(`{"items":[]}`)))

	stored, err := mr.Get(redisKey("sess2"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[]}`, stored)
	assert.Equal(t, 2*time.Hour, mr.TTL(redisKey("sess2")))
}

func TestRedisStore_Delete(t *testing.T) {
	store, mr := setupTestRedis(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "sess3", []byte("x")))
	assert.True(t, mr.Exists(redisKey("sess3")))

	require.NoError(t, store.Delete(ctx, "sess3"))
	assert.False(t, mr.Exists(redisKey("sess3")))

	// Deleting non-existent key should not error
	assert.NoError(t, store.Delete(ctx, "nonexistent"))
}

func TestRedisStore_ServerDown(t *testing.T) {
	store, mr := setupTestRedis(t, time.Hour)
	mr.Close()

	_, err := store.Get(context.Background(), "sess")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
	assert.ErrorContains(t, err, "redis get failed")
}

func TestRedisKey_Format(t *testing.T) {
	assert.Equal(t, "cart:test123", redisKey("test123"))
}
