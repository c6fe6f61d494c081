package repositories

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

// setupRedis connects to the instance named by TEST_REDIS_ADDR and skips the
// test when none is available.
func setupRedis(t *testing.T) *RedisRepository {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { rdb.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, rdb.Ping(ctx).Err())

	return NewRedisRepository(rdb)
}

func TestRedisSessions(t *testing.T) {
	repo := setupRedis(t)
	ctx := context.Background()
	jti := uuid.NewString()

	exists, err := repo.SessionExists(ctx, jti)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.StoreSession(ctx, jti, uuid.NewString(), time.Minute))

	exists, err = repo.SessionExists(ctx, jti)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.DeleteSession(ctx, jti))

	exists, err = repo.SessionExists(ctx, jti)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisBlacklist(t *testing.T) {
	repo := setupRedis(t)
	ctx := context.Background()
	jti := uuid.NewString()

	revoked, err := repo.IsBlacklisted(ctx, jti)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, repo.Blacklist(ctx, jti, time.Minute))

	revoked, err = repo.IsBlacklisted(ctx, jti)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRedisRunLock(t *testing.T) {
	repo := setupRedis(t)
	ctx := context.Background()
	queryID := uuid.New()

	acquired, err := repo.TryLock(ctx, queryID)
	require.NoError(t, err)
	assert.True(t, acquired)

	acquired, err = repo.TryLock(ctx, queryID)
	require.NoError(t, err)
	assert.False(t, acquired)

	require.NoError(t, repo.Unlock(ctx, queryID))

	acquired, err = repo.TryLock(ctx, queryID)
	require.NoError(t, err)
	assert.True(t, acquired)
	require.NoError(t, repo.Unlock(ctx, queryID))
}
