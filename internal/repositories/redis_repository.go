package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisRepository struct {
	rdb *redis.Client
}

func NewRedisRepository(rdb *redis.Client) *RedisRepository {
	return &RedisRepository{rdb: rdb}
}

func (r *RedisRepository) StoreSession(ctx context.Context, jti string, userID string, ttl time.Duration) error {
	key := "session:" + jti
	return r.rdb.Set(ctx, key, userID, ttl).Err()
}

func (r *RedisRepository) SessionExists(ctx context.Context, jti string) (bool, error) {
	key := "session:" + jti
	exists, err := r.rdb.Exists(ctx, key).Result()
	return exists == 1, err
}

func (r *RedisRepository) DeleteSession(ctx context.Context, jti string) error {
	key := "session:" + jti
	return r.rdb.Del(ctx, key).Err()
}

func (r *RedisRepository) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	key := "blacklist:" + jti
	exists, err := r.rdb.Exists(ctx, key).Result()
	return exists == 1, err
}

func (r *RedisRepository) Blacklist(ctx context.Context, jti string, ttl time.Duration) error {
	key := "blacklist:" + jti
	return r.rdb.Set(ctx, key, "true", ttl).Err()
}

// runLockTTL bounds how long a crashed run can keep its query locked.
const runLockTTL = 15 * time.Minute

// TryLock acquires the per-query execution lock via SETNX. Returns false when
// another run already holds it.
func (r *RedisRepository) TryLock(ctx context.Context, queryID uuid.UUID) (bool, error) {
	key := "runlock:" + queryID.String()
	return r.rdb.SetNX(ctx, key, "1", runLockTTL).Result()
}

func (r *RedisRepository) Unlock(ctx context.Context, queryID uuid.UUID) error {
	key := "runlock:" + queryID.String()
	return r.rdb.Del(ctx, key).Err()
}
