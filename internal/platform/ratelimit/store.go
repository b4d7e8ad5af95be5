package ratelimit

import (
	"context"
	"time"

	"github.com/SlpAus/polls-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
)

// RedisCounterStore 是基于Redis INCR/EXPIRE的CounterStore实现。
// 原子性由Redis的INCR命令在服务端保证，而不是由调用方。
type RedisCounterStore struct {
	rdb    *redis.Client
	health *database.RedisHealthChecker
}

// NewRedisCounterStore 创建一个Redis计数存储。health可以为nil。
func NewRedisCounterStore(rdb *redis.Client, health *database.RedisHealthChecker) *RedisCounterStore {
	return &RedisCounterStore{rdb: rdb, health: health}
}

// Incr 原子地递增键的计数并返回新值。
func (s *RedisCounterStore) Incr(ctx context.Context, key string) (int64, error) {
	if s.health != nil && !s.health.Healthy() {
		return 0, ErrUnavailable
	}
	return s.rdb.Incr(ctx, key).Result()
}

// Expire 为键附加过期时间。
func (s *RedisCounterStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if s.health != nil && !s.health.Healthy() {
		return ErrUnavailable
	}
	return s.rdb.Expire(ctx, key, ttl).Err()
}
