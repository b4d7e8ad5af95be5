package cache

import (
	"context"
	"errors"
	"time"

	"github.com/SlpAus/polls-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
)

// ErrMiss 表示键不存在于缓存存储中。
var ErrMiss = errors.New("缓存未命中")

// ErrUnavailable 表示缓存存储当前不可用。
var ErrUnavailable = errors.New("缓存存储暂时不可用")

// Store 抽象了缓存所依赖的键值存储能力。
// 生产环境由Redis实现，测试中由内存实现替代。
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// RedisStore 是基于go-redis客户端的Store实现。
type RedisStore struct {
	rdb    *redis.Client
	health *database.RedisHealthChecker
}

// NewRedisStore 创建一个Redis缓存存储。health可以为nil，此时不做可用性预检。
func NewRedisStore(rdb *redis.Client, health *database.RedisHealthChecker) *RedisStore {
	return &RedisStore{rdb: rdb, health: health}
}

// Get 读取键值。键不存在时返回ErrMiss。
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.health != nil && !s.health.Healthy() {
		return nil, ErrUnavailable
	}
	val, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, err
	}
	return val, nil
}

// Set 写入键值并附带过期时间。
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.health != nil && !s.health.Healthy() {
		return ErrUnavailable
	}
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

// Del 删除一个或多个键。
func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	if s.health != nil && !s.health.Healthy() {
		return ErrUnavailable
	}
	return s.rdb.Del(ctx, keys...).Err()
}
