package database

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const checkInterval = 5 * time.Second

// RedisHealthChecker 负责线程安全地维护Redis的可用性状态。
// 缓存与限流组件据此在Redis故障时快速降级，而不是在每次请求上等待超时。
type RedisHealthChecker struct {
	rdb     *redis.Client
	mu      sync.RWMutex
	healthy bool
}

// NewRedisHealthChecker 创建一个健康检查器，初始状态为可用。
func NewRedisHealthChecker(rdb *redis.Client) *RedisHealthChecker {
	return &RedisHealthChecker{rdb: rdb, healthy: true}
}

// Healthy 返回最近一次检查时Redis是否可用。
func (c *RedisHealthChecker) Healthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.healthy
}

// PerformCheck 执行一次健康检查并更新状态。
func (c *RedisHealthChecker) PerformCheck(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	err := c.rdb.Ping(pingCtx).Err()

	c.mu.Lock()
	c.healthy = err == nil
	c.mu.Unlock()
}

// Run 启动阻塞式的定期健康检查循环，直到ctx被取消。
// 应该在独立的Goroutine中调用。
func (c *RedisHealthChecker) Run(ctx context.Context) {
	timer := time.NewTimer(checkInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			c.PerformCheck(ctx)
			timer.Reset(checkInterval)
		}
	}
}
