package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrLimitExceeded 表示调用方在当前窗口内的配额已用尽，应稍后重试。
var ErrLimitExceeded = errors.New("请求过于频繁，请稍后再试")

// ErrUnavailable 表示计数存储不可用，无法完成准入判断。
var ErrUnavailable = errors.New("服务暂时不可用，无法获取请求频率")

// Rule 定义了一个动作的固定窗口限制：窗口内最多Limit次。
type Rule struct {
	Limit  int64
	Window time.Duration
}

// CounterStore 抽象了限流器依赖的原子计数能力。
// Incr必须对同一键的并发调用是原子的——这是计数精确性的唯一保证来源。
type CounterStore interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// Limiter 是按(动作, 主体)分键的固定窗口限流器。
// 窗口从该键的第一次调用开始计时，到期后整体重置；
// 被拒绝的调用不回滚计数，窗口边界处的突发是已知且接受的特性。
type Limiter struct {
	store CounterStore
}

// NewLimiter 创建一个基于给定计数存储的限流器。
func NewLimiter(store CounterStore) *Limiter {
	return &Limiter{store: store}
}

// Allow 对一次(action, principalID)调用做准入判断。
// 每次调用原子地递增计数；首次递增时为键附加窗口时长的过期时间。
// 递增后的计数超过规则上限时返回ErrLimitExceeded。
func (l *Limiter) Allow(ctx context.Context, action, principalID string, rule Rule) error {
	key := Key(action, principalID)

	count, err := l.store.Incr(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// 从不存在变为1，说明这是窗口内的第一次调用，设置窗口过期
	if count == 1 {
		if err := l.store.Expire(ctx, key, rule.Window); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	if count > rule.Limit {
		return ErrLimitExceeded
	}
	return nil
}

// Key 返回限流计数器在存储中的键名。
func Key(action, principalID string) string {
	return fmt.Sprintf("rl:%s:%s", action, principalID)
}
