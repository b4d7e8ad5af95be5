package ratelimit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SlpAus/polls-backend/internal/platform/ratelimit"
	"github.com/SlpAus/polls-backend/internal/platform/testutil"
)

// failingCounterStore 模拟计数存储整体不可用。
type failingCounterStore struct{}

func (failingCounterStore) Incr(context.Context, string) (int64, error) {
	return 0, errors.New("connection refused")
}

func (failingCounterStore) Expire(context.Context, string, time.Duration) error {
	return errors.New("connection refused")
}

// TestAllowWithinLimit 验证窗口内不超过上限的调用全部放行，
// 第limit+1次开始被拒绝，且被拒绝的调用不回滚计数。
func TestAllowWithinLimit(t *testing.T) {
	limiter := ratelimit.NewLimiter(testutil.NewMemoryCounters())
	rule := ratelimit.Rule{Limit: 3, Window: time.Minute}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := limiter.Allow(ctx, "vote", "user-a", rule); err != nil {
			t.Fatalf("第%d次调用应该被放行: %v", i+1, err)
		}
	}

	if err := limiter.Allow(ctx, "vote", "user-a", rule); !errors.Is(err, ratelimit.ErrLimitExceeded) {
		t.Fatalf("第4次调用应该被拒绝，实际: %v", err)
	}
	// 被拒绝的调用依然计入计数
	if err := limiter.Allow(ctx, "vote", "user-a", rule); !errors.Is(err, ratelimit.ErrLimitExceeded) {
		t.Fatalf("第5次调用应该仍被拒绝，实际: %v", err)
	}
}

// TestWindowResetsAfterExpiry 验证窗口从第一次调用开始计时，
// 到期后整体重置，新窗口内的调用重新被放行。
func TestWindowResetsAfterExpiry(t *testing.T) {
	limiter := ratelimit.NewLimiter(testutil.NewMemoryCounters())
	rule := ratelimit.Rule{Limit: 1, Window: 40 * time.Millisecond}
	ctx := context.Background()

	if err := limiter.Allow(ctx, "vote", "user-a", rule); err != nil {
		t.Fatalf("窗口内第一次调用应该被放行: %v", err)
	}
	if err := limiter.Allow(ctx, "vote", "user-a", rule); !errors.Is(err, ratelimit.ErrLimitExceeded) {
		t.Fatalf("窗口内第二次调用应该被拒绝，实际: %v", err)
	}

	time.Sleep(60 * time.Millisecond)

	if err := limiter.Allow(ctx, "vote", "user-a", rule); err != nil {
		t.Fatalf("窗口过期后的调用应该被放行: %v", err)
	}
}

// TestKeysIndependent 验证计数器按(动作, 主体)分键：
// 一个用户的配额耗尽不影响其他用户，也不影响同一用户的其他动作。
func TestKeysIndependent(t *testing.T) {
	limiter := ratelimit.NewLimiter(testutil.NewMemoryCounters())
	rule := ratelimit.Rule{Limit: 1, Window: time.Minute}
	ctx := context.Background()

	if err := limiter.Allow(ctx, "vote", "user-a", rule); err != nil {
		t.Fatalf("user-a的第一次调用应该被放行: %v", err)
	}
	if err := limiter.Allow(ctx, "vote", "user-a", rule); !errors.Is(err, ratelimit.ErrLimitExceeded) {
		t.Fatalf("user-a的第二次调用应该被拒绝，实际: %v", err)
	}

	if err := limiter.Allow(ctx, "vote", "user-b", rule); err != nil {
		t.Errorf("user-b不应受user-a的配额影响: %v", err)
	}
	if err := limiter.Allow(ctx, "create_poll", "user-a", rule); err != nil {
		t.Errorf("同一用户的其他动作不应受影响: %v", err)
	}
}

// TestStoreUnavailable 验证计数存储不可用时返回ErrUnavailable而不是放行。
func TestStoreUnavailable(t *testing.T) {
	limiter := ratelimit.NewLimiter(failingCounterStore{})
	rule := ratelimit.Rule{Limit: 1, Window: time.Minute}

	err := limiter.Allow(context.Background(), "vote", "user-a", rule)
	if !errors.Is(err, ratelimit.ErrUnavailable) {
		t.Fatalf("期望ErrUnavailable，实际: %v", err)
	}
}
