package cache_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SlpAus/polls-backend/internal/platform/cache"
	"github.com/SlpAus/polls-backend/internal/platform/testutil"
)

// failingStore 模拟缓存存储整体不可用。
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func (failingStore) Del(context.Context, ...string) error {
	return errors.New("connection refused")
}

type payload struct {
	Value string `json:"value"`
	Seq   int    `json:"seq"`
}

// TestReadThroughHit 验证读穿透语义：
// 未命中时计算并回填，TTL内的后续读取直接返回缓存负载，且逐字节相同。
func TestReadThroughHit(t *testing.T) {
	c := cache.New(testutil.NewMemoryKV())
	ctx := context.Background()

	computeCalls := 0
	compute := func() (interface{}, error) {
		computeCalls++
		return payload{Value: "hello", Seq: computeCalls}, nil
	}

	first, err := c.GetOrCompute(ctx, "k", time.Minute, compute)
	if err != nil {
		t.Fatalf("首次读取失败: %v", err)
	}
	second, err := c.GetOrCompute(ctx, "k", time.Minute, compute)
	if err != nil {
		t.Fatalf("二次读取失败: %v", err)
	}

	if computeCalls != 1 {
		t.Errorf("命中后不应再次计算，计算次数: %d", computeCalls)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("TTL内两次读取的负载应逐字节相同: %s vs %s", first, second)
	}
}

// TestExpiryRecomputes 验证条目到期后重新计算。
func TestExpiryRecomputes(t *testing.T) {
	c := cache.New(testutil.NewMemoryKV())
	ctx := context.Background()

	computeCalls := 0
	compute := func() (interface{}, error) {
		computeCalls++
		return payload{Value: "hello", Seq: computeCalls}, nil
	}

	if _, err := c.GetOrCompute(ctx, "k", 20*time.Millisecond, compute); err != nil {
		t.Fatalf("首次读取失败: %v", err)
	}
	time.Sleep(40 * time.Millisecond)
	if _, err := c.GetOrCompute(ctx, "k", 20*time.Millisecond, compute); err != nil {
		t.Fatalf("过期后读取失败: %v", err)
	}

	if computeCalls != 2 {
		t.Errorf("到期后应重新计算，计算次数: %d", computeCalls)
	}
}

// TestInvalidateForcesRecompute 验证显式失效后下一次读取重新计算。
func TestInvalidateForcesRecompute(t *testing.T) {
	c := cache.New(testutil.NewMemoryKV())
	ctx := context.Background()

	computeCalls := 0
	compute := func() (interface{}, error) {
		computeCalls++
		return payload{Value: "hello", Seq: computeCalls}, nil
	}

	if _, err := c.GetOrCompute(ctx, "k", time.Minute, compute); err != nil {
		t.Fatalf("首次读取失败: %v", err)
	}
	c.Invalidate(ctx, "k")
	if _, err := c.GetOrCompute(ctx, "k", time.Minute, compute); err != nil {
		t.Fatalf("失效后读取失败: %v", err)
	}

	if computeCalls != 2 {
		t.Errorf("失效后应重新计算，计算次数: %d", computeCalls)
	}
}

// TestComputeErrorPropagates 验证计算失败时错误向上传播且不回填缓存。
func TestComputeErrorPropagates(t *testing.T) {
	store := testutil.NewMemoryKV()
	c := cache.New(store)
	ctx := context.Background()

	wantErr := errors.New("poll not found")
	_, err := c.GetOrCompute(ctx, "k", time.Minute, func() (interface{}, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("期望计算错误传播，实际: %v", err)
	}
	if store.Contains("k") {
		t.Error("计算失败时不应回填缓存")
	}
}

// TestStoreFailureDegrades 验证缓存存储不可用时降级为直接计算，
// 请求本身绝不因此失败。
func TestStoreFailureDegrades(t *testing.T) {
	c := cache.New(failingStore{})
	ctx := context.Background()

	got, err := c.GetOrCompute(ctx, "k", time.Minute, func() (interface{}, error) {
		return payload{Value: "direct", Seq: 1}, nil
	})
	if err != nil {
		t.Fatalf("存储故障时应降级为直接计算: %v", err)
	}
	if !bytes.Contains(got, []byte("direct")) {
		t.Errorf("降级计算的负载不正确: %s", got)
	}

	// 失效操作同样只记录，不失败
	c.Invalidate(ctx, "k")
}
