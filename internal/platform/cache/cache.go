package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Cache 提供以整个响应为粒度的读穿透缓存。
// 命中时原样返回缓存的字节，未命中时调用计算函数并以给定TTL回填。
// 缓存存储只是建议性的：它的任何故障都会降级为直接计算，绝不让请求失败。
type Cache struct {
	store Store
}

// New 创建一个基于给定存储的缓存层。
func New(store Store) *Cache {
	return &Cache{store: store}
}

// GetOrCompute 实现读穿透语义。
// 命中时不触碰底层数据库，直接返回缓存负载；
// 未命中时调用compute，将结果序列化为JSON后以ttl写入存储，再返回序列化结果。
// 同一TTL窗口内的两次读取因此得到逐字节相同的负载。
func (c *Cache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func() (interface{}, error)) ([]byte, error) {
	cached, err := c.store.Get(ctx, key)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrMiss) {
		// 存储故障：降级为直接计算，不回填
		fmt.Printf("缓存读取失败，降级为直接计算 (key=%s): %v\n", key, err)
		return c.computeOnly(compute)
	}

	value, err := compute()
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("序列化缓存负载失败: %w", err)
	}

	if err := c.store.Set(ctx, key, payload, ttl); err != nil {
		// 回填失败不影响本次响应
		fmt.Printf("缓存回填失败 (key=%s): %v\n", key, err)
	}
	return payload, nil
}

// Invalidate 显式删除一个或多个缓存键。
// 删除失败时仅记录日志：此时条目仍会在TTL内自然过期。
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.store.Del(ctx, keys...); err != nil {
		fmt.Printf("缓存失效失败 (keys=%v): %v\n", keys, err)
	}
}

func (c *Cache) computeOnly(compute func() (interface{}, error)) ([]byte, error) {
	value, err := compute()
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("序列化缓存负载失败: %w", err)
	}
	return payload, nil
}
