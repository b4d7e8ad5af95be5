package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/SlpAus/polls-backend/internal/platform/cache"
	"github.com/SlpAus/polls-backend/internal/platform/config"
	"github.com/SlpAus/polls-backend/internal/poll"
	"github.com/SlpAus/polls-backend/internal/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB 创建一个基于临时文件的SQLite测试数据库并迁移全部表结构。
// 配置与生产环境保持一致：打开外键约束与TranslateError。
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	dsn := fmt.Sprintf("file:%s?_fk=1&_busy_timeout=5000", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}

	if err := poll.SetupDatabase(db); err != nil {
		t.Fatalf("poll模块迁移失败: %v", err)
	}
	if err := user.SetupDatabase(db); err != nil {
		t.Fatalf("user模块迁移失败: %v", err)
	}
	return db
}

// NewTestConfig 返回一份适合测试的宽松配置。
// 需要收紧限流规则的测试可以在返回值上自行覆盖。
func NewTestConfig() *config.Config {
	return &config.Config{
		Limits: config.LimitsConfig{
			Vote:       config.LimitRule{Limit: 100, WindowSeconds: 10},
			CreatePoll: config.LimitRule{Limit: 100, WindowSeconds: 60},
		},
		Cache: config.CacheConfig{
			PollListTTLSeconds:    30,
			PollDetailTTLSeconds:  60,
			PollResultsTTLSeconds: 30,
		},
	}
}

// --- 内存键值存储 ---

type memoryEntry struct {
	value    []byte
	deadline time.Time
}

// MemoryKV 是cache.Store的内存实现，仅用于测试。
// 行为对齐Redis：过期的键视为不存在。
type MemoryKV struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

// NewMemoryKV 创建一个空的内存键值存储。
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{entries: make(map[string]memoryEntry)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || (!e.deadline.IsZero() && time.Now().After(e.deadline)) {
		delete(m.entries, key)
		return nil, cache.ErrMiss
	}
	return e.value, nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deadline time.Time
	if ttl > 0 {
		deadline = time.Now().Add(ttl)
	}
	m.entries[key] = memoryEntry{value: value, deadline: deadline}
	return nil
}

func (m *MemoryKV) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

// Contains 报告键当前是否存在（且未过期），供测试断言缓存失效。
func (m *MemoryKV) Contains(key string) bool {
	_, err := m.Get(context.Background(), key)
	return err == nil
}

// --- 内存原子计数器 ---

type counterEntry struct {
	count    int64
	deadline time.Time
}

// MemoryCounters 是ratelimit.CounterStore的内存实现，仅用于测试。
// 行为对齐Redis：INCR对过期的键重新从1开始计数。
type MemoryCounters struct {
	mu       sync.Mutex
	counters map[string]counterEntry
}

// NewMemoryCounters 创建一个空的内存计数存储。
func NewMemoryCounters() *MemoryCounters {
	return &MemoryCounters{counters: make(map[string]counterEntry)}
}

func (m *MemoryCounters) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.counters[key]
	if ok && !e.deadline.IsZero() && time.Now().After(e.deadline) {
		e = counterEntry{}
	} else if !ok {
		e = counterEntry{}
	}
	e.count++
	m.counters[key] = e
	return e.count, nil
}

func (m *MemoryCounters) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.counters[key]
	if !ok {
		return nil
	}
	e.deadline = time.Now().Add(ttl)
	m.counters[key] = e
	return nil
}
