package database

import (
	"context"
	"fmt"
	"time"

	"github.com/SlpAus/polls-backend/internal/platform/config"
	"github.com/redis/go-redis/v9"
)

const pingTimeout = 2 * time.Second

// NewRedis 初始化与Redis数据库的连接并返回客户端句柄。
// 启动时连接失败直接返回错误，由调用方决定是否继续。
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 使用Ping命令来测试连接是否成功
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("无法连接到Redis: %w", err)
	}

	fmt.Println("Redis 连接成功！")
	return rdb, nil
}
