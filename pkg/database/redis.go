package database

import (
	"context"
	"daily_puzzle_backend/internal/config"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisPingTimeout = 3 * time.Second

// InitRedis 建立Redis连接并确认可达
// 只承载今日谜题缓存这类可丢弃数据，连不上视为启动失败而不是静默降级。
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     20,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	return client, nil
}
