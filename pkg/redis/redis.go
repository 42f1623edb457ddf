package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"irufoodflow/backend/config"
)

const keyPrefix = "foodflow:"

// Client 吊销名单与登录限流共用的 Redis 连接
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 连接并 Ping，失败时由调用方决定是否降级运行
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("Redis 连接失败 (%s): %w", cfg.Addr, err)
	}

	logger.Info("Redis 已连接", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return &Client{rdb: rdb, logger: logger}, nil
}

// Ping 健康检查
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func revokedKey(jti string) string { return keyPrefix + "revoked:" + jti }

// BlacklistToken 吊销一个 jti，保留到其原本的过期时刻
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.rdb.Set(ctx, revokedKey(jti), time.Now().Unix(), ttl).Err()
}

// IsBlacklisted 登出的 access token 与轮换掉的 refresh token 都在这里
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CheckRateLimit 滑动窗口计数，窗口内已有请求数小于 limit 时放行
// key 由调用方拼装（路由 + IP），此处统一加前缀
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	key = keyPrefix + "ratelimit:" + key
	now := time.Now().UnixNano()
	floor := strconv.FormatInt(now-window.Nanoseconds(), 10)

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", floor)
	count := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now), Member: now})
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return count.Val() < int64(limit), nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
