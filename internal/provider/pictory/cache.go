package pictory

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const tokenCacheKey = "pictory:access_token"

// RedisTokenCache 把 Pictory 访问令牌放进 Redis，带 TTL；
// Redis 不可用时当作未命中，退回每次取新令牌
type RedisTokenCache struct {
	rdb *redis.Client
}

func NewRedisTokenCache(rdb *redis.Client) *RedisTokenCache {
	return &RedisTokenCache{rdb: rdb}
}

func (c *RedisTokenCache) Get(ctx context.Context) (string, bool) {
	token, err := c.rdb.Get(ctx, tokenCacheKey).Result()
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

func (c *RedisTokenCache) Set(ctx context.Context, token string, ttl time.Duration) {
	// 提前 5 分钟过期，避免使用临界令牌
	if ttl > 5*time.Minute {
		ttl -= 5 * time.Minute
	}
	c.rdb.Set(ctx, tokenCacheKey, token, ttl)
}
