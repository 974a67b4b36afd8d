package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix      = "alttext:"
	clearScanCount = 100
)

// RedisCache keeps entries in Redis with a native TTL per key.
type RedisCache struct {
	client *redis.Client
	policy TTLPolicy
}

func NewRedisCache(addr string, policy TTLPolicy) *RedisCache {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return NewRedisCacheFromClient(rdb, policy)
}

func NewRedisCacheFromClient(client *redis.Client, policy TTLPolicy) *RedisCache {
	return &RedisCache{client: client, policy: policy}
}

func (c *RedisCache) key(k string) string {
	return fmt.Sprintf("%s%s", keyPrefix, k)
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisCache) Put(ctx context.Context, key, value string) error {
	ttl := c.policy(value)
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, c.key(key), value, ttl).Err()
}

// Clear deletes every key under the cache prefix.
func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", clearScanCount).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= clearScanCount {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.client.Del(ctx, batch...).Err()
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
