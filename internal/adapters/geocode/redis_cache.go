package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"parcel-tracking-service/internal/domain"
)

const redisKeyPrefix = "geocode:"

// RedisCache is a redis-backed implementation of Cache. Entries expire
// after TTL so stale geocodes age out on their own.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (domain.GeocodedAddress, bool, error) {
	val, err := c.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return domain.GeocodedAddress{}, false, nil
	}
	if err != nil {
		return domain.GeocodedAddress{}, false, fmt.Errorf("geocode cache get %q: %w", key, err)
	}

	var addr domain.GeocodedAddress
	if err := json.Unmarshal([]byte(val), &addr); err != nil {
		return domain.GeocodedAddress{}, false, fmt.Errorf("geocode cache get %q: unmarshal: %w", key, err)
	}
	return addr, true, nil
}

func (c *RedisCache) Put(ctx context.Context, key string, addr domain.GeocodedAddress) error {
	data, err := json.Marshal(addr)
	if err != nil {
		return fmt.Errorf("geocode cache put %q: marshal: %w", key, err)
	}

	if err := c.client.Set(ctx, redisKeyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("geocode cache put %q: %w", key, err)
	}
	return nil
}
