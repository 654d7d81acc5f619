package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rgehrsitz/assetplan/internal/calculation"
	"github.com/rgehrsitz/assetplan/internal/domain"
)

// RedisCache is a ValuationCache backed by redis. Values are stored as JSON.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	Logger calculation.Logger
}

// NewRedisCache connects to addr. A zero ttl keeps entries until evicted.
func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return NewRedisCacheFromClient(rdb, ttl)
}

func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, Logger: calculation.NopLogger{}}
}

// Get treats every redis failure as a miss.
func (r *RedisCache) Get(ctx context.Context, key string) (domain.Valuation, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) && r.Logger != nil {
			r.Logger.Warnf("redis get %s: %v", key, err)
		}
		return domain.Valuation{}, false
	}
	var v domain.Valuation
	if err := json.Unmarshal(data, &v); err != nil {
		if r.Logger != nil {
			r.Logger.Warnf("discarding corrupt cached valuation %s: %v", key, err)
		}
		return domain.Valuation{}, false
	}
	return v, true
}

func (r *RedisCache) Set(ctx context.Context, key string, valuation domain.Valuation) error {
	data, err := json.Marshal(valuation)
	if err != nil {
		return fmt.Errorf("failed to encode valuation: %w", err)
	}
	return r.client.Set(ctx, key, data, r.ttl).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
