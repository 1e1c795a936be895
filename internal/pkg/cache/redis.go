package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"solace/internal/config"
)

// RedisCache wraps the redis client
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a redis cache client
func NewRedisCache(cfg *config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{client: client}, nil
}

// IncrWindow increments a windowed counter and returns the new count.
// The expiry is set when the counter is first created, so the count resets
// once the window elapses.
func (c *RedisCache) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

// Close closes the connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GuestCountKey builds the guest exchange counter key for one client
func GuestCountKey(clientIP string) string {
	return "guest:exchanges:" + clientIP
}
