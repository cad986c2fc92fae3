package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// RedisCache implements Cache on top of a redis client.
type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache connects and pings the server.
func NewRedisCache(cfg *Config) (*RedisCache, error) {
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
	return &RedisCache{Client: client}, nil
}

func (c *RedisCache) Remember(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc) ([]byte, error) {
	val, err := c.Client.Get(ctx, key).Bytes()
	if err == nil {
		return val, nil
	}
	if !errors.Is(err, redis.Nil) {
		// Degraded cache: fall through to compute rather than failing the
		// read path.
		val, cerr := compute()
		return val, cerr
	}

	val, err = compute()
	if err != nil {
		return nil, err
	}
	c.Client.Set(ctx, key, val, ttl)
	return val, nil
}

func (c *RedisCache) Forget(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.Client.Del(ctx, keys...).Err()
}

func (c *RedisCache) ForgetPrefix(ctx context.Context, prefix string) error {
	keys, err := c.Client.Keys(ctx, prefix+"*").Result()
	if err != nil {
		return err
	}
	return c.Forget(ctx, keys...)
}

// Close releases the underlying client.
func (c *RedisCache) Close() error { return c.Client.Close() }
