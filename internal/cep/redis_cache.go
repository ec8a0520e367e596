package cep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"supplierapi/internal/config"
)

const defaultKeyPrefix = "cep:address:"

// RedisCache keeps resolved addresses in Redis so repeated registrations
// do not hit the public services.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(cfg config.RedisConfig, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisCacheWithClient(client, defaultKeyPrefix, ttl), nil
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisCache{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (c *RedisCache) key(cep string) string {
	return c.keyPrefix + cep
}

func (c *RedisCache) Get(ctx context.Context, cep string) (*Address, bool, error) {
	b, err := c.client.Get(ctx, c.key(cep)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var addr Address
	if err := json.Unmarshal(b, &addr); err != nil {
		return nil, false, fmt.Errorf("decode cached address: %w", err)
	}
	return &addr, true, nil
}

func (c *RedisCache) Set(ctx context.Context, cep string, addr *Address) error {
	b, err := json.Marshal(addr)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(cep), b, c.ttl).Err()
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
