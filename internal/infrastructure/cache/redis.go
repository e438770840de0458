package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jhoicas/holdings-api/internal/application/holdings"
	"github.com/redis/go-redis/v9"
)

var _ holdings.Cache = (*RedisCache)(nil)

// RedisCache adaptador Redis del puerto Cache. Los valores se guardan como
// JSON sin TTL: la coherencia la garantiza la invalidación explícita del
// motor, nunca la expiración.
type RedisCache struct {
	client *redis.Client
}

// Config conexión a Redis.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisCache conecta y verifica el servidor Redis.
func NewRedisCache(ctx context.Context, cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

// Get deserializa el valor en dest. Reporta (false, nil) en miss.
func (c *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

// Set serializa y guarda el valor bajo la clave, sin expiración.
func (c *RedisCache) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Del invalida las claves indicadas.
func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache del: %w", err)
	}
	return nil
}

// FlushAll vacía la base de datos Redis configurada.
func (c *RedisCache) FlushAll(ctx context.Context) error {
	if err := c.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("cache flush: %w", err)
	}
	return nil
}

// Close cierra la conexión.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
