package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"heavyCalc/internal/domain"
	"heavyCalc/internal/ports"
)

var _ ports.ICache = (*Cache)(nil)

// Cache реализует ports.ICache через Redis: GET и SETEX, значения — строки.
type Cache struct {
	cli redis.Cmdable
	log *slog.Logger
}

// NewCache возвращает кэш, реализующий ports.ICache.
func NewCache(cli *Client, log *slog.Logger) *Cache {
	return &Cache{cli: cli.Client, log: log}
}

// Get возвращает значение по ключу. Если ключа нет — found == false и err == nil.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	s, err := c.cli.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) { // ключа нет
			return "", false, nil
		}
		c.log.Debug("cache get failed", "key", key, "error", err)
		return "", false, fmt.Errorf("%w: get %s: %v", domain.ErrCacheUnavailable, key, err)
	}
	return s, true, nil
}

// SetEx сохраняет значение с TTL (SETEX). Перезаписывает предыдущее значение.
func (c *Cache) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return errors.New("cache set: empty key")
	}
	if ttl <= 0 {
		return fmt.Errorf("cache set: ttl must be positive, got %s", ttl)
	}
	if err := c.cli.SetEx(ctx, key, value, ttl).Err(); err != nil {
		c.log.Debug("cache set failed", "key", key, "error", err)
		return fmt.Errorf("%w: setex %s: %v", domain.ErrCacheUnavailable, key, err)
	}
	return nil
}

// Ping проверяет соединение (для readiness и health).
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.cli.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}
	return nil
}
