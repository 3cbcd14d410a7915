// Package memory — кэш в памяти процесса на ristretto. Используется вместо Redis при HEAVY_CACHE_DRIVER=memory
// (локальный запуск без инфраструктуры) и в тестах. Между процессами не шарится.
package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"heavyCalc/internal/domain"
	"heavyCalc/internal/ports"
)

var _ ports.ICache = (*Cache)(nil)

// Config — настройки in-memory кэша. Переменные: HEAVY_MEMORY_MAX_ENTRIES.
type Config struct {
	MaxEntries int64 `envconfig:"MAX_ENTRIES" default:"1024"`
}

// Cache реализует ports.ICache поверх ristretto. Стоимость каждой записи — 1.
type Cache struct {
	rc     *ristretto.Cache[string, string]
	closed atomic.Bool
	log    *slog.Logger
}

// New создаёт кэш на cfg.MaxEntries записей.
func New(cfg *Config, log *slog.Logger) (*Cache, error) {
	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	rc, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("ristretto: %w", err)
	}
	return &Cache{rc: rc, log: log}, nil
}

// Get возвращает значение по ключу; истёкшие записи ristretto не отдаёт.
func (c *Cache) Get(_ context.Context, key string) (string, bool, error) {
	if c.closed.Load() {
		return "", false, fmt.Errorf("%w: memory cache closed", domain.ErrCacheUnavailable)
	}
	v, ok := c.rc.Get(key)
	return v, ok, nil
}

// SetEx кладёт значение с TTL и дожидается, пока запись станет видимой.
func (c *Cache) SetEx(_ context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return errors.New("cache set: empty key")
	}
	if ttl <= 0 {
		return fmt.Errorf("cache set: ttl must be positive, got %s", ttl)
	}
	if c.closed.Load() {
		return fmt.Errorf("%w: memory cache closed", domain.ErrCacheUnavailable)
	}
	if !c.rc.SetWithTTL(key, value, 1, ttl) {
		c.log.Debug("cache set dropped", "key", key)
		return fmt.Errorf("%w: set %s dropped", domain.ErrCacheUnavailable, key)
	}
	c.rc.Wait()
	return nil
}

// Del удаляет ключ (аналог истечения TTL, нужен тестам и ручной инвалидации).
func (c *Cache) Del(_ context.Context, key string) {
	if !c.closed.Load() {
		c.rc.Del(key)
	}
}

// Ping всегда успешен, пока кэш не закрыт.
func (c *Cache) Ping(_ context.Context) error {
	if c.closed.Load() {
		return fmt.Errorf("%w: memory cache closed", domain.ErrCacheUnavailable)
	}
	return nil
}

// Close освобождает ristretto.
func (c *Cache) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		c.rc.Close()
	}
	return nil
}
