package ports

//go:generate mockgen -source=cache.go -destination=../mocks/cache_mock.go -package=mocks

import (
	"context"
	"time"
)

// ICache — контракт внешнего кэша: get и set с TTL. Ошибки соединения оборачивают domain.ErrCacheUnavailable,
// отсутствие ключа — это found == false, а не ошибка.
type ICache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error
	Ping(ctx context.Context) error
}
