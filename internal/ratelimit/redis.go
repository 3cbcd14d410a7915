package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

// hitScript: INCR и PEXPIRE на первом запросе окна, одной атомарной операцией. Возвращает {count, pttl}.
var hitScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisStore хранит окна в Redis, чтобы лимит был общим для нескольких инстансов.
// Истечение окна — это TTL ключа, отдельная чистка не нужна.
type RedisStore struct {
	cli    redis.Scripter
	prefix string
}

// NewRedisStore создаёт хранилище поверх клиента go-redis.
func NewRedisStore(cli redis.Scripter, prefix string) *RedisStore {
	return &RedisStore{cli: cli, prefix: prefix}
}

// Hit учитывает запрос клиента. Начало окна восстанавливается по оставшемуся TTL ключа.
func (s *RedisStore) Hit(ctx context.Context, clientID string, limit int, window time.Duration, now time.Time) (Window, error) {
	res, err := hitScript.Run(ctx, s.cli, []string{s.prefix + clientID}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Window{}, fmt.Errorf("ratelimit hit: %w", err)
	}
	if len(res) != 2 {
		return Window{}, fmt.Errorf("ratelimit hit: unexpected reply %v", res)
	}
	ttl := time.Duration(res[1]) * time.Millisecond
	return Window{
		ClientID: clientID,
		Start:    now.Add(ttl - window),
		Count:    int(res[0]),
		Limit:    limit,
		Duration: window,
	}, nil
}
