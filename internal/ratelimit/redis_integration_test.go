package ratelimit

import (
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func redisStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping Redis integration test")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	if err := rdb.Ping(t.Context()).Err(); err != nil {
		t.Fatalf("cannot reach Redis at %s: %v", addr, err)
	}
	return NewRedisStore(rdb, "test:ratelimit:"+t.Name()+":")
}

func TestRedisStore_FixedWindow(t *testing.T) {
	s := redisStore(t)
	l := New(&Config{WindowMs: 500, Max: 2}, s, newTestLogger())
	ctx := t.Context()

	if !l.Allow(ctx, "c").Allowed || !l.Allow(ctx, "c").Allowed {
		t.Fatal("first two requests must be admitted")
	}
	d := l.Allow(ctx, "c")
	if d.Allowed {
		t.Fatal("3rd request must be rejected")
	}
	if d.Window.Count != 3 {
		t.Fatalf("count = %d, want 3", d.Window.Count)
	}

	if !l.Allow(ctx, "other").Allowed {
		t.Fatal("other client must not be affected")
	}

	time.Sleep(600 * time.Millisecond)

	d = l.Allow(ctx, "c")
	if !d.Allowed || d.Window.Count != 1 {
		t.Fatalf("expected a fresh window, got %+v", d)
	}
}
