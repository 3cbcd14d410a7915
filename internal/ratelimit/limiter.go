package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// Decision — итог проверки одного запроса.
type Decision struct {
	Allowed bool
	Window  Window
	// Global — запрос отбит общим token bucket, а не окном клиента.
	Global bool
}

// Limiter решает, пропускать ли запрос клиента. Сначала окно клиента, затем (если включён) общий token bucket.
type Limiter struct {
	store  Store
	max    int
	window time.Duration
	global *rate.Limiter
	now    func() time.Time
	log    *slog.Logger
}

// New создаёт лимитер по конфигу поверх store.
func New(cfg *Config, store Store, log *slog.Logger) *Limiter {
	l := &Limiter{
		store:  store,
		max:    cfg.Max,
		window: cfg.Window(),
		now:    time.Now,
		log:    log,
	}
	if cfg.GlobalRPS > 0 {
		l.global = rate.NewLimiter(rate.Limit(cfg.GlobalRPS), max(1, cfg.GlobalBurst))
	}
	return l
}

// Allow учитывает запрос clientID и сообщает, можно ли его обработать.
// Если хранилище окон недоступно, запрос пропускается (fail open) с предупреждением в логе.
func (l *Limiter) Allow(ctx context.Context, clientID string) Decision {
	w, err := l.store.Hit(ctx, clientID, l.max, l.window, l.now())
	if err != nil {
		l.log.Warn("ratelimit store failed, request admitted", "client", clientID, "error", err)
		return Decision{Allowed: true}
	}
	if w.Count > l.max {
		return Decision{Allowed: false, Window: w}
	}
	if l.global != nil && !l.global.Allow() {
		return Decision{Allowed: false, Window: w, Global: true}
	}
	return Decision{Allowed: true, Window: w}
}

// Max — лимит запросов на окно.
func (l *Limiter) Max() int {
	return l.max
}
