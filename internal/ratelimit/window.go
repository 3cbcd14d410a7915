// Package ratelimit — ограничение частоты запросов по фиксированному окну на клиента.
//
// Окно клиента стартует с его первого запроса и живёт WindowMs; внутри окна пропускается не больше Max
// запросов. На стыке двух окон клиент может успеть сделать до 2×Max запросов.
package ratelimit

import (
	"context"
	"time"
)

// Хранилища окон.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config — настройки лимитера. Переменные: HEAVY_RATELIMIT_WINDOW_MS, HEAVY_RATELIMIT_MAX и т.д.
type Config struct {
	WindowMs      int64         `envconfig:"WINDOW_MS" default:"60000"`
	Max           int           `envconfig:"MAX" default:"5"`
	Store         string        `envconfig:"STORE" default:"memory"` // memory | redis
	KeyPrefix     string        `envconfig:"KEY_PREFIX" default:"ratelimit:heavy:"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"1m"`
	GlobalRPS     float64       `envconfig:"GLOBAL_RPS" default:"0"` // 0 — глобальный лимит выключен
	GlobalBurst   int           `envconfig:"GLOBAL_BURST" default:"1"`
}

// Window возвращает длину окна.
func (c *Config) Window() time.Duration {
	return time.Duration(c.WindowMs) * time.Millisecond
}

// Window — счётчик одного клиента в текущем окне.
type Window struct {
	ClientID string
	Start    time.Time
	Count    int
	Limit    int
	Duration time.Duration
}

// ResetAt — момент, когда окно истечёт и счётчик начнётся заново.
func (w Window) ResetAt() time.Time {
	return w.Start.Add(w.Duration)
}

// Remaining — сколько запросов ещё осталось в окне.
func (w Window) Remaining() int {
	return max(0, w.Limit-w.Count)
}

// Elapsed сообщает, истекло ли окно к моменту now.
func (w Window) Elapsed(now time.Time) bool {
	return !now.Before(w.ResetAt())
}

// Store хранит окна клиентов. Hit атомарно учитывает один запрос и возвращает окно после инкремента.
type Store interface {
	Hit(ctx context.Context, clientID string, limit int, window time.Duration, now time.Time) (Window, error)
}
