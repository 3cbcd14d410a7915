package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrCacheUnavailable возвращается, когда кэш недоступен (соединение или команда упали).
var ErrCacheUnavailable = errors.New("cache unavailable")

// ErrRateLimited возвращается, когда клиент исчерпал лимит запросов в текущем окне.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimitMessage — тело ответа 429, без деталей.
const RateLimitMessage = "Too many heavy requests, please slow down."

// ExecutionError — вычисление не стартовало или упало. Частичного результата не бывает.
type ExecutionError struct {
	Reason string
}

func (e *ExecutionError) Error() string {
	return "execution failed: " + e.Reason
}

// NewExecutionError собирает ExecutionError с форматированной причиной.
func NewExecutionError(format string, args ...any) *ExecutionError {
	return &ExecutionError{Reason: fmt.Sprintf(format, args...)}
}

// ComputationResult — результат тяжёлого вычисления. Живёт один запрос, наружу уходит только через кэш.
type ComputationResult struct {
	Total int64
}

// Outcome — сигнал завершения вычисления: либо Result, либо Err.
type Outcome struct {
	Result ComputationResult
	Err    error
}

// Source — откуда пришло значение: из кэша или посчитано заново.
type Source int

const (
	SourceCache Source = iota
	SourceComputed
)

// HeavyResult — ответ юзкейса контроллеру.
type HeavyResult struct {
	Value    string
	Source   Source
	ServedBy int  // PID процесса
	Shared   bool // результат получен от чужого in-flight вычисления
}

// ComputedEvent — событие «значение посчитано», уходит в брокер после промаха.
type ComputedEvent struct {
	Key        string    `json:"key"`
	Value      string    `json:"value"`
	PID        int       `json:"pid"`
	DurationMs int64     `json:"duration_ms"`
	At         time.Time `json:"at"`
}
