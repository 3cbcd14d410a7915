package middlewares

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"heavyCalc/internal/domain"
	"heavyCalc/internal/ratelimit"
)

// Limiter — то, что мидлвари нужно от лимитера.
type Limiter interface {
	Allow(ctx context.Context, clientID string) ratelimit.Decision
	Max() int
}

// RateLimit отбивает запрос с 429 до обработчика, если клиент (по IP) исчерпал окно.
// Отбитый запрос до кэша и вычисления не доходит. Заголовки RateLimit-* ставятся на любой ответ.
func RateLimit(l Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := l.Allow(c.Request.Context(), c.ClientIP())

		if !d.Window.Start.IsZero() {
			reset := resetSeconds(d.Window.ResetAt())
			c.Header("RateLimit-Limit", strconv.Itoa(l.Max()))
			c.Header("RateLimit-Remaining", strconv.Itoa(d.Window.Remaining()))
			c.Header("RateLimit-Reset", strconv.Itoa(reset))
			if !d.Allowed && !d.Global {
				c.Header("Retry-After", strconv.Itoa(reset))
			}
		}

		if !d.Allowed {
			scope := "client"
			if d.Global {
				scope = "global"
				c.Header("Retry-After", "1")
			}
			rateLimitedTotal.WithLabelValues(scope).Inc()
			c.String(http.StatusTooManyRequests, domain.RateLimitMessage)
			c.Abort()
			return
		}
		c.Next()
	}
}

// resetSeconds — сколько целых секунд (с округлением вверх) осталось до конца окна.
func resetSeconds(at time.Time) int {
	d := time.Until(at)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
