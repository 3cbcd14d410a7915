package heavy

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"heavyCalc/internal/domain"
	"heavyCalc/internal/ports"
)

// Controller — маршрут GET /heavy.
type Controller struct {
	uc  ports.IHeavyUseCase
	mws []gin.HandlerFunc
	log *slog.Logger
}

// New создаёт контроллер. mws выполняются перед обработчиком только на /heavy (например, лимитер).
func New(uc ports.IHeavyUseCase, log *slog.Logger, mws ...gin.HandlerFunc) *Controller {
	return &Controller{uc: uc, mws: mws, log: log}
}

// RegisterRoutes реализует http.Controller: регистрирует маршруты на роутере.
func (c *Controller) RegisterRoutes(r *gin.Engine) {
	handlers := append(append([]gin.HandlerFunc{}, c.mws...), c.heavy)
	r.GET("/heavy", handlers...)
}

// @Summary Результат тяжёлого вычисления
// @Description Отдаёт значение из кэша или считает его в отдельной горутине и кладёт в кэш на 60 секунд.
// @Tags heavy
// @Produce plain
// @Success 200 {string} string "[CACHE HIT] Result: ... / [CACHE MISS] Calculated: ..."
// @Failure 429 {string} string "Too many heavy requests, please slow down."
// @Failure 500 {string} string "Кэш недоступен или вычисление упало"
// @Router /heavy [get]
func (c *Controller) heavy(ctx *gin.Context) {
	res, err := c.uc.Heavy(ctx.Request.Context())
	if err != nil {
		status, msg := errorResponse(err)
		c.log.Error("heavy failed", "status", status, "error", err)
		ctx.String(status, msg)
		return
	}
	ctx.String(http.StatusOK, formatResult(res))
}

// errorResponse сопоставляет ошибку юзкейса со статусом и телом ответа.
func errorResponse(err error) (int, string) {
	var execErr *domain.ExecutionError
	switch {
	case errors.As(err, &execErr):
		return http.StatusInternalServerError, execErr.Error() + "\n"
	case errors.Is(err, domain.ErrCacheUnavailable):
		return http.StatusInternalServerError, err.Error() + "\n"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "request aborted: " + err.Error() + "\n"
	default:
		return http.StatusInternalServerError, "internal error: " + err.Error() + "\n"
	}
}
