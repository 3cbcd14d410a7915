package heavy

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/singleflight"

	"heavyCalc/internal/ports"
)

var _ ports.IHeavyUseCase = (*UseCase)(nil)

var tracer = otel.Tracer("heavyCalc/internal/usecase/heavy")

// WritePolicy — что делать, если после вычисления запись в кэш не удалась.
type WritePolicy string

const (
	// WritePolicyFail — запрос завершается 5xx.
	WritePolicyFail WritePolicy = "fail"
	// WritePolicyRespond — отвечаем посчитанным значением, ошибку записи только логируем.
	WritePolicyRespond WritePolicy = "respond"
)

// Config — параметры кэширования результата. Переменные: HEAVY_CACHE_KEY, HEAVY_CACHE_TTL,
// HEAVY_CACHE_WRITE_POLICY, HEAVY_CACHE_DEDUP.
type Config struct {
	Key         string        `envconfig:"KEY" default:"heavy_result"`
	TTL         time.Duration `envconfig:"TTL" default:"60s"`
	WritePolicy WritePolicy   `envconfig:"WRITE_POLICY" default:"fail"`
	// Dedup — одновременные промахи ждут одно общее вычисление. false — каждый промах считает сам.
	Dedup bool `envconfig:"DEDUP" default:"true"`
}

// Validate проверяет конфиг.
func (c *Config) Validate() error {
	if c.Key == "" {
		return fmt.Errorf("cache key is empty")
	}
	if c.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %s", c.TTL)
	}
	switch c.WritePolicy {
	case WritePolicyFail, WritePolicyRespond:
	default:
		return fmt.Errorf("unknown cache write policy %q", c.WritePolicy)
	}
	return nil
}

// UseCase — бизнес-логика: cache-aside вокруг тяжёлого вычисления.
type UseCase struct {
	cache  ports.ICache
	exec   ports.IExecutor
	broker ports.IProducer // nil — события не публикуются
	cfg    Config
	flight singleflight.Group
	pid    int
	log    *slog.Logger
}

// New создаёт юзкейс. broker может быть nil.
func New(cache ports.ICache, exec ports.IExecutor, broker ports.IProducer, cfg Config, log *slog.Logger) *UseCase {
	return &UseCase{
		cache:  cache,
		exec:   exec,
		broker: broker,
		cfg:    cfg,
		pid:    os.Getpid(),
		log:    log,
	}
}
