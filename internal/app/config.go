package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	apigrpc "heavyCalc/internal/api/grpc"
	"heavyCalc/internal/api/http"
	"heavyCalc/internal/executor"
	"heavyCalc/internal/infrastructure/kafka"
	"heavyCalc/internal/infrastructure/memory"
	"heavyCalc/internal/infrastructure/redis"
	"heavyCalc/internal/pkg/logger"
	"heavyCalc/internal/pkg/tracing"
	"heavyCalc/internal/ratelimit"
	"heavyCalc/internal/usecase/heavy"
)

const AppName = "HEAVY"

// envFileVar — путь к .env; по умолчанию .env в рабочей директории.
const envFileVar = AppName + "_ENV_FILE"

// Драйверы кэша.
const (
	CacheDriverRedis  = "redis"
	CacheDriverMemory = "memory"
)

// CacheConfig — выбор бэкенда и параметры кэширования. Переменные: HEAVY_CACHE_DRIVER, HEAVY_CACHE_KEY и т.д.
type CacheConfig struct {
	Driver string `envconfig:"DRIVER" default:"redis"` // redis | memory
	heavy.Config
}

// Config — конфиг приложения. Заполняется через envconfig с префиксом HEAVY.
type Config struct {
	Log       logger.Config     `envconfig:"LOG"`
	Server    http.ServerConfig `envconfig:"SERVER"`
	Grpc      apigrpc.Config    `envconfig:"GRPC"`
	Redis     redis.Config      `envconfig:"REDIS"`
	Memory    memory.Config     `envconfig:"MEMORY"`
	Cache     CacheConfig       `envconfig:"CACHE"`
	Compute   executor.Config   `envconfig:"COMPUTE"`
	RateLimit ratelimit.Config  `envconfig:"RATELIMIT"`
	Kafka     kafka.Config      `envconfig:"KAFKA"`
	Tracing   tracing.Config    `envconfig:"TRACING"`
}

// Validate проверяет значения, которые envconfig не может проверить сам.
func (c *Config) Validate() error {
	switch c.Cache.Driver {
	case CacheDriverRedis, CacheDriverMemory:
	default:
		return fmt.Errorf("unknown cache driver %q", c.Cache.Driver)
	}
	if err := c.Cache.Config.Validate(); err != nil {
		return err
	}
	switch c.RateLimit.Store {
	case ratelimit.StoreMemory:
	case ratelimit.StoreRedis:
		if c.Cache.Driver != CacheDriverRedis {
			return fmt.Errorf("ratelimit store %q requires cache driver %q", c.RateLimit.Store, CacheDriverRedis)
		}
	default:
		return fmt.Errorf("unknown ratelimit store %q", c.RateLimit.Store)
	}
	if c.RateLimit.WindowMs <= 0 {
		return fmt.Errorf("ratelimit window must be positive, got %dms", c.RateLimit.WindowMs)
	}
	if c.RateLimit.Max <= 0 {
		return fmt.Errorf("ratelimit max must be positive, got %d", c.RateLimit.Max)
	}
	if c.Compute.Iterations < 0 {
		return fmt.Errorf("compute iterations must not be negative, got %d", c.Compute.Iterations)
	}
	return nil
}

// LoadCfg загружает конфиг: подтягивает .env (godotenv), затем заполняет структуру из окружения (envconfig).
func LoadCfg() (Config, error) {
	envFile := os.Getenv(envFileVar)
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		slog.Debug("config: .env not loaded, using environment", "file", envFile, "error", err)
	}

	var cfg Config
	if err := envconfig.Process(AppName, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
