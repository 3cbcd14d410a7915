package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	apigrpc "heavyCalc/internal/api/grpc"
	apihttp "heavyCalc/internal/api/http"
	heavyController "heavyCalc/internal/api/http/controllers/heavy"
	"heavyCalc/internal/api/http/controllers/system"
	"heavyCalc/internal/api/http/middlewares"
	"heavyCalc/internal/executor"
	"heavyCalc/internal/infrastructure/kafka"
	"heavyCalc/internal/infrastructure/memory"
	"heavyCalc/internal/infrastructure/redis"
	"heavyCalc/internal/pkg/tracing"
	"heavyCalc/internal/ports"
	"heavyCalc/internal/ratelimit"
	heavyUsecase "heavyCalc/internal/usecase/heavy"
)

const shutdownTimeout = 10 * time.Second

// App — процесс целиком: конфиг, логгер и один раз собранные зависимости.
// Клиенты создаются в Init и явно передаются юзкейсу, контроллерам и мидлварям.
type App struct {
	cfg Config
	log *slog.Logger

	tp       trace.TracerProvider
	cache    ports.ICache
	uc       *heavyUsecase.UseCase
	limiter  *ratelimit.Limiter
	memStore *ratelimit.MemoryStore // nil, если окна хранятся в Redis
	http     *apihttp.Server
	grpc     *apigrpc.Server // nil, если gRPC выключен

	closers []func() error
}

// New создаёт приложение с конфигом. Зависимости собираются в Init.
func New(cfg Config, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}
	return &App{cfg: cfg, log: log}
}

// Init подключается к кэшу и собирает все зависимости. При ошибке уже открытые ресурсы закрываются.
func (a *App) Init() (err error) {
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	tp, shutdown, err := tracing.Setup(a.cfg.Tracing, nil)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	a.tp = tp
	a.closers = append(a.closers, func() error {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return shutdown(sctx)
	})

	var store ratelimit.Store
	switch a.cfg.Cache.Driver {
	case CacheDriverRedis:
		rdb, err := redis.New(&a.cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		a.closers = append(a.closers, rdb.Close)
		a.cache = redis.NewCache(rdb, a.log)
		if a.cfg.RateLimit.Store == ratelimit.StoreRedis {
			store = ratelimit.NewRedisStore(rdb, a.cfg.RateLimit.KeyPrefix)
		}
	case CacheDriverMemory:
		mc, err := memory.New(&a.cfg.Memory, a.log)
		if err != nil {
			return fmt.Errorf("memory cache: %w", err)
		}
		a.closers = append(a.closers, mc.Close)
		a.cache = mc
	default:
		return fmt.Errorf("unknown cache driver %q", a.cfg.Cache.Driver)
	}
	if store == nil {
		a.memStore = ratelimit.NewMemoryStore()
		store = a.memStore
	}

	var broker ports.IProducer
	if a.cfg.Kafka.Enabled() {
		p := kafka.New(&a.cfg.Kafka).Producer()
		a.closers = append(a.closers, p.Close)
		broker = p
	}

	exec := executor.New(&a.cfg.Compute, a.log)
	a.uc = heavyUsecase.New(a.cache, exec, broker, a.cfg.Cache.Config, a.log)
	a.limiter = ratelimit.New(&a.cfg.RateLimit, store, a.log)

	a.http = apihttp.NewServer(a.cfg.Server, a.log)
	a.http.Use(middlewares.Tracing(a.tp), middlewares.PrometheusMetrics)
	a.http.AddController(
		system.New(a.cache, a.log),
		heavyController.New(a.uc, a.log, middlewares.RateLimit(a.limiter)),
	)

	if a.cfg.Grpc.Enabled() {
		a.grpc = apigrpc.NewServer(a.cfg.Grpc.Addr(), a.log)
	}

	a.log.Info("dependencies ready",
		"cache_driver", a.cfg.Cache.Driver,
		"ratelimit_store", a.cfg.RateLimit.Store,
		"kafka", a.cfg.Kafka.Enabled(),
		"grpc", a.cfg.Grpc.Enabled(),
		"tracing", a.cfg.Tracing.Enabled,
		"dedup", a.cfg.Cache.Dedup,
	)
	return nil
}

// Handler возвращает HTTP-обработчик со всеми маршрутами. Вызывать после Init.
func (a *App) Handler() (http.Handler, error) {
	if a.http == nil {
		return nil, errors.New("app is not initialized")
	}
	return a.http.Router()
}

// Run собирает зависимости, запускает HTTP (и gRPC, если включён) и блокируется до отмены ctx.
// Затем делает graceful shutdown и закрывает клиентов.
func (a *App) Run(ctx context.Context) error {
	if err := a.Init(); err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.log.Warn("close failed", "error", err)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.http.Start(gctx)
	})
	if a.memStore != nil {
		g.Go(func() error {
			a.memStore.Run(gctx, a.cfg.RateLimit.SweepInterval)
			return nil
		})
	}
	if a.grpc != nil {
		g.Go(func() error {
			if err := a.grpc.Start(); err != nil {
				return fmt.Errorf("grpc: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			a.grpc.Watch(gctx, a.cache, a.cfg.Grpc.CheckInterval)
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return a.grpc.Stop(sctx)
		})
	}

	a.log.Info("application started", "http", a.cfg.Server.Addr(), "grpc", a.cfg.Grpc.Enabled())
	err := g.Wait()
	a.log.Info("application stopped", "error", err)
	return err
}

// Close закрывает ресурсы в обратном порядке открытия.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
