// Package executor запускает тяжёлое CPU-вычисление в отдельной горутине, не блокируя обработку запросов.
// Число одновременных вычислений ограничено семафором, лишние ждут слота в очереди.
package executor

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/semaphore"

	"heavyCalc/internal/domain"
	"heavyCalc/internal/ports"
)

var _ ports.IExecutor = (*Executor)(nil)

// Config — настройки вычисления. Переменные: HEAVY_COMPUTE_ITERATIONS, HEAVY_COMPUTE_WORKERS,
// HEAVY_COMPUTE_QUEUE_TIMEOUT.
type Config struct {
	Iterations   int64         `envconfig:"ITERATIONS" default:"50000000"`
	Workers      int           `envconfig:"WORKERS" default:"0"` // 0 — по числу CPU
	QueueTimeout time.Duration `envconfig:"QUEUE_TIMEOUT" default:"30s"`
}

// Workload — сама работа. Должна быть детерминированной и не трогать общее состояние.
type Workload func() int64

// CountTo — эталонная нагрузка: инкремент счётчика от нуля до n.
func CountTo(n int64) Workload {
	return func() int64 {
		var total int64
		for i := int64(0); i < n; i++ {
			total++
		}
		return total
	}
}

// Executor запускает Workload: каждый Run — своя горутина, без пула и переиспользования.
type Executor struct {
	sem          *semaphore.Weighted
	workers      int64
	queueTimeout time.Duration
	work         Workload
	log          *slog.Logger
}

// New создаёт исполнитель с нагрузкой CountTo(cfg.Iterations).
func New(cfg *Config, log *slog.Logger) *Executor {
	return NewWithWorkload(cfg, CountTo(cfg.Iterations), log)
}

// NewWithWorkload создаёт исполнитель с произвольной нагрузкой.
func NewWithWorkload(cfg *Config, work Workload, log *slog.Logger) *Executor {
	workers := int64(cfg.Workers)
	if workers <= 0 {
		workers = int64(runtime.NumCPU())
	}
	return &Executor{
		sem:          semaphore.NewWeighted(workers),
		workers:      workers,
		queueTimeout: cfg.QueueTimeout,
		work:         work,
		log:          log,
	}
}

// Run стартует вычисление и сразу возвращает канал. В канал придёт ровно один Outcome, затем канал закроется.
// ctx ограничивает только ожидание слота: начатое вычисление не отменяется.
func (e *Executor) Run(ctx context.Context) <-chan domain.Outcome {
	out := make(chan domain.Outcome, 1)
	queued.Inc()
	go func() {
		defer close(out)

		acquireCtx := ctx
		if e.queueTimeout > 0 {
			var cancel context.CancelFunc
			acquireCtx, cancel = context.WithTimeout(ctx, e.queueTimeout)
			defer cancel()
		}
		err := e.sem.Acquire(acquireCtx, 1)
		queued.Dec()
		if err != nil {
			e.log.Warn("computation not started", "error", err, "workers", e.workers)
			runs.WithLabelValues("not_started").Inc()
			out <- domain.Outcome{Err: domain.NewExecutionError("failed to start: %v", err)}
			return
		}
		defer e.sem.Release(1)

		out <- e.execute()
	}()
	return out
}

// execute выполняет нагрузку в текущей горутине; паника превращается в ExecutionError.
func (e *Executor) execute() (o domain.Outcome) {
	running.Inc()
	start := time.Now()
	defer func() {
		running.Dec()
		duration.Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			e.log.Error("computation crashed", "panic", r)
			runs.WithLabelValues("crashed").Inc()
			o = domain.Outcome{Err: domain.NewExecutionError("workload crashed: %v", r)}
		}
	}()

	total := e.work()
	runs.WithLabelValues("ok").Inc()
	e.log.Debug("computation finished", "total", total, "latency_ms", time.Since(start).Milliseconds())
	return domain.Outcome{Result: domain.ComputationResult{Total: total}}
}
