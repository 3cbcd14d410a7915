package heavy

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"heavyCalc/internal/domain"
)

// Heavy — проверяет кэш; при промахе запускает вычисление, пишет результат в кэш с TTL и возвращает его.
// Ни один шаг не повторяется: любая ошибка завершает запрос.
func (u *UseCase) Heavy(ctx context.Context) (*domain.HeavyResult, error) {
	ctx, span := tracer.Start(ctx, "heavy.Heavy")
	defer span.End()
	span.SetAttributes(attribute.String("cache.key", u.cfg.Key))

	value, found, err := u.cache.Get(ctx, u.cfg.Key)
	if err != nil {
		lookups.WithLabelValues("error").Inc()
		u.log.Error("cache check failed", "key", u.cfg.Key, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "cache check failed")
		return nil, err
	}
	if found {
		lookups.WithLabelValues("hit").Inc()
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return &domain.HeavyResult{Value: value, Source: domain.SourceCache, ServedBy: u.pid}, nil
	}

	lookups.WithLabelValues("miss").Inc()
	span.SetAttributes(attribute.Bool("cache.hit", false))
	res, err := u.compute(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "compute failed")
		return nil, err
	}
	return res, nil
}

// compute ждёт результата вычисления, не блокируя ничего, кроме текущего запроса.
// Само вычисление и запись в кэш идут на отвязанном от запроса контексте: ушедший клиент их не прерывает.
func (u *UseCase) compute(ctx context.Context) (*domain.HeavyResult, error) {
	detached := context.WithoutCancel(ctx)

	var ch <-chan singleflight.Result
	if u.cfg.Dedup {
		ch = u.flight.DoChan(u.cfg.Key, func() (any, error) {
			return u.computeAndStore(detached)
		})
	} else {
		c := make(chan singleflight.Result, 1)
		go func() {
			v, err := u.computeAndStore(detached)
			c <- singleflight.Result{Val: v, Err: err}
		}()
		ch = c
	}

	select {
	case <-ctx.Done():
		u.log.Warn("request left before computation finished", "key", u.cfg.Key, "error", ctx.Err())
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		if r.Shared {
			shared.Inc()
		}
		return &domain.HeavyResult{
			Value:    r.Val.(string),
			Source:   domain.SourceComputed,
			ServedBy: u.pid,
			Shared:   r.Shared,
		}, nil
	}
}

// computeAndStore: COMPUTING → CACHE_WRITE. Возвращает значение в строковом виде, как оно лежит в кэше.
func (u *UseCase) computeAndStore(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "heavy.compute")
	defer span.End()

	start := time.Now()
	out, ok := <-u.exec.Run(ctx)
	if !ok {
		out.Err = domain.NewExecutionError("executor finished without a result")
	}
	if out.Err != nil {
		u.log.Error("computation failed", "key", u.cfg.Key, "error", out.Err)
		span.RecordError(out.Err)
		return "", out.Err
	}
	elapsed := time.Since(start)
	value := strconv.FormatInt(out.Result.Total, 10)
	u.log.Info("computation finished", "key", u.cfg.Key, "result", value, "latency_ms", elapsed.Milliseconds())

	if err := u.cache.SetEx(ctx, u.cfg.Key, value, u.cfg.TTL); err != nil {
		writes.WithLabelValues("error").Inc()
		span.RecordError(err)
		if u.cfg.WritePolicy == WritePolicyRespond {
			u.log.Warn("cache write failed, responding anyway", "key", u.cfg.Key, "error", err)
			u.publish(ctx, value, elapsed)
			return value, nil
		}
		u.log.Error("cache write failed", "key", u.cfg.Key, "error", err)
		return "", err
	}
	writes.WithLabelValues("ok").Inc()
	u.log.Info("result cached", "key", u.cfg.Key, "ttl", u.cfg.TTL)

	u.publish(ctx, value, elapsed)
	return value, nil
}

// publish отправляет событие о вычислении в брокер. Ошибка не влияет на ответ.
func (u *UseCase) publish(ctx context.Context, value string, elapsed time.Duration) {
	if u.broker == nil {
		return
	}
	ev := domain.ComputedEvent{
		Key:        u.cfg.Key,
		Value:      value,
		PID:        u.pid,
		DurationMs: elapsed.Milliseconds(),
		At:         time.Now(),
	}
	body, err := json.Marshal(ev)
	if err != nil {
		u.log.Warn("event marshal", "error", err)
		return
	}
	if err := u.broker.Send(ctx, []byte(u.cfg.Key), body); err != nil {
		u.log.Warn("broker send", "key", u.cfg.Key, "error", err)
		return
	}
	u.log.Info("computation published", "key", u.cfg.Key, "result", value)
}
