package grpc

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"heavyCalc/internal/api/grpc/interceptors"
)

// ServiceName — имя сервиса в grpc.health.v1, отражающее готовность /heavy.
const ServiceName = "heavy"

// Config — настройки gRPC-сервера. Переменные: HEAVY_GRPC_HOST, HEAVY_GRPC_PORT. Пустой PORT — сервер не поднимается.
type Config struct {
	Host          string        `envconfig:"HOST" default:"0.0.0.0"`
	Port          string        `envconfig:"PORT" default:""`
	CheckInterval time.Duration `envconfig:"CHECK_INTERVAL" default:"5s"`
}

// Enabled сообщает, задан ли порт.
func (c Config) Enabled() bool {
	return c.Port != ""
}

// Addr возвращает адрес "host:port".
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Pinger — зависимость, от которой зависит статус здоровья.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server — gRPC-сервер со стандартным health-сервисом. Статус обновляет Watch по пингу кэша.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	addr   string
	log    *slog.Logger
}

// NewServer создаёт gRPC-сервер и регистрирует grpc.health.v1.Health. Логирующий интерцептор пишет метод, latency_ms и grpc_code.
func NewServer(addr string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors.LoggingUnaryInterceptor(log)))
	h := health.NewServer()
	h.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(s, h)
	return &Server{grpc: s, health: h, addr: addr, log: log}
}

// Start слушает addr и принимает соединения (блокируется). Остановка через Stop().
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

// Serve принимает соединения на готовом listener (блокируется). Остановленный сервер — не ошибка.
func (s *Server) Serve(lis net.Listener) error {
	s.log.Info("grpc server listening", "addr", lis.Addr().String())
	if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Watch пингует dep раз в interval и выставляет SERVING/NOT_SERVING, пока не отменён ctx.
func (s *Server) Watch(ctx context.Context, dep Pinger, interval time.Duration) {
	s.check(ctx, dep)
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.check(ctx, dep)
		}
	}
}

func (s *Server) check(ctx context.Context, dep Pinger) {
	status := healthpb.HealthCheckResponse_SERVING
	if err := dep.Ping(ctx); err != nil {
		s.log.Warn("health check failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
	s.health.SetServingStatus("", status)
}

// Stop останавливает сервер (graceful).
func (s *Server) Stop(ctx context.Context) error {
	s.health.Shutdown()
	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.grpc.Stop()
		return ctx.Err()
	}
}
