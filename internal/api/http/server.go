package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"heavyCalc/internal/api/http/middlewares"
)

// ServerConfig — настройки HTTP-сервера. Переменные: HEAVY_SERVER_HOST, HEAVY_SERVER_PORT и т.д.
type ServerConfig struct {
	Host         string        `envconfig:"HOST" default:"0.0.0.0"`
	Port         string        `envconfig:"PORT" default:"3000"`
	KeepAlive    time.Duration `envconfig:"KEEP_ALIVE" default:"50s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"60s"`
	// TrustedProxies — CIDR/IP через запятую, чьим X-Forwarded-For верим при определении IP клиента. Пусто — никому.
	TrustedProxies string `envconfig:"TRUSTED_PROXIES" default:""`
	CORSOrigins    string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000,http://127.0.0.1:3000"`
}

// Addr возвращает адрес "host:port".
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Controller — контракт: контроллер регистрирует свои маршруты на роутере.
type Controller interface {
	RegisterRoutes(r *gin.Engine)
}

// Server — API-сервер: конфиг, общие мидлвари и список контроллеров.
type Server struct {
	cfg         ServerConfig
	controllers []Controller
	middlewares []gin.HandlerFunc
	srv         *http.Server
	log         *slog.Logger
}

// NewServer создаёт сервер с конфигом.
func NewServer(cfg ServerConfig, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{cfg: cfg, log: log}
}

// AddController добавляет один или несколько контроллеров.
func (s *Server) AddController(c ...Controller) {
	s.controllers = append(s.controllers, c...)
}

// Use добавляет мидлвари, общие для всех маршрутов (после recovery/логирования).
func (s *Server) Use(m ...gin.HandlerFunc) {
	s.middlewares = append(s.middlewares, m...)
}

// Router собирает gin-роутер со всеми мидлварями и маршрутами.
func (s *Server) Router() (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	if err := r.SetTrustedProxies(splitList(s.cfg.TrustedProxies)); err != nil {
		return nil, err
	}
	r.Use(gin.Recovery())
	if origins := splitList(s.cfg.CORSOrigins); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Accept"},
			ExposeHeaders:    []string{"RateLimit-Limit", "RateLimit-Remaining", "RateLimit-Reset", "Retry-After"},
			AllowCredentials: false,
		}))
	}
	r.Use(middlewares.RequestLogger(s.log))
	r.Use(s.middlewares...)
	for _, c := range s.controllers {
		c.RegisterRoutes(r)
	}
	return r, nil
}

// Start поднимает роутер, запускает сервер и блокируется до отмены ctx (SIGINT/SIGTERM), затем делает graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	r, err := s.Router()
	if err != nil {
		return err
	}

	s.srv = &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      r,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.KeepAlive,
	}

	s.log.Info("http server listening", "addr", s.srv.Addr)
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// splitList разбирает список через запятую, пустые элементы отбрасываются.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
