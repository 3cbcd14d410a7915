package grpc

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

type switchPinger struct{ down atomic.Bool }

func (p *switchPinger) Ping(context.Context) error {
	if p.down.Load() {
		return errors.New("cache unavailable")
	}
	return nil
}

func startBufServer(t *testing.T) (*Server, healthpb.HealthClient) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := NewServer("bufnet", slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
	go func() { _ = s.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	return s, healthpb.NewHealthClient(conn)
}

func servingStatus(t *testing.T, c healthpb.HealthClient) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := c.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealth_FollowsCache(t *testing.T) {
	s, client := startBufServer(t)
	dep := &switchPinger{}

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, client), "до первой проверки — не готов")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.check(ctx, dep)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(t, client))

	dep.down.Store(true)
	s.check(ctx, dep)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(t, client))
}

func TestWatch_StopsOnCancel(t *testing.T) {
	s, client := startBufServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Watch(ctx, &switchPinger{}, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return servingStatus(t, client) == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch did not stop")
	}
}

func TestConfig(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	cfg := Config{Host: "0.0.0.0", Port: "9090"}
	assert.True(t, cfg.Enabled())
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
}
