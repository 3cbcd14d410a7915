package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heavyCalc/internal/ratelimit"
	"heavyCalc/internal/usecase/heavy"
)

func TestLoadCfg_Defaults(t *testing.T) {
	t.Setenv(envFileVar, filepath.Join(t.TempDir(), "missing.env"))

	cfg, err := LoadCfg()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, 50*time.Second, cfg.Server.KeepAlive)
	assert.Equal(t, CacheDriverRedis, cfg.Cache.Driver)
	assert.Equal(t, "heavy_result", cfg.Cache.Key)
	assert.Equal(t, 60*time.Second, cfg.Cache.TTL)
	assert.Equal(t, heavy.WritePolicyFail, cfg.Cache.WritePolicy)
	assert.True(t, cfg.Cache.Dedup)
	assert.Equal(t, int64(50_000_000), cfg.Compute.Iterations)
	assert.Equal(t, int64(60000), cfg.RateLimit.WindowMs)
	assert.Equal(t, 5, cfg.RateLimit.Max)
	assert.Equal(t, ratelimit.StoreMemory, cfg.RateLimit.Store)
	assert.Equal(t, "6379", cfg.Redis.Port)
	assert.False(t, cfg.Kafka.Enabled())
	assert.False(t, cfg.Grpc.Enabled())
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadCfg_Env(t *testing.T) {
	t.Setenv(envFileVar, filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("HEAVY_SERVER_PORT", "8081")
	t.Setenv("HEAVY_CACHE_DRIVER", "memory")
	t.Setenv("HEAVY_CACHE_KEY", "other_key")
	t.Setenv("HEAVY_CACHE_WRITE_POLICY", "respond")
	t.Setenv("HEAVY_CACHE_DEDUP", "false")
	t.Setenv("HEAVY_COMPUTE_ITERATIONS", "1000")
	t.Setenv("HEAVY_RATELIMIT_MAX", "2")
	t.Setenv("HEAVY_RATELIMIT_WINDOW_MS", "1000")
	t.Setenv("HEAVY_KAFKA_BROKERS", "localhost:9092")
	t.Setenv("HEAVY_GRPC_PORT", "9090")

	cfg, err := LoadCfg()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, CacheDriverMemory, cfg.Cache.Driver)
	assert.Equal(t, "other_key", cfg.Cache.Key)
	assert.Equal(t, heavy.WritePolicyRespond, cfg.Cache.WritePolicy)
	assert.False(t, cfg.Cache.Dedup)
	assert.Equal(t, int64(1000), cfg.Compute.Iterations)
	assert.Equal(t, 2, cfg.RateLimit.Max)
	assert.Equal(t, time.Second, cfg.RateLimit.Window())
	assert.True(t, cfg.Kafka.Enabled())
	assert.True(t, cfg.Grpc.Enabled())
}

func TestLoadCfg_EnvFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(file, []byte("HEAVY_CACHE_KEY=from_file\nHEAVY_SERVER_PORT=4000\n"), 0o600))
	t.Setenv(envFileVar, file)
	// godotenv не перезаписывает уже заданные переменные.
	t.Setenv("HEAVY_SERVER_PORT", "5000")
	t.Cleanup(func() { _ = os.Unsetenv("HEAVY_CACHE_KEY") })

	cfg, err := LoadCfg()
	require.NoError(t, err)

	assert.Equal(t, "from_file", cfg.Cache.Key)
	assert.Equal(t, "5000", cfg.Server.Port)
}

func TestLoadCfg_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"неизвестный драйвер", map[string]string{"HEAVY_CACHE_DRIVER": "memcached"}},
		{"неизвестная политика записи", map[string]string{"HEAVY_CACHE_WRITE_POLICY": "retry"}},
		{"нулевой ttl", map[string]string{"HEAVY_CACHE_TTL": "0s"}},
		{"неизвестное хранилище окон", map[string]string{"HEAVY_RATELIMIT_STORE": "etcd"}},
		{"окна в redis без redis", map[string]string{"HEAVY_RATELIMIT_STORE": "redis", "HEAVY_CACHE_DRIVER": "memory"}},
		{"нулевой max", map[string]string{"HEAVY_RATELIMIT_MAX": "0"}},
		{"не число", map[string]string{"HEAVY_RATELIMIT_MAX": "five"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(envFileVar, filepath.Join(t.TempDir(), "missing.env"))
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadCfg()
			assert.Error(t, err)
		})
	}
}
