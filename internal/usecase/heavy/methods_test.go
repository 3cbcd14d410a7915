package heavy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"heavyCalc/internal/domain"
	"heavyCalc/internal/mocks"
)

// newTestLogger создаёт логгер для тестов (выводит только ошибки, чтобы не засорять вывод).
func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testConfig() Config {
	return Config{Key: "heavy_result", TTL: 60 * time.Second, WritePolicy: WritePolicyFail, Dedup: true}
}

// outcome — готовый канал исполнителя с одним результатом.
func outcome(total int64, err error) <-chan domain.Outcome {
	ch := make(chan domain.Outcome, 1)
	ch <- domain.Outcome{Result: domain.ComputationResult{Total: total}, Err: err}
	close(ch)
	return ch
}

var errDown = fmt.Errorf("%w: dial tcp: connection refused", domain.ErrCacheUnavailable)

// Cache Hit — значение из кэша, исполнитель не вызывается.
func TestHeavy_CacheHit(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockCache := mocks.NewMockICache(ctrl)
	mockExec := mocks.NewMockIExecutor(ctrl)

	mockCache.EXPECT().Get(gomock.Any(), "heavy_result").Return("50000000", true, nil)

	uc := New(mockCache, mockExec, nil, testConfig(), newTestLogger())

	res, err := uc.Heavy(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "50000000", res.Value)
	assert.Equal(t, domain.SourceCache, res.Source)
	assert.Equal(t, os.Getpid(), res.ServedBy)
}

// Cache Miss — полный флоу: get → вычисление → setex с TTL 60s → брокер.
func TestHeavy_CacheMiss(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockCache := mocks.NewMockICache(ctrl)
	mockExec := mocks.NewMockIExecutor(ctrl)
	mockBroker := mocks.NewMockIProducer(ctrl)

	gomock.InOrder(
		mockCache.EXPECT().Get(gomock.Any(), "heavy_result").Return("", false, nil),
		mockExec.EXPECT().Run(gomock.Any()).Return(outcome(50_000_000, nil)),
		mockCache.EXPECT().SetEx(gomock.Any(), "heavy_result", "50000000", 60*time.Second).Return(nil),
		mockBroker.EXPECT().Send(gomock.Any(), []byte("heavy_result"), gomock.Any()).
			DoAndReturn(func(_ context.Context, _, value []byte) error {
				var ev domain.ComputedEvent
				require.NoError(t, json.Unmarshal(value, &ev))
				assert.Equal(t, "50000000", ev.Value)
				assert.Equal(t, "heavy_result", ev.Key)
				return nil
			}),
	)

	uc := New(mockCache, mockExec, mockBroker, testConfig(), newTestLogger())

	res, err := uc.Heavy(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "50000000", res.Value)
	assert.Equal(t, domain.SourceComputed, res.Source)
}

// Ключ кэша — параметр, а не литерал.
func TestHeavy_CustomKey(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockCache := mocks.NewMockICache(ctrl)
	mockExec := mocks.NewMockIExecutor(ctrl)

	mockCache.EXPECT().Get(gomock.Any(), "other_key").Return("", false, nil)
	mockExec.EXPECT().Run(gomock.Any()).Return(outcome(3, nil))
	mockCache.EXPECT().SetEx(gomock.Any(), "other_key", "3", 5*time.Second).Return(nil)

	cfg := testConfig()
	cfg.Key = "other_key"
	cfg.TTL = 5 * time.Second
	uc := New(mockCache, mockExec, nil, cfg, newTestLogger())

	res, err := uc.Heavy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "3", res.Value)
}

// Кэш недоступен на чтении — ошибка, вычисление не запускается, промахом это не считается.
func TestHeavy_CacheUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockCache := mocks.NewMockICache(ctrl)
	mockExec := mocks.NewMockIExecutor(ctrl)

	mockCache.EXPECT().Get(gomock.Any(), "heavy_result").Return("", false, errDown)

	uc := New(mockCache, mockExec, nil, testConfig(), newTestLogger())

	res, err := uc.Heavy(context.Background())

	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrCacheUnavailable)
}

// После сбоя кэша следующий независимый запрос проходит.
func TestHeavy_RecoversAfterCacheFailure(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockCache := mocks.NewMockICache(ctrl)
	mockExec := mocks.NewMockIExecutor(ctrl)

	gomock.InOrder(
		mockCache.EXPECT().Get(gomock.Any(), "heavy_result").Return("", false, errDown),
		mockCache.EXPECT().Get(gomock.Any(), "heavy_result").Return("50000000", true, nil),
	)

	uc := New(mockCache, mockExec, nil, testConfig(), newTestLogger())

	_, err := uc.Heavy(context.Background())
	require.Error(t, err)

	res, err := uc.Heavy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "50000000", res.Value)
}

// Исполнитель упал — ExecutionError, в кэш ничего не пишется.
func TestHeavy_ExecutionError(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockCache := mocks.NewMockICache(ctrl)
	mockExec := mocks.NewMockIExecutor(ctrl)

	mockCache.EXPECT().Get(gomock.Any(), "heavy_result").Return("", false, nil)
	mockExec.EXPECT().Run(gomock.Any()).Return(outcome(0, domain.NewExecutionError("workload crashed: %s", "boom")))
	// SetEx НЕ вызывается

	uc := New(mockCache, mockExec, nil, testConfig(), newTestLogger())

	res, err := uc.Heavy(context.Background())

	assert.Nil(t, res)
	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Contains(t, execErr.Reason, "boom")
}

func TestHeavy_ExecutorClosedWithoutResult(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockCache := mocks.NewMockICache(ctrl)
	mockExec := mocks.NewMockIExecutor(ctrl)

	empty := make(chan domain.Outcome)
	close(empty)
	mockCache.EXPECT().Get(gomock.Any(), "heavy_result").Return("", false, nil)
	mockExec.EXPECT().Run(gomock.Any()).Return((<-chan domain.Outcome)(empty))

	uc := New(mockCache, mockExec, nil, testConfig(), newTestLogger())

	_, err := uc.Heavy(context.Background())
	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)
}

// Политика записи: fail и respond при упавшем SETEX.
func TestHeavy_WritePolicy(t *testing.T) {
	tests := []struct {
		name    string
		policy  WritePolicy
		wantErr bool
	}{
		{name: "fail — запрос падает", policy: WritePolicyFail, wantErr: true},
		{name: "respond — отвечаем значением", policy: WritePolicyRespond, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			mockCache := mocks.NewMockICache(ctrl)
			mockExec := mocks.NewMockIExecutor(ctrl)

			mockCache.EXPECT().Get(gomock.Any(), "heavy_result").Return("", false, nil)
			mockExec.EXPECT().Run(gomock.Any()).Return(outcome(50_000_000, nil))
			mockCache.EXPECT().SetEx(gomock.Any(), "heavy_result", "50000000", 60*time.Second).Return(errDown)

			cfg := testConfig()
			cfg.WritePolicy = tt.policy
			uc := New(mockCache, mockExec, nil, cfg, newTestLogger())

			res, err := uc.Heavy(context.Background())
			if tt.wantErr {
				assert.Nil(t, res)
				assert.ErrorIs(t, err, domain.ErrCacheUnavailable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "50000000", res.Value)
			assert.Equal(t, domain.SourceComputed, res.Source)
		})
	}
}

// Ошибка брокера не валит запрос.
func TestHeavy_BrokerFailureIgnored(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockCache := mocks.NewMockICache(ctrl)
	mockExec := mocks.NewMockIExecutor(ctrl)
	mockBroker := mocks.NewMockIProducer(ctrl)

	mockCache.EXPECT().Get(gomock.Any(), "heavy_result").Return("", false, nil)
	mockExec.EXPECT().Run(gomock.Any()).Return(outcome(1, nil))
	mockCache.EXPECT().SetEx(gomock.Any(), "heavy_result", "1", 60*time.Second).Return(nil)
	mockBroker.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("kafka down"))

	uc := New(mockCache, mockExec, mockBroker, testConfig(), newTestLogger())

	res, err := uc.Heavy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1", res.Value)
}

// Клиент ушёл до конца вычисления: запрос завершается ошибкой контекста, а значение всё равно попадает в кэш.
func TestHeavy_ClientLeavesComputationContinues(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockCache := mocks.NewMockICache(ctrl)
	mockExec := mocks.NewMockIExecutor(ctrl)

	pending := make(chan domain.Outcome, 1)
	stored := make(chan struct{})

	mockCache.EXPECT().Get(gomock.Any(), "heavy_result").Return("", false, nil)
	mockExec.EXPECT().Run(gomock.Any()).Return((<-chan domain.Outcome)(pending))
	mockCache.EXPECT().SetEx(gomock.Any(), "heavy_result", "9", 60*time.Second).
		DoAndReturn(func(ctx context.Context, _, _ string, _ time.Duration) error {
			assert.NoError(t, ctx.Err(), "запись идёт на отвязанном контексте")
			close(stored)
			return nil
		})

	uc := New(mockCache, mockExec, nil, testConfig(), newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := uc.Heavy(ctx)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	pending <- domain.Outcome{Result: domain.ComputationResult{Total: 9}}
	close(pending)

	select {
	case <-stored:
	case <-time.After(2 * time.Second):
		t.Fatal("computed value was not stored after the client left")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "валидный", mutate: func(*Config) {}},
		{name: "пустой ключ", mutate: func(c *Config) { c.Key = "" }, wantErr: true},
		{name: "нулевой TTL", mutate: func(c *Config) { c.TTL = 0 }, wantErr: true},
		{name: "неизвестная политика", mutate: func(c *Config) { c.WritePolicy = "retry" }, wantErr: true},
		{name: "respond", mutate: func(c *Config) { c.WritePolicy = WritePolicyRespond }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
