package decorators

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intrabar/pkg/core"
	providercore "intrabar/pkg/provider/core"
)

// mockIntradayProvider 测试用日内行情提供商
type mockIntradayProvider struct {
	calls    int
	failNext int   // 接下来失败的次数
	err      error // 失败时返回的错误
	bars     []core.Bar
}

func (m *mockIntradayProvider) Name() string                { return "mock" }
func (m *mockIntradayProvider) GetRateLimit() time.Duration { return 0 }
func (m *mockIntradayProvider) IsHealthy() bool             { return true }
func (m *mockIntradayProvider) IsRICSupported(string) bool  { return true }

func (m *mockIntradayProvider) FetchMinuteBars(ctx context.Context, ric string, start, end time.Time) ([]core.Bar, error) {
	m.calls++
	if m.failNext > 0 {
		m.failNext--
		if m.err != nil {
			return nil, m.err
		}
		return nil, errors.New("mock failure")
	}
	return m.bars, nil
}

func TestBaseDecorator(t *testing.T) {
	t.Run("委托基础提供商", func(t *testing.T) {
		mock := &mockIntradayProvider{bars: []core.Bar{{RIC: "AAPL.O", Price: 191.0}}}
		d := NewIntradayBaseDecorator(mock)

		assert.Equal(t, "mock", d.Name())
		assert.True(t, d.IsHealthy())
		assert.True(t, d.IsRICSupported("AAPL.O"))

		bars, err := d.FetchMinuteBars(context.Background(), "AAPL.O", time.Now(), time.Now())
		require.NoError(t, err)
		assert.Len(t, bars, 1)
	})
}

func TestDecoratorChain(t *testing.T) {
	t.Run("按添加顺序由内向外包装", func(t *testing.T) {
		mock := &mockIntradayProvider{}

		chain := NewDecoratorChain()
		chain.AddDecorator(func(p providercore.IntradayProvider) providercore.IntradayProvider {
			return NewFrequencyControlProvider(p, &FrequencyControlConfig{Enabled: true, MaxRetries: 1})
		})
		chain.AddDecorator(func(p providercore.IntradayProvider) providercore.IntradayProvider {
			return NewCircuitBreakerProvider(p, nil)
		})

		decorated := chain.Apply(mock)
		assert.Equal(t, "CircuitBreaker(FrequencyControl(mock))", decorated.Name())
	})
}

func TestCreateDecoratedProvider(t *testing.T) {
	t.Run("默认配置", func(t *testing.T) {
		mock := &mockIntradayProvider{}
		decorated := CreateDecoratedProvider(mock, nil)
		assert.Equal(t, "CircuitBreaker(FrequencyControl(mock))", decorated.Name())
	})

	t.Run("全部禁用时返回原始提供商", func(t *testing.T) {
		mock := &mockIntradayProvider{}
		decorated := CreateDecoratedProvider(mock, &DecoratorConfig{
			FrequencyControl: &FrequencyControlConfig{Enabled: false},
			CircuitBreaker:   &CircuitBreakerConfig{Enabled: false},
		})
		assert.Equal(t, "mock", decorated.Name())
	})
}

func TestCircuitBreakerProvider(t *testing.T) {
	t.Run("成功请求透传", func(t *testing.T) {
		mock := &mockIntradayProvider{bars: []core.Bar{{RIC: "AAPL.O"}}}
		cb := NewCircuitBreakerProvider(mock, nil)

		bars, err := cb.FetchMinuteBars(context.Background(), "AAPL.O", time.Now(), time.Now())
		require.NoError(t, err)
		assert.Len(t, bars, 1)
		assert.False(t, cb.IsOpen())

		stats := cb.GetStats()
		assert.Equal(t, int64(1), stats.TotalRequests)
		assert.Equal(t, int64(1), stats.SuccessfulRequests)
	})

	t.Run("连续失败触发熔断", func(t *testing.T) {
		mock := &mockIntradayProvider{failNext: 100}
		config := DefaultCircuitBreakerConfig()
		config.ReadyToTrip = 3
		cb := NewCircuitBreakerProvider(mock, config)

		for i := 0; i < 3; i++ {
			_, err := cb.FetchMinuteBars(context.Background(), "AAPL.O", time.Now(), time.Now())
			assert.Error(t, err)
		}

		assert.True(t, cb.IsOpen())
		assert.False(t, cb.IsHealthy())

		// 熔断打开后请求不再到达基础提供商
		callsBefore := mock.calls
		_, err := cb.FetchMinuteBars(context.Background(), "AAPL.O", time.Now(), time.Now())
		assert.Error(t, err)
		assert.Equal(t, callsBefore, mock.calls)
	})

	t.Run("禁用时直接透传", func(t *testing.T) {
		mock := &mockIntradayProvider{}
		config := DefaultCircuitBreakerConfig()
		config.Enabled = false
		cb := NewCircuitBreakerProvider(mock, config)

		_, err := cb.FetchMinuteBars(context.Background(), "AAPL.O", time.Now(), time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(0), cb.GetStats().TotalRequests)
	})
}

func TestFrequencyControlProvider(t *testing.T) {
	t.Run("网络错误自动重试", func(t *testing.T) {
		mock := &mockIntradayProvider{
			failNext: 1,
			err:      fmt.Errorf("request timeout"),
			bars:     []core.Bar{{RIC: "AAPL.O"}},
		}
		fc := NewFrequencyControlProvider(mock, &FrequencyControlConfig{
			MinInterval: 0,
			MaxRetries:  2,
			Enabled:     true,
		})

		bars, err := fc.FetchMinuteBars(context.Background(), "AAPL.O", time.Now(), time.Now())
		require.NoError(t, err)
		assert.Len(t, bars, 1)
		assert.Equal(t, 2, mock.calls, "失败一次后应重试成功")
	})

	t.Run("致命错误不重试", func(t *testing.T) {
		mock := &mockIntradayProvider{
			failNext: 10,
			err:      fmt.Errorf("HTTP status error: 401 unauthorized"),
		}
		fc := NewFrequencyControlProvider(mock, &FrequencyControlConfig{
			MinInterval: 0,
			MaxRetries:  3,
			Enabled:     true,
		})

		_, err := fc.FetchMinuteBars(context.Background(), "AAPL.O", time.Now(), time.Now())
		assert.Error(t, err)
		assert.Equal(t, 1, mock.calls, "鉴权错误不应重试")
	})

	t.Run("无效请求不重试", func(t *testing.T) {
		mock := &mockIntradayProvider{
			failNext: 10,
			err:      fmt.Errorf("bad request: interval not supported"),
		}
		fc := NewFrequencyControlProvider(mock, &FrequencyControlConfig{
			MinInterval: 0,
			MaxRetries:  3,
			Enabled:     true,
		})

		_, err := fc.FetchMinuteBars(context.Background(), "AAPL.O", time.Now(), time.Now())
		assert.Error(t, err)
		assert.Equal(t, 1, mock.calls)
	})

	t.Run("最小间隔生效", func(t *testing.T) {
		mock := &mockIntradayProvider{}
		fc := NewFrequencyControlProvider(mock, &FrequencyControlConfig{
			MinInterval: 50 * time.Millisecond,
			MaxRetries:  1,
			Enabled:     true,
		})

		start := time.Now()
		_, err := fc.FetchMinuteBars(context.Background(), "AAPL.O", time.Now(), time.Now())
		require.NoError(t, err)
		_, err = fc.FetchMinuteBars(context.Background(), "AAPL.O", time.Now(), time.Now())
		require.NoError(t, err)

		assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	})
}
