package decorators

import (
	"context"
	"fmt"
	"sync"
	"time"

	"intrabar/pkg/core"
	"intrabar/pkg/logger"
	providercore "intrabar/pkg/provider/core"

	"github.com/sony/gobreaker"
)

// CircuitBreakerProvider 熔断器装饰器
// 使用 sony/gobreaker 提供熔断功能
type CircuitBreakerProvider struct {
	*IntradayBaseDecorator

	cb     *gobreaker.CircuitBreaker
	config *CircuitBreakerConfig

	mu    sync.RWMutex
	stats CircuitBreakerStats
}

// CircuitBreakerConfig 熔断器配置
type CircuitBreakerConfig struct {
	Name        string        `mapstructure:"name"`          // 熔断器名称
	MaxRequests uint32        `mapstructure:"max_requests"`  // 半开状态下的最大请求数
	Interval    time.Duration `mapstructure:"interval"`      // 统计窗口时间
	Timeout     time.Duration `mapstructure:"timeout"`       // 熔断器打开后的超时时间
	ReadyToTrip uint32        `mapstructure:"ready_to_trip"` // 触发熔断的失败次数阈值
	Enabled     bool          `mapstructure:"enabled"`       // 是否启用熔断器
}

// CircuitBreakerStats 熔断器统计信息
type CircuitBreakerStats struct {
	TotalRequests      int64     `json:"total_requests"`
	SuccessfulRequests int64     `json:"successful_requests"`
	FailedRequests     int64     `json:"failed_requests"`
	LastFailure        time.Time `json:"last_failure"`
}

// DefaultCircuitBreakerConfig 默认熔断器配置
func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		Name:        "IntradayProvider",
		MaxRequests: 5,                // 半开状态允许5个请求
		Interval:    60 * time.Second, // 60秒统计窗口
		Timeout:     30 * time.Second, // 熔断30秒
		ReadyToTrip: 5,                // 5次失败触发熔断
		Enabled:     true,
	}
}

// NewCircuitBreakerProvider 创建熔断器装饰器
func NewCircuitBreakerProvider(p providercore.IntradayProvider, config *CircuitBreakerConfig) *CircuitBreakerProvider {
	if config == nil {
		config = DefaultCircuitBreakerConfig()
	}

	log := logger.WithComponent("CircuitBreaker")

	settings := gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// 当连续失败次数达到阈值时触发熔断
			return counts.ConsecutiveFailures >= config.ReadyToTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnf("熔断器 %s 状态从 %v 变更为 %v", name, from, to)
		},
	}

	return &CircuitBreakerProvider{
		IntradayBaseDecorator: NewIntradayBaseDecorator(p),
		cb:                    gobreaker.NewCircuitBreaker(settings),
		config:                config,
	}
}

// Name 返回装饰器名称
func (c *CircuitBreakerProvider) Name() string {
	return fmt.Sprintf("CircuitBreaker(%s)", c.intradayProvider.Name())
}

// IsHealthy 检查健康状态
func (c *CircuitBreakerProvider) IsHealthy() bool {
	if !c.config.Enabled {
		return c.intradayProvider.IsHealthy()
	}

	// 熔断器打开状态视为不健康
	return c.cb.State() != gobreaker.StateOpen && c.intradayProvider.IsHealthy()
}

// FetchMinuteBars 实现带熔断器的分钟K线获取
func (c *CircuitBreakerProvider) FetchMinuteBars(ctx context.Context, ric string, start, end time.Time) ([]core.Bar, error) {
	if !c.config.Enabled {
		return c.intradayProvider.FetchMinuteBars(ctx, ric, start, end)
	}

	c.mu.Lock()
	c.stats.TotalRequests++
	c.mu.Unlock()

	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.intradayProvider.FetchMinuteBars(ctx, ric, start, end)
	})

	c.handleResult(err)

	if err != nil {
		return nil, err
	}

	bars, ok := result.([]core.Bar)
	if !ok {
		err := fmt.Errorf("熔断器返回数据类型错误")
		c.handleResult(err)
		return nil, err
	}

	return bars, nil
}

// handleResult 处理请求结果和更新统计信息
func (c *CircuitBreakerProvider) handleResult(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.stats.FailedRequests++
		c.stats.LastFailure = time.Now()
	} else {
		c.stats.SuccessfulRequests++
	}
}

// GetState 获取熔断器当前状态
func (c *CircuitBreakerProvider) GetState() gobreaker.State {
	return c.cb.State()
}

// GetStats 获取统计信息
func (c *CircuitBreakerProvider) GetStats() CircuitBreakerStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// IsOpen 检查熔断器是否处于打开状态
func (c *CircuitBreakerProvider) IsOpen() bool {
	return c.cb.State() == gobreaker.StateOpen
}

// SetEnabled 设置是否启用熔断器
func (c *CircuitBreakerProvider) SetEnabled(enabled bool) {
	c.config.Enabled = enabled
}
