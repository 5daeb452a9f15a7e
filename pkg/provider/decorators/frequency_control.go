package decorators

import (
	"context"
	"fmt"
	"sync"
	"time"

	"intrabar/pkg/core"
	"intrabar/pkg/limiter"
	providercore "intrabar/pkg/provider/core"
)

// FrequencyControlProvider 频率控制装饰器
// 基于错误分类器在请求间隔与重试策略上做智能控制
type FrequencyControlProvider struct {
	*IntradayBaseDecorator

	classifier *limiter.ErrorClassifier

	// 配置参数
	minInterval time.Duration // 最小请求间隔
	maxRetries  int           // 最大重试次数

	// 运行时状态
	mu          sync.RWMutex
	lastRequest time.Time
	isActive    bool
}

// FrequencyControlConfig 频率控制配置
type FrequencyControlConfig struct {
	MinInterval time.Duration `mapstructure:"min_interval"` // 最小请求间隔
	MaxRetries  int           `mapstructure:"max_retries"`  // 最大重试次数
	Enabled     bool          `mapstructure:"enabled"`      // 是否启用
}

// DefaultFrequencyControlConfig 默认频率控制配置
func DefaultFrequencyControlConfig() *FrequencyControlConfig {
	return &FrequencyControlConfig{
		MinInterval: 200 * time.Millisecond,
		MaxRetries:  3,
		Enabled:     true,
	}
}

// NewFrequencyControlProvider 创建频率控制装饰器
func NewFrequencyControlProvider(p providercore.IntradayProvider, config *FrequencyControlConfig) *FrequencyControlProvider {
	if config == nil {
		config = DefaultFrequencyControlConfig()
	}

	return &FrequencyControlProvider{
		IntradayBaseDecorator: NewIntradayBaseDecorator(p),
		classifier:            limiter.NewErrorClassifier(),
		minInterval:           config.MinInterval,
		maxRetries:            config.MaxRetries,
		isActive:              config.Enabled,
	}
}

// Name 返回装饰器名称
func (f *FrequencyControlProvider) Name() string {
	return fmt.Sprintf("FrequencyControl(%s)", f.intradayProvider.Name())
}

// GetRateLimit 返回频率限制
func (f *FrequencyControlProvider) GetRateLimit() time.Duration {
	return f.minInterval
}

// FetchMinuteBars 实现带频率控制的分钟K线获取
func (f *FrequencyControlProvider) FetchMinuteBars(ctx context.Context, ric string, start, end time.Time) ([]core.Bar, error) {
	if !f.isActive {
		return f.intradayProvider.FetchMinuteBars(ctx, ric, start, end)
	}

	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if err := f.enforceFrequencyLimit(ctx); err != nil {
			return nil, err
		}

		bars, err := f.intradayProvider.FetchMinuteBars(ctx, ric, start, end)
		if err == nil {
			return bars, nil
		}
		lastErr = err

		// 根据错误级别决定是否重试
		level := f.classifier.Classify(err)
		shouldRetry, waitDuration := f.classifier.GetRetryStrategy(level, attempt)
		if !shouldRetry {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(waitDuration):
		}
	}

	return nil, fmt.Errorf("已达到最大重试次数 (%d): %w", f.maxRetries, lastErr)
}

// enforceFrequencyLimit 执行频率限制
func (f *FrequencyControlProvider) enforceFrequencyLimit(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	elapsed := time.Since(f.lastRequest)
	if elapsed < f.minInterval && !f.lastRequest.IsZero() {
		waitTime := f.minInterval - elapsed

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	f.lastRequest = time.Now()
	return nil
}

// SetMinInterval 设置最小请求间隔
func (f *FrequencyControlProvider) SetMinInterval(interval time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.minInterval = interval
}

// SetMaxRetries 设置最大重试次数
func (f *FrequencyControlProvider) SetMaxRetries(retries int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.maxRetries = retries
}

// SetEnabled 设置是否启用频率控制
func (f *FrequencyControlProvider) SetEnabled(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.isActive = enabled
}

// Reset 重置频率控制状态（测试用）
func (f *FrequencyControlProvider) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastRequest = time.Time{}
}
