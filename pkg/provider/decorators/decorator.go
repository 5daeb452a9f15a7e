package decorators

import (
	"context"
	"time"

	"intrabar/pkg/core"
	providercore "intrabar/pkg/provider/core"
)

// Decorator 装饰器基础接口
// 所有装饰器都应该实现此接口
type Decorator interface {
	providercore.Provider

	// GetBaseProvider 获取被装饰的基础 Provider
	GetBaseProvider() providercore.Provider
}

// IntradayDecorator 日内行情装饰器接口
type IntradayDecorator interface {
	providercore.IntradayProvider
	Decorator
}

// BaseDecorator 装饰器基础实现
// 提供通用的装饰器功能
type BaseDecorator struct {
	base providercore.Provider
}

// NewBaseDecorator 创建基础装饰器
func NewBaseDecorator(base providercore.Provider) *BaseDecorator {
	return &BaseDecorator{base: base}
}

// Name 实现 Provider 接口
func (d *BaseDecorator) Name() string {
	return d.base.Name()
}

// GetRateLimit 实现 Provider 接口
func (d *BaseDecorator) GetRateLimit() time.Duration {
	return d.base.GetRateLimit()
}

// IsHealthy 实现 Provider 接口
func (d *BaseDecorator) IsHealthy() bool {
	return d.base.IsHealthy()
}

// GetBaseProvider 实现 Decorator 接口
func (d *BaseDecorator) GetBaseProvider() providercore.Provider {
	return d.base
}

// IntradayBaseDecorator 日内行情装饰器基础实现
type IntradayBaseDecorator struct {
	*BaseDecorator
	intradayProvider providercore.IntradayProvider
}

// NewIntradayBaseDecorator 创建日内行情基础装饰器
func NewIntradayBaseDecorator(p providercore.IntradayProvider) *IntradayBaseDecorator {
	return &IntradayBaseDecorator{
		BaseDecorator:    NewBaseDecorator(p),
		intradayProvider: p,
	}
}

// FetchMinuteBars 实现 IntradayProvider 接口
func (d *IntradayBaseDecorator) FetchMinuteBars(ctx context.Context, ric string, start, end time.Time) ([]core.Bar, error) {
	return d.intradayProvider.FetchMinuteBars(ctx, ric, start, end)
}

// IsRICSupported 实现 IntradayProvider 接口
func (d *IntradayBaseDecorator) IsRICSupported(ric string) bool {
	return d.intradayProvider.IsRICSupported(ric)
}

// DecoratorChain 装饰器链
// 用于组合多个装饰器
type DecoratorChain struct {
	decorators []func(providercore.IntradayProvider) providercore.IntradayProvider
}

// NewDecoratorChain 创建装饰器链
func NewDecoratorChain() *DecoratorChain {
	return &DecoratorChain{
		decorators: make([]func(providercore.IntradayProvider) providercore.IntradayProvider, 0),
	}
}

// AddDecorator 添加装饰器到链中
func (dc *DecoratorChain) AddDecorator(decorator func(providercore.IntradayProvider) providercore.IntradayProvider) *DecoratorChain {
	dc.decorators = append(dc.decorators, decorator)
	return dc
}

// Apply 应用装饰器链到指定的 Provider
func (dc *DecoratorChain) Apply(base providercore.IntradayProvider) providercore.IntradayProvider {
	provider := base
	for _, decorator := range dc.decorators {
		provider = decorator(provider)
	}
	return provider
}
