package decorators

import (
	providercore "intrabar/pkg/provider/core"
)

// DecoratorConfig 装饰器组合配置
type DecoratorConfig struct {
	FrequencyControl *FrequencyControlConfig `mapstructure:"frequency_control"`
	CircuitBreaker   *CircuitBreakerConfig   `mapstructure:"circuit_breaker"`
}

// DefaultDecoratorConfig 默认装饰器组合配置
// 频率控制在内层，熔断器在外层
func DefaultDecoratorConfig() *DecoratorConfig {
	return &DecoratorConfig{
		FrequencyControl: DefaultFrequencyControlConfig(),
		CircuitBreaker:   DefaultCircuitBreakerConfig(),
	}
}

// CreateDecoratedProvider 按配置组装装饰后的日内行情提供商
func CreateDecoratedProvider(base providercore.IntradayProvider, config *DecoratorConfig) providercore.IntradayProvider {
	if config == nil {
		config = DefaultDecoratorConfig()
	}

	chain := NewDecoratorChain()

	if config.FrequencyControl != nil && config.FrequencyControl.Enabled {
		fc := config.FrequencyControl
		chain.AddDecorator(func(p providercore.IntradayProvider) providercore.IntradayProvider {
			return NewFrequencyControlProvider(p, fc)
		})
	}

	if config.CircuitBreaker != nil && config.CircuitBreaker.Enabled {
		cb := config.CircuitBreaker
		chain.AddDecorator(func(p providercore.IntradayProvider) providercore.IntradayProvider {
			return NewCircuitBreakerProvider(p, cb)
		})
	}

	return chain.Apply(base)
}
