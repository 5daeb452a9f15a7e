package provider

import (
	"fmt"
	"sync"

	"intrabar/pkg/provider/core"
)

// ProviderType 提供商类型
type ProviderType string

const (
	// TypeIntraday 日内行情数据提供商
	TypeIntraday ProviderType = "intraday"
	// TypeReference 参考数据提供商
	TypeReference ProviderType = "reference"
)

// Manager 提供商管理器
// 按名称注册和查找各类数据提供商
type Manager struct {
	intradayProviders  map[string]core.IntradayProvider
	referenceProviders map[string]core.ReferenceProvider

	mu sync.RWMutex
}

// NewManager 创建新的提供商管理器
func NewManager() *Manager {
	return &Manager{
		intradayProviders:  make(map[string]core.IntradayProvider),
		referenceProviders: make(map[string]core.ReferenceProvider),
	}
}

// RegisterIntradayProvider 注册日内行情数据提供商
func (m *Manager) RegisterIntradayProvider(name string, provider core.IntradayProvider) error {
	if name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if provider == nil {
		return fmt.Errorf("provider cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.intradayProviders[name] = provider
	return nil
}

// RegisterReferenceProvider 注册参考数据提供商
func (m *Manager) RegisterReferenceProvider(name string, provider core.ReferenceProvider) error {
	if name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if provider == nil {
		return fmt.Errorf("provider cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.referenceProviders[name] = provider
	return nil
}

// RegisterProvider 智能注册提供商
// 自动检测提供商实现的接口并注册到相应的类别
func (m *Manager) RegisterProvider(name string, provider interface{}) error {
	if name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if provider == nil {
		return fmt.Errorf("provider cannot be nil")
	}

	registered := false

	if intradayProvider, ok := provider.(core.IntradayProvider); ok {
		if err := m.RegisterIntradayProvider(name, intradayProvider); err != nil {
			return err
		}
		registered = true
	}

	if referenceProvider, ok := provider.(core.ReferenceProvider); ok {
		if err := m.RegisterReferenceProvider(name, referenceProvider); err != nil {
			return err
		}
		registered = true
	}

	if !registered {
		return fmt.Errorf("unsupported provider type: %T", provider)
	}
	return nil
}

// GetIntradayProvider 获取日内行情数据提供商
func (m *Manager) GetIntradayProvider(name string) (core.IntradayProvider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if provider, exists := m.intradayProviders[name]; exists {
		return provider, nil
	}
	return nil, fmt.Errorf("intraday provider '%s' not found", name)
}

// GetReferenceProvider 获取参考数据提供商
func (m *Manager) GetReferenceProvider(name string) (core.ReferenceProvider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if provider, exists := m.referenceProviders[name]; exists {
		return provider, nil
	}
	return nil, fmt.Errorf("reference provider '%s' not found", name)
}

// ListProviders 列出所有已注册的提供商
func (m *Manager) ListProviders() map[ProviderType][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[ProviderType][]string)

	var intradayNames []string
	for name := range m.intradayProviders {
		intradayNames = append(intradayNames, name)
	}
	if len(intradayNames) > 0 {
		result[TypeIntraday] = intradayNames
	}

	var referenceNames []string
	for name := range m.referenceProviders {
		referenceNames = append(referenceNames, name)
	}
	if len(referenceNames) > 0 {
		result[TypeReference] = referenceNames
	}

	return result
}

// UnregisterProvider 注销提供商
func (m *Manager) UnregisterProvider(name string) error {
	if name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	found := false

	if _, exists := m.intradayProviders[name]; exists {
		delete(m.intradayProviders, name)
		found = true
	}

	if _, exists := m.referenceProviders[name]; exists {
		delete(m.referenceProviders, name)
		found = true
	}

	if !found {
		return fmt.Errorf("provider '%s' not found", name)
	}
	return nil
}

// Close 关闭管理器，清理所有提供商资源
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error

	closed := make(map[interface{}]bool)
	for name, provider := range m.intradayProviders {
		if closable, ok := provider.(core.Closable); ok && !closed[provider] {
			closed[provider] = true
			if err := closable.Close(); err != nil {
				errs = append(errs, fmt.Errorf("error closing intraday provider '%s': %w", name, err))
			}
		}
	}

	for name, provider := range m.referenceProviders {
		if closable, ok := provider.(core.Closable); ok && !closed[provider] {
			closed[provider] = true
			if err := closable.Close(); err != nil {
				errs = append(errs, fmt.Errorf("error closing reference provider '%s': %w", name, err))
			}
		}
	}

	m.intradayProviders = make(map[string]core.IntradayProvider)
	m.referenceProviders = make(map[string]core.ReferenceProvider)

	if len(errs) > 0 {
		return fmt.Errorf("errors occurred while closing providers: %v", errs)
	}
	return nil
}
