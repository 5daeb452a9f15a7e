package provider

import (
	"intrabar/pkg/provider/core"
)

// 类型别名，方便调用方只导入本包
type (
	// Provider 数据提供商基础接口
	Provider = core.Provider

	// IntradayProvider 日内行情提供商接口
	IntradayProvider = core.IntradayProvider

	// ReferenceProvider 参考数据提供商接口
	ReferenceProvider = core.ReferenceProvider

	// Configurable 可配置接口
	Configurable = core.Configurable

	// Closable 可关闭接口
	Closable = core.Closable
)
