package core

import (
	"context"
	"time"

	"intrabar/pkg/core"
)

// IntradayProvider 日内行情提供商接口
// 用于获取仪器在一个UTC时间窗口内的分钟K线
type IntradayProvider interface {
	Provider

	// FetchMinuteBars 获取分钟K线
	// ric: 仪器代码
	// start: 窗口开始时间 (UTC)
	// end: 窗口结束时间 (UTC)
	// 返回的K线按时间升序排列
	FetchMinuteBars(ctx context.Context, ric string, start, end time.Time) ([]core.Bar, error)

	// IsRICSupported 检查是否支持该仪器代码
	IsRICSupported(ric string) bool
}

// ReferenceProvider 参考数据提供商接口
// 用于查询仪器的名称与交易时区
type ReferenceProvider interface {
	Provider

	// FetchInstrumentInfo 查询仪器参考信息
	FetchInstrumentInfo(ctx context.Context, ric string) (*core.InstrumentInfo, error)
}

// IntradayBatchProvider 批量日内行情提供商接口
// 支持一次请求多个交易日窗口
type IntradayBatchProvider interface {
	IntradayProvider

	// FetchMinuteBarsBatch 批量获取分钟K线
	// windows: 每个元素是一个 [start, end] UTC 窗口
	// 返回值按窗口开始时间键值
	FetchMinuteBarsBatch(ctx context.Context, ric string, windows [][2]time.Time) (map[time.Time][]core.Bar, error)
}
