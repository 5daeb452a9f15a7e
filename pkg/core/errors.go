package core

import "errors"

// 定义核心错误
var (
	// ErrInvalidRIC 无效的仪器代码错误
	ErrInvalidRIC = errors.New("invalid RIC")

	// ErrNoDates 日期列表为空错误
	ErrNoDates = errors.New("dates list is empty")

	// ErrBadTimeRange 无效的时间范围错误
	ErrBadTimeRange = errors.New("time range must be an open/close pair with open before close")

	// ErrNoMeasures 未生成任何度量数据错误
	ErrNoMeasures = errors.New("failed to generate any measures")

	// ErrUnknownTimezone 无法解析仪器时区错误
	ErrUnknownTimezone = errors.New("unknown instrument timezone")

	// ErrUnknownMeasure 未知的度量类型错误
	ErrUnknownMeasure = errors.New("unknown measure type")

	// ErrProviderNotFound 提供商未找到错误
	ErrProviderNotFound = errors.New("provider not found")

	// ErrProviderNotHealthy 提供商不健康错误
	ErrProviderNotHealthy = errors.New("provider is not healthy")

	// ErrNoData 查询窗口内无数据错误
	ErrNoData = errors.New("no data returned for request window")
)
