package limiter

import (
	"strings"
	"time"
)

// ErrorLevel 定义错误的严重级别
type ErrorLevel int

const (
	LevelFatal   ErrorLevel = iota // 致命级，立即终止
	LevelNetwork                   // 网络或限流错误，可重试
	LevelInvalid                   // 无效请求，可忽略或特殊处理
	LevelUnknown                   // 未知错误
)

const (
	MaxRetries = 3                // 最大重试次数
	RetryBase1 = 2 * time.Second  // 第一次重试等待时间
	RetryBase2 = 5 * time.Second  // 第二次重试等待时间
	RetryBase3 = 10 * time.Second // 第三次重试等待时间
)

// ErrorClassifier 负责根据错误内容对行情服务错误进行分类
type ErrorClassifier struct {
	// 可以扩展添加自定义规则
}

// NewErrorClassifier 创建新的错误分类器
func NewErrorClassifier() *ErrorClassifier {
	return &ErrorClassifier{}
}

// Classify 根据错误内容分类错误级别
func (c *ErrorClassifier) Classify(err error) ErrorLevel {
	if err == nil {
		return LevelUnknown
	}

	msg := strings.ToLower(err.Error())

	// 致命级错误 - 立即终止
	switch {
	case strings.Contains(msg, "connection refused"):
		return LevelFatal
	case strings.Contains(msg, "no such host"),
		strings.Contains(msg, "dial tcp"):
		return LevelFatal
	case strings.Contains(msg, "401"),
		strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "invalid app key"):
		// 鉴权失败重试不会成功
		return LevelFatal
	case strings.Contains(msg, "403") && strings.Contains(msg, "forbidden"):
		return LevelFatal
	}

	// 网络/限流错误 - 可重试
	switch {
	case strings.Contains(msg, "timeout"):
		return LevelNetwork
	case strings.Contains(msg, "network is unreachable"):
		return LevelNetwork
	case strings.Contains(msg, "temporary failure"):
		return LevelNetwork
	case strings.Contains(msg, "429"),
		strings.Contains(msg, "too many requests"):
		return LevelNetwork
	case strings.Contains(msg, "connection reset"):
		return LevelNetwork
	case strings.Contains(msg, "502"), strings.Contains(msg, "503"):
		return LevelNetwork
	}

	// 无效请求 - 通常可忽略
	switch {
	case strings.Contains(msg, "invalid argument"):
		return LevelInvalid
	case strings.Contains(msg, "bad request"):
		return LevelInvalid
	case strings.Contains(msg, "404"), strings.Contains(msg, "not found"):
		return LevelInvalid
	case strings.Contains(msg, "invalid ric"):
		return LevelInvalid
	}

	// 其他错误归类为未知
	return LevelUnknown
}

// GetRetryStrategy 根据错误级别提供重试策略
func (c *ErrorClassifier) GetRetryStrategy(level ErrorLevel, attempt int) (shouldRetry bool, waitDuration time.Duration) {
	switch level {
	case LevelFatal:
		// 致命级错误，不尝试重试
		return false, 0

	case LevelNetwork:
		if attempt >= MaxRetries {
			return false, 0
		}

		// 根据尝试次数返回递增的等待时间
		switch attempt {
		case 0:
			return true, RetryBase1
		case 1:
			return true, RetryBase2
		default:
			return true, RetryBase3
		}

	case LevelInvalid, LevelUnknown:
		// 无效请求或未知错误，不重试
		return false, 0

	default:
		return false, 0
	}
}

// IsRetryAllowedInTime 检查重试是否在有效时间内
func (c *ErrorClassifier) IsRetryAllowedInTime(nextRetryTime time.Time, deadline time.Time) bool {
	// 重试时间必须在截止时间前，保留30秒缓冲
	buffer := 30 * time.Second
	return nextRetryTime.Before(deadline.Add(-buffer))
}
