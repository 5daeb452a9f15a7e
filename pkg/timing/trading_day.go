package timing

import (
	"fmt"
	"time"
)

// TimeService 提供当前时间接口，用于mock测试
type TimeService interface {
	Now() time.Time
}

// SystemTimeService 使用系统实际时间
type SystemTimeService struct{}

func (s *SystemTimeService) Now() time.Time {
	return time.Now()
}

// TimeOfDay 日内时刻，分钟精度
// 用作宽表的行键
type TimeOfDay struct {
	Hour   int
	Minute int
}

// NewTimeOfDay 从时间值提取日内时刻
func NewTimeOfDay(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// String 格式化为 HH:MM
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Before 判断是否早于另一时刻
func (t TimeOfDay) Before(other TimeOfDay) bool {
	if t.Hour != other.Hour {
		return t.Hour < other.Hour
	}
	return t.Minute < other.Minute
}

// SessionRange 交易时段范围 (开盘/收盘时刻)
type SessionRange struct {
	Open  TimeOfDay
	Close TimeOfDay
}

// Validate 验证时段范围有效
func (r SessionRange) Validate() error {
	if !r.Open.Before(r.Close) {
		return fmt.Errorf("session open %s must be before close %s", r.Open, r.Close)
	}
	return nil
}

// String 格式化为 HH:MM-HH:MM
func (r SessionRange) String() string {
	return r.Open.String() + "-" + r.Close.String()
}

// DefaultSession 默认交易时段 09:30 - 16:00
func DefaultSession() SessionRange {
	return SessionRange{
		Open:  TimeOfDay{Hour: 9, Minute: 30},
		Close: TimeOfDay{Hour: 16, Minute: 0},
	}
}

// IsTradingDay 判断是否是交易日（周一到周五）
func IsTradingDay(t time.Time) bool {
	weekday := t.Weekday()
	return weekday >= time.Monday && weekday <= time.Friday
}

// PreviousTradingDays 返回 from 之前最近的 n 个交易日，按由近到远排列
// 只按星期索引跳过周末，不考虑节假日
func PreviousTradingDays(from time.Time, n int) []time.Time {
	days := make([]time.Time, 0, n)
	d := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())

	for len(days) < n {
		d = d.AddDate(0, 0, -1)
		if IsTradingDay(d) {
			days = append(days, d)
		}
	}
	return days
}

// PreviousTradingDay 返回 d 之前最近的一个交易日
func PreviousTradingDay(d time.Time) time.Time {
	return PreviousTradingDays(d, 1)[0]
}

// NextTradingDay 返回 d 之后最近的一个交易日
func NextTradingDay(d time.Time) time.Time {
	t := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	for {
		t = t.AddDate(0, 0, 1)
		if IsTradingDay(t) {
			return t
		}
	}
}
