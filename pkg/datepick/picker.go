package datepick

import (
	"fmt"
	"time"

	"intrabar/pkg/timing"
)

const (
	// MinDateCount 日期槽位下限
	MinDateCount = 1
	// MaxDateCount 日期槽位上限
	MaxDateCount = 10
	// DefaultDateCount 默认日期槽位数
	DefaultDateCount = 5
)

// Picker 交易日期与时段选择器
// 持有固定数量的交易日槽位与一个时段范围
// 槽位初始值为今天之前最近的 cnt 个交易日
type Picker struct {
	cnt         int
	dates       []time.Time
	session     timing.SessionRange
	timeService timing.TimeService
}

// Option 选择器配置选项
type Option func(*Picker)

// WithTimeService 替换时间源，测试用
func WithTimeService(ts timing.TimeService) Option {
	return func(p *Picker) {
		p.timeService = ts
	}
}

// New 创建选择器
// cnt 超出 [1,10] 范围时重置为默认值 5
func New(cnt int, opts ...Option) *Picker {
	if cnt < MinDateCount || cnt > MaxDateCount {
		cnt = DefaultDateCount
	}

	p := &Picker{
		cnt:         cnt,
		session:     timing.DefaultSession(),
		timeService: &timing.SystemTimeService{},
	}
	for _, opt := range opts {
		opt(p)
	}

	p.dates = timing.PreviousTradingDays(p.timeService.Now(), p.cnt)
	return p
}

// Count 返回日期槽位数
func (p *Picker) Count() int {
	return p.cnt
}

// Dates 返回当前选中的日期，由近到远排列
func (p *Picker) Dates() []time.Time {
	out := make([]time.Time, len(p.dates))
	copy(out, p.dates)
	return out
}

// TimeRange 返回当前时段范围
func (p *Picker) TimeRange() timing.SessionRange {
	return p.session
}

// SetDate 设置第 i 个槽位的日期
// 周末日期被拒绝
func (p *Picker) SetDate(i int, d time.Time) error {
	if i < 0 || i >= p.cnt {
		return fmt.Errorf("date slot %d out of range [0,%d)", i, p.cnt)
	}
	if !timing.IsTradingDay(d) {
		return fmt.Errorf("%s is not a trading day", d.Format("2006-01-02"))
	}

	p.dates[i] = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	return nil
}

// ShiftDate 将第 i 个槽位沿交易日方向移动 n 步
// n 为负表示向过去移动
func (p *Picker) ShiftDate(i int, n int) error {
	if i < 0 || i >= p.cnt {
		return fmt.Errorf("date slot %d out of range [0,%d)", i, p.cnt)
	}

	d := p.dates[i]
	for ; n > 0; n-- {
		d = timing.NextTradingDay(d)
	}
	for ; n < 0; n++ {
		d = timing.PreviousTradingDay(d)
	}

	// 不允许移动到未来
	today := p.timeService.Now()
	if !d.Before(time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, d.Location())) {
		return fmt.Errorf("date slot cannot move into the future")
	}

	p.dates[i] = d
	return nil
}

// SetTimeRange 设置时段范围
// 倒置的范围被拒绝
func (p *Picker) SetTimeRange(open, close timing.TimeOfDay) error {
	r := timing.SessionRange{Open: open, Close: close}
	if err := r.Validate(); err != nil {
		return err
	}
	p.session = r
	return nil
}
