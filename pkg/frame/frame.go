package frame

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"intrabar/pkg/timing"
)

// DateKey 列键，交易日期的 YYYY-MM-DD 表示
type DateKey string

// NewDateKey 从时间值生成列键
func NewDateKey(t time.Time) DateKey {
	return DateKey(t.Format("2006-01-02"))
}

// Series 单日的日内序列，按时刻键值
type Series map[timing.TimeOfDay]float64

// Frame 宽格式度量表
// 行为日内时刻（仪器本地时区），列为交易日期
type Frame struct {
	columns []DateKey
	data    map[DateKey]Series
}

// New 创建空宽表
func New() *Frame {
	return &Frame{
		columns: make([]DateKey, 0),
		data:    make(map[DateKey]Series),
	}
}

// SetColumn 写入一列（一个交易日的序列）
// 重复写入同一日期时整列覆盖
func (f *Frame) SetColumn(date DateKey, series Series) {
	if _, exists := f.data[date]; !exists {
		f.columns = append(f.columns, date)
	}

	copied := make(Series, len(series))
	for t, v := range series {
		copied[t] = v
	}
	f.data[date] = copied
}

// Column 读取一列，日期不存在时返回 nil
func (f *Frame) Column(date DateKey) Series {
	return f.data[date]
}

// Value 读取单元格值
func (f *Frame) Value(t timing.TimeOfDay, date DateKey) (float64, bool) {
	series, exists := f.data[date]
	if !exists {
		return 0, false
	}
	v, ok := series[t]
	return v, ok
}

// Dates 返回列键，按写入顺序
func (f *Frame) Dates() []DateKey {
	out := make([]DateKey, len(f.columns))
	copy(out, f.columns)
	return out
}

// Times 返回所有出现过的行时刻，升序排列
func (f *Frame) Times() []timing.TimeOfDay {
	seen := make(map[timing.TimeOfDay]bool)
	for _, series := range f.data {
		for t := range series {
			seen[t] = true
		}
	}

	times := make([]timing.TimeOfDay, 0, len(seen))
	for t := range seen {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool {
		return times[i].Before(times[j])
	})
	return times
}

// AlignRows 行对齐：只保留在每一列都有值的时刻
// 任一交易日缺失的分钟在所有列中一并剔除
func (f *Frame) AlignRows() {
	if len(f.columns) == 0 {
		return
	}

	for _, t := range f.Times() {
		complete := true
		for _, date := range f.columns {
			if _, ok := f.data[date][t]; !ok {
				complete = false
				break
			}
		}
		if !complete {
			for _, date := range f.columns {
				delete(f.data[date], t)
			}
		}
	}
}

// Empty 判断宽表是否为空
func (f *Frame) Empty() bool {
	if f == nil || len(f.columns) == 0 {
		return true
	}
	for _, series := range f.data {
		if len(series) > 0 {
			return false
		}
	}
	return true
}

// NumCols 列数
func (f *Frame) NumCols() int {
	return len(f.columns)
}

// NumRows 对齐后的行数（所有列共有的时刻数）
func (f *Frame) NumRows() int {
	return len(f.Times())
}

// String 渲染为制表符分隔的文本表，调试用
func (f *Frame) String() string {
	var b strings.Builder

	b.WriteString("time")
	for _, date := range f.columns {
		b.WriteString("\t")
		b.WriteString(string(date))
	}
	b.WriteString("\n")

	for _, t := range f.Times() {
		b.WriteString(t.String())
		for _, date := range f.columns {
			b.WriteString("\t")
			if v, ok := f.data[date][t]; ok {
				b.WriteString(fmt.Sprintf("%g", v))
			} else {
				b.WriteString("-")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
