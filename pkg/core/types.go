package core

import (
	"time"
)

// Bar 分钟K线数据点
// 表示一个交易分钟内的成交价与成交量
type Bar struct {
	RIC       string    `json:"ric"`       // 路透社仪器代码
	Timestamp time.Time `json:"timestamp"` // 分钟时间戳 (UTC)
	Price     float64   `json:"price"`     // 成交价 (TRDPRC_1)
	Volume    int64     `json:"volume"`    // 成交量 (ACVOL_UNS)
}

// InstrumentInfo 仪器参考信息
// 通过参考数据接口查询得到的名称与交易时区
type InstrumentInfo struct {
	RIC      string `json:"ric"`      // 路透社仪器代码
	Name     string `json:"name"`     // 仪器显示名称 (CF_NAME)
	Timezone string `json:"timezone"` // 交易时区 (TR.MASOperatingTZ, IANA 名称)
}

// Measure 价格度量类型
type Measure string

const (
	// MeasureRaw 原始成交价
	MeasureRaw Measure = "raw"
	// MeasureNet 净变动: 价格减去当日首笔成交价
	MeasureNet Measure = "net"
	// MeasurePct 净变动百分比: 净变动除以当日首笔成交价
	MeasurePct Measure = "pct"
)

// IsValid 检查度量类型是否有效
func (m Measure) IsValid() bool {
	switch m {
	case MeasureRaw, MeasureNet, MeasurePct, "":
		return true
	default:
		return false
	}
}

// ParseMeasure 解析度量类型字符串
// 空字符串视为原始成交价
func ParseMeasure(s string) (Measure, error) {
	m := Measure(s)
	if !m.IsValid() {
		return "", ErrUnknownMeasure
	}
	if m == "" {
		m = MeasureRaw
	}
	return m, nil
}
