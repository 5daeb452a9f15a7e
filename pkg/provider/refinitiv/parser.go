package refinitiv

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"intrabar/pkg/core"
)

// 历史定价接口字段名
const (
	FieldDateTime = "DATE_TIME"
	FieldPrice    = "TRDPRC_1"  // 成交价
	FieldVolume   = "ACVOL_UNS" // 未复权成交量
)

// 参考数据接口字段名
const (
	FieldInstrument = "Instrument"
	FieldName       = "CF_NAME"           // 仪器显示名称
	FieldTimezone   = "TR.MASOperatingTZ" // 交易时区
)

// tableHeader 表头列描述
type tableHeader struct {
	Name string `json:"name"`
}

// summaryBlock 单个仪器的分钟汇总响应块
type summaryBlock struct {
	Universe struct {
		RIC string `json:"ric"`
	} `json:"universe"`
	Interval string              `json:"interval"`
	Headers  []tableHeader       `json:"headers"`
	Data     [][]json.RawMessage `json:"data"`
}

// referenceTable 参考数据响应表
type referenceTable struct {
	Headers []tableHeader       `json:"headers"`
	Data    [][]json.RawMessage `json:"data"`
}

// parseSummaries 解析分钟汇总响应
// 响应为表格形式：headers 描述列名，data 为行数组
// 价格或成交量缺失的行被丢弃
func parseSummaries(body []byte, ric string) ([]core.Bar, error) {
	var blocks []summaryBlock
	if err := json.Unmarshal(body, &blocks); err != nil {
		return nil, fmt.Errorf("unmarshal summaries response: %w", err)
	}
	if len(blocks) == 0 {
		return []core.Bar{}, nil
	}

	block := blocks[0]
	timeIdx, priceIdx, volumeIdx := -1, -1, -1
	for i, h := range block.Headers {
		switch h.Name {
		case FieldDateTime:
			timeIdx = i
		case FieldPrice:
			priceIdx = i
		case FieldVolume:
			volumeIdx = i
		}
	}
	if timeIdx < 0 || priceIdx < 0 || volumeIdx < 0 {
		return nil, fmt.Errorf("summaries response missing required columns (%s, %s, %s)",
			FieldDateTime, FieldPrice, FieldVolume)
	}

	bars := make([]core.Bar, 0, len(block.Data))
	for _, row := range block.Data {
		if len(row) <= timeIdx || len(row) <= priceIdx || len(row) <= volumeIdx {
			continue
		}

		ts, err := parseTimeCell(row[timeIdx])
		if err != nil {
			continue
		}

		price, ok := parseFloatCell(row[priceIdx])
		if !ok {
			continue
		}
		volume, ok := parseIntCell(row[volumeIdx])
		if !ok {
			continue
		}

		bars = append(bars, core.Bar{
			RIC:       ric,
			Timestamp: ts,
			Price:     price,
			Volume:    volume,
		})
	}

	return bars, nil
}

// parseReference 解析参考数据响应
func parseReference(body []byte) (*core.InstrumentInfo, error) {
	var table referenceTable
	if err := json.Unmarshal(body, &table); err != nil {
		return nil, fmt.Errorf("unmarshal reference response: %w", err)
	}
	if len(table.Data) == 0 {
		return nil, core.ErrNoData
	}

	ricIdx, nameIdx, tzIdx := -1, -1, -1
	for i, h := range table.Headers {
		switch h.Name {
		case FieldInstrument:
			ricIdx = i
		case FieldName:
			nameIdx = i
		case FieldTimezone:
			tzIdx = i
		}
	}
	if tzIdx < 0 {
		return nil, fmt.Errorf("reference response missing %s column", FieldTimezone)
	}

	row := table.Data[0]
	info := &core.InstrumentInfo{}
	if ricIdx >= 0 && ricIdx < len(row) {
		info.RIC, _ = parseStringCell(row[ricIdx])
	}
	if nameIdx >= 0 && nameIdx < len(row) {
		info.Name, _ = parseStringCell(row[nameIdx])
	}
	if tzIdx < len(row) {
		info.Timezone, _ = parseStringCell(row[tzIdx])
	}
	if info.Timezone == "" {
		return nil, core.ErrUnknownTimezone
	}

	return info, nil
}

// parseTimeCell 解析时间列，接受RFC3339纳秒格式
func parseTimeCell(raw json.RawMessage) (time.Time, error) {
	s, ok := parseStringCell(raw)
	if !ok || s == "" {
		return time.Time{}, fmt.Errorf("empty time cell")
	}
	return time.Parse(time.RFC3339Nano, s)
}

// parseFloatCell 解析数值列
// 接口可能以数字或字符串返回数值，两者都接受
func parseFloatCell(raw json.RawMessage) (float64, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, false
	}

	if strings.HasPrefix(s, "\"") {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(str)
		if s == "" {
			return 0, false
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseIntCell 解析整数列
// 成交量字段偶尔带小数部分，截断处理
func parseIntCell(raw json.RawMessage) (int64, bool) {
	f, ok := parseFloatCell(raw)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// parseStringCell 解析字符串列
func parseStringCell(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
