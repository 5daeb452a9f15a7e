package refinitiv

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSummaries = `[{
	"universe": {"ric": "AAPL.O"},
	"interval": "PT1M",
	"headers": [{"name":"DATE_TIME"},{"name":"TRDPRC_1"},{"name":"ACVOL_UNS"}],
	"data": [
		["2024-06-03T13:30:00.000000000Z", 191.23, 120400],
		["2024-06-03T13:31:00.000000000Z", "191.40", "98200"],
		["2024-06-03T13:32:00.000000000Z", null, 50000],
		["2024-06-03T13:33:00.000000000Z", 191.55, null],
		["2024-06-03T13:34:00.000000000Z", 191.61, 77100.0]
	]
}]`

func TestParseSummaries(t *testing.T) {
	t.Run("正常解析", func(t *testing.T) {
		bars, err := parseSummaries([]byte(sampleSummaries), "AAPL.O")
		require.NoError(t, err)
		// null价格与null成交量的行被丢弃
		require.Len(t, bars, 3)

		first := bars[0]
		assert.Equal(t, "AAPL.O", first.RIC)
		assert.Equal(t, 191.23, first.Price)
		assert.Equal(t, int64(120400), first.Volume)
		assert.Equal(t, time.Date(2024, 6, 3, 13, 30, 0, 0, time.UTC), first.Timestamp.UTC())
	})

	t.Run("字符串数值被接受", func(t *testing.T) {
		bars, err := parseSummaries([]byte(sampleSummaries), "AAPL.O")
		require.NoError(t, err)
		assert.Equal(t, 191.40, bars[1].Price)
		assert.Equal(t, int64(98200), bars[1].Volume)
	})

	t.Run("小数成交量截断", func(t *testing.T) {
		bars, err := parseSummaries([]byte(sampleSummaries), "AAPL.O")
		require.NoError(t, err)
		assert.Equal(t, int64(77100), bars[2].Volume)
	})

	t.Run("空响应", func(t *testing.T) {
		bars, err := parseSummaries([]byte(`[]`), "AAPL.O")
		require.NoError(t, err)
		assert.Len(t, bars, 0)
	})

	t.Run("空数据块", func(t *testing.T) {
		body := `[{"universe":{"ric":"AAPL.O"},"interval":"PT1M","headers":[{"name":"DATE_TIME"},{"name":"TRDPRC_1"},{"name":"ACVOL_UNS"}],"data":[]}]`
		bars, err := parseSummaries([]byte(body), "AAPL.O")
		require.NoError(t, err)
		assert.Len(t, bars, 0)
	})

	t.Run("缺少必需列", func(t *testing.T) {
		body := `[{"universe":{"ric":"AAPL.O"},"headers":[{"name":"DATE_TIME"}],"data":[]}]`
		_, err := parseSummaries([]byte(body), "AAPL.O")
		assert.Error(t, err)
	})

	t.Run("非JSON响应", func(t *testing.T) {
		_, err := parseSummaries([]byte("not json"), "AAPL.O")
		assert.Error(t, err)
	})
}

func TestParseReference(t *testing.T) {
	t.Run("正常解析", func(t *testing.T) {
		body := `{"headers":[{"name":"Instrument"},{"name":"CF_NAME"},{"name":"TR.MASOperatingTZ"}],"data":[["AAPL.O","APPLE INC","America/New_York"]]}`
		info, err := parseReference([]byte(body))
		require.NoError(t, err)
		assert.Equal(t, "AAPL.O", info.RIC)
		assert.Equal(t, "APPLE INC", info.Name)
		assert.Equal(t, "America/New_York", info.Timezone)
	})

	t.Run("无数据行", func(t *testing.T) {
		body := `{"headers":[{"name":"Instrument"},{"name":"TR.MASOperatingTZ"}],"data":[]}`
		_, err := parseReference([]byte(body))
		assert.Error(t, err)
	})

	t.Run("缺少时区列", func(t *testing.T) {
		body := `{"headers":[{"name":"Instrument"},{"name":"CF_NAME"}],"data":[["AAPL.O","APPLE INC"]]}`
		_, err := parseReference([]byte(body))
		assert.Error(t, err)
	})

	t.Run("时区为空", func(t *testing.T) {
		body := `{"headers":[{"name":"Instrument"},{"name":"TR.MASOperatingTZ"}],"data":[["AAPL.O",""]]}`
		_, err := parseReference([]byte(body))
		assert.Error(t, err)
	})
}

func TestParseFloatCell(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		ok       bool
	}{
		{"数字", `123.45`, 123.45, true},
		{"字符串数字", `"123.45"`, 123.45, true},
		{"null", `null`, 0, false},
		{"空字符串", `""`, 0, false},
		{"非数字", `"abc"`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := parseFloatCell(json.RawMessage(tt.input))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, v)
			}
		})
	}
}
