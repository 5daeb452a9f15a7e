package refinitiv

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"
)

// HTTPMock 行情服务HTTP模拟服务器
// 测试时替代托管服务，返回表格形式的JSON响应
type HTTPMock struct {
	server    *httptest.Server
	summaries map[string]string // RIC -> 分钟汇总响应
	reference map[string]string // RIC -> 参考数据响应
	failWith  int               // 非0时所有请求返回该HTTP状态码
	requests  int
}

// NewHTTPMock 创建行情服务模拟服务器
func NewHTTPMock() *HTTPMock {
	mock := &HTTPMock{
		summaries: make(map[string]string),
		reference: make(map[string]string),
	}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handleRequest))
	return mock
}

// URL 获取模拟服务器地址
func (m *HTTPMock) URL() string {
	return m.server.URL
}

// Close 关闭模拟服务器
func (m *HTTPMock) Close() {
	if m.server != nil {
		m.server.Close()
	}
}

// RequestCount 返回已处理的请求数
func (m *HTTPMock) RequestCount() int {
	return m.requests
}

// FailWith 设置所有请求返回指定状态码
// 传0恢复正常响应
func (m *HTTPMock) FailWith(status int) {
	m.failWith = status
}

// SetSummariesResponse 为指定RIC设置分钟汇总原始响应
func (m *HTTPMock) SetSummariesResponse(ric string, response string) {
	m.summaries[ric] = response
}

// SetReferenceResponse 为指定RIC设置参考数据原始响应
func (m *HTTPMock) SetReferenceResponse(ric string, response string) {
	m.reference[ric] = response
}

// SetInstrument 设置仪器的参考信息响应
func (m *HTTPMock) SetInstrument(ric, name, tz string) {
	m.reference[ric] = fmt.Sprintf(
		`{"headers":[{"name":"Instrument"},{"name":"CF_NAME"},{"name":"TR.MASOperatingTZ"}],"data":[["%s","%s","%s"]]}`,
		ric, name, tz)
}

// SetBars 为指定RIC生成分钟汇总响应
// 从 start 开始逐分钟生成 count 条，价格线性递增
func (m *HTTPMock) SetBars(ric string, start time.Time, count int, basePrice float64) {
	var rows []string
	for i := 0; i < count; i++ {
		ts := start.Add(time.Duration(i) * time.Minute).UTC().Format(time.RFC3339Nano)
		rows = append(rows, fmt.Sprintf(`["%s",%.2f,%d]`, ts, basePrice+float64(i)*0.1, 1000+i*10))
	}
	m.summaries[ric] = fmt.Sprintf(
		`[{"universe":{"ric":"%s"},"interval":"PT1M","headers":[{"name":"DATE_TIME"},{"name":"TRDPRC_1"},{"name":"ACVOL_UNS"}],"data":[%s]}]`,
		ric, strings.Join(rows, ","))
}

// handleRequest 处理HTTP请求
func (m *HTTPMock) handleRequest(w http.ResponseWriter, r *http.Request) {
	m.requests++

	if m.failWith != 0 {
		http.Error(w, http.StatusText(m.failWith), m.failWith)
		return
	}

	path := r.URL.Path
	switch {
	case strings.Contains(path, "/views/intraday-summaries/"):
		ric := path[strings.LastIndex(path, "/")+1:]
		response, exists := m.summaries[ric]
		if !exists {
			// 未配置的RIC返回空数据块
			response = fmt.Sprintf(
				`[{"universe":{"ric":"%s"},"interval":"PT1M","headers":[{"name":"DATE_TIME"},{"name":"TRDPRC_1"},{"name":"ACVOL_UNS"}],"data":[]}]`, ric)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(response))

	case strings.Contains(path, "/views/reference/"):
		ric := path[strings.LastIndex(path, "/")+1:]
		response, exists := m.reference[ric]
		if !exists {
			http.Error(w, "instrument not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(response))

	default:
		http.Error(w, "unknown endpoint", http.StatusNotFound)
	}
}
