package refinitiv

import (
	"context"
	"net/url"
	"strings"
	"time"

	"intrabar/pkg/core"
	"intrabar/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Provider 托管行情服务数据提供商
// 同时实现日内行情接口与参考数据接口
type Provider struct {
	client *Client
	log    *logrus.Entry
}

// NewProvider 创建行情服务提供商
func NewProvider(opts ...ClientOption) *Provider {
	return &Provider{
		client: NewClient(opts...),
		log:    logger.WithComponent("RefinitivProvider"),
	}
}

// Name 返回提供商名称
func (p *Provider) Name() string {
	return "refinitiv"
}

// IsHealthy 检查提供商健康状态
func (p *Provider) IsHealthy() bool {
	return p.client != nil
}

// GetRateLimit 获取请求限制信息
func (p *Provider) GetRateLimit() time.Duration {
	return p.client.GetRateLimit()
}

// SetRateLimit 设置请求频率限制
func (p *Provider) SetRateLimit(limit time.Duration) {
	p.client.SetRateLimit(limit)
}

// SetMaxRetries 设置最大重试次数
func (p *Provider) SetMaxRetries(retries int) {
	p.client.SetMaxRetries(retries)
}

// SetTimeout 设置超时时间
func (p *Provider) SetTimeout(timeout time.Duration) {
	p.client.SetTimeout(timeout)
}

// Close 关闭提供商
func (p *Provider) Close() error {
	return p.client.Close()
}

// FetchMinuteBars 获取一个UTC窗口内的分钟K线
func (p *Provider) FetchMinuteBars(ctx context.Context, ric string, start, end time.Time) ([]core.Bar, error) {
	if !p.IsRICSupported(ric) {
		return nil, core.ErrInvalidRIC
	}

	query := url.Values{}
	query.Set("interval", "PT1M")
	query.Set("start", start.UTC().Format(time.RFC3339))
	query.Set("end", end.UTC().Format(time.RFC3339))
	query.Set("fields", FieldPrice+","+FieldVolume)

	body, err := p.client.get(ctx, "/views/intraday-summaries/"+url.PathEscape(ric), query)
	if err != nil {
		return nil, err
	}

	bars, err := parseSummaries(body, ric)
	if err != nil {
		return nil, err
	}

	p.log.Debugf("fetched %d minute bars for %s [%s, %s]",
		len(bars), ric, start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	return bars, nil
}

// FetchInstrumentInfo 查询仪器名称与交易时区
func (p *Provider) FetchInstrumentInfo(ctx context.Context, ric string) (*core.InstrumentInfo, error) {
	if !p.IsRICSupported(ric) {
		return nil, core.ErrInvalidRIC
	}

	query := url.Values{}
	query.Set("fields", FieldName+","+FieldTimezone)

	body, err := p.client.get(ctx, "/views/reference/"+url.PathEscape(ric), query)
	if err != nil {
		return nil, err
	}

	info, err := parseReference(body)
	if err != nil {
		return nil, err
	}
	if info.RIC == "" {
		info.RIC = ric
	}
	return info, nil
}

// IsRICSupported 检查仪器代码格式
// RIC由代码主体加可选的交易所后缀组成，如 AAPL.O、VOD.L、0700.HK
func (p *Provider) IsRICSupported(ric string) bool {
	if ric == "" || len(ric) > 32 {
		return false
	}
	if strings.ContainsAny(ric, " \t\n") {
		return false
	}

	parts := strings.Split(ric, ".")
	if len(parts) > 2 {
		return false
	}
	if parts[0] == "" {
		return false
	}
	if len(parts) == 2 && parts[1] == "" {
		return false
	}

	return true
}
