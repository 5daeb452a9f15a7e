package refinitiv

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"intrabar/pkg/logger"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// DefaultBaseURL 托管行情服务默认地址
const DefaultBaseURL = "https://api.refinitiv.com/data/historical-pricing/v1"

// Client 托管行情服务HTTP客户端
type Client struct {
	httpClient  *http.Client
	baseURL     string
	appKey      string
	lastRequest time.Time
	requestMu   sync.Mutex
	rateLimit   time.Duration
	maxRetries  int
	userAgent   string
	log         *logrus.Entry
}

// ClientOption 客户端配置选项
type ClientOption func(*Client)

// WithBaseURL 设置服务地址
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithAppKey 设置应用密钥
func WithAppKey(appKey string) ClientOption {
	return func(c *Client) {
		c.appKey = appKey
	}
}

// WithHTTPClient 替换底层HTTP客户端，测试用
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient 创建行情服务客户端
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
				DisableKeepAlives:   false,
				MaxConnsPerHost:     10,
			},
			Timeout: 15 * time.Second,
		},
		baseURL:    DefaultBaseURL,
		rateLimit:  200 * time.Millisecond,
		maxRetries: 3,
		userAgent:  "Intrabar/1.0",
		log:        logger.WithComponent("RefinitivClient"),
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get 执行一次GET请求，带限流与重试
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	debugMode := os.Getenv("DEBUG") == "1"

	// 限流控制
	if err := c.enforceRateLimit(ctx); err != nil {
		return nil, err
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	if debugMode {
		c.log.Debugf("Request URL: %s", reqURL)
	}

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		if i > 0 {
			if debugMode {
				c.log.Debugf("Retry attempt %d/%d", i+1, c.maxRetries)
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(i) * time.Second):
			}
		}

		requestStart := time.Now()
		req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
		if err != nil {
			lastErr = fmt.Errorf("create request failed: %w", err)
			continue
		}

		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")
		if c.appKey != "" {
			req.Header.Set("X-App-Key", c.appKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			if debugMode {
				c.log.Errorf("HTTP request failed after %v: %v", time.Since(requestStart), lastErr)
			}
			continue
		}

		body, err := c.decodeBody(resp)
		resp.Body.Close()

		if err != nil {
			lastErr = fmt.Errorf("read response failed: %w", err)
			continue
		}

		if debugMode {
			c.log.Debugf("HTTP request completed in %v, status: %d, body length: %d",
				time.Since(requestStart), resp.StatusCode, len(body))
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("HTTP status error: %d %s", resp.StatusCode, strings.ToLower(http.StatusText(resp.StatusCode)))
			continue
		}

		if len(body) == 0 {
			lastErr = fmt.Errorf("empty response")
			continue
		}

		return body, nil
	}

	return nil, fmt.Errorf("failed after %d retries: %v", c.maxRetries, lastErr)
}

// decodeBody 读取响应体，按 Content-Type 声明的字符集转码为UTF-8
// 部分市场的仪器名称字段会以本地字符集返回
func (c *Client) decodeBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if _, params, err := mime.ParseMediaType(ct); err == nil {
			charset := strings.ToLower(params["charset"])
			if charset != "" && charset != "utf-8" && charset != "utf8" {
				if enc, err := htmlindex.Get(charset); err == nil {
					reader = transform.NewReader(resp.Body, enc.NewDecoder())
				}
			}
		}
	}

	return io.ReadAll(reader)
}

// enforceRateLimit 执行频率限制
func (c *Client) enforceRateLimit(ctx context.Context) error {
	c.requestMu.Lock()
	defer c.requestMu.Unlock()

	elapsed := time.Since(c.lastRequest)
	if elapsed < c.rateLimit && !c.lastRequest.IsZero() {
		waitTime := c.rateLimit - elapsed
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}
	c.lastRequest = time.Now()

	return nil
}

// SetRateLimit 设置请求频率限制
func (c *Client) SetRateLimit(limit time.Duration) {
	c.requestMu.Lock()
	defer c.requestMu.Unlock()
	c.rateLimit = limit
}

// GetRateLimit 获取请求频率限制
func (c *Client) GetRateLimit() time.Duration {
	return c.rateLimit
}

// SetMaxRetries 设置最大重试次数
func (c *Client) SetMaxRetries(retries int) {
	c.maxRetries = retries
}

// SetTimeout 设置超时时间
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// Close 关闭客户端，释放空闲连接
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
