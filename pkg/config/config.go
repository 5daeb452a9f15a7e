package config

import (
	"errors"
	"fmt"
	"time"

	"intrabar/pkg/datepick"
	"intrabar/pkg/timing"

	"github.com/spf13/viper"
)

// Config 主配置结构
type Config struct {
	// 提供商配置
	Provider ProviderConfig `json:"provider" mapstructure:"provider"`

	// 日期选择配置
	Picker PickerConfig `json:"picker" mapstructure:"picker"`

	// 图表配置
	Chart ChartConfig `json:"chart" mapstructure:"chart"`

	// 日志配置
	Logger LoggerConfig `json:"logger" mapstructure:"logger"`
}

// ProviderConfig 行情服务提供商配置
type ProviderConfig struct {
	BaseURL    string        `json:"base_url" mapstructure:"base_url"`       // 服务地址
	AppKey     string        `json:"app_key" mapstructure:"app_key"`         // 应用密钥
	Timeout    time.Duration `json:"timeout" mapstructure:"timeout"`         // 请求超时时间
	MaxRetries int           `json:"max_retries" mapstructure:"max_retries"` // 最大重试次数
	RateLimit  time.Duration `json:"rate_limit" mapstructure:"rate_limit"`   // 请求间隔限制
	UserAgent  string        `json:"user_agent" mapstructure:"user_agent"`   // 用户代理
}

// PickerConfig 交易日选择配置
type PickerConfig struct {
	DateCount int    `json:"date_count" mapstructure:"date_count"` // 回看交易日数
	OpenTime  string `json:"open_time" mapstructure:"open_time"`   // 时段开始 HH:MM
	CloseTime string `json:"close_time" mapstructure:"close_time"` // 时段结束 HH:MM
}

// ChartConfig 图表配置
type ChartConfig struct {
	Theme     string `json:"theme" mapstructure:"theme"`           // echarts 主题
	Width     string `json:"width" mapstructure:"width"`           // 图表宽度
	Height    string `json:"height" mapstructure:"height"`         // 图表高度
	OutDir    string `json:"out_dir" mapstructure:"out_dir"`       // HTML 输出目录
	ServeAddr string `json:"serve_addr" mapstructure:"serve_addr"` // 本地浏览服务地址
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level  string `json:"level" mapstructure:"level"`   // 日志级别 (debug, info, warn, error)
	Format string `json:"format" mapstructure:"format"` // 输出格式 (text, json)
	Output string `json:"output" mapstructure:"output"` // 输出方式 (console, file)
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Provider: ProviderConfig{
			BaseURL:    "https://api.refinitiv.com/data/historical-pricing/v1",
			Timeout:    15 * time.Second,
			MaxRetries: 3,
			RateLimit:  200 * time.Millisecond,
			UserAgent:  "Intrabar/1.0",
		},
		Picker: PickerConfig{
			DateCount: datepick.DefaultDateCount,
			OpenTime:  "09:30",
			CloseTime: "16:00",
		},
		Chart: ChartConfig{
			Theme:     "dark",
			Width:     "1100px",
			Height:    "500px",
			OutDir:    "charts",
			ServeAddr: ":8380",
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "console",
		},
	}
}

// Load 从配置文件加载配置，文件中未出现的字段保留默认值
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Provider.BaseURL == "" {
		return errors.New("provider base_url cannot be empty")
	}

	if c.Provider.Timeout <= 0 {
		return errors.New("provider timeout must be positive")
	}

	if c.Provider.MaxRetries < 0 {
		return errors.New("provider max_retries cannot be negative")
	}

	if c.Provider.RateLimit < 0 {
		return errors.New("provider rate_limit cannot be negative")
	}

	if c.Picker.DateCount < datepick.MinDateCount || c.Picker.DateCount > datepick.MaxDateCount {
		return fmt.Errorf("picker date_count must be between %d and %d",
			datepick.MinDateCount, datepick.MaxDateCount)
	}

	session, err := c.Session()
	if err != nil {
		return err
	}
	if err := session.Validate(); err != nil {
		return fmt.Errorf("picker session invalid: %w", err)
	}

	if c.Chart.OutDir == "" {
		return errors.New("chart out_dir cannot be empty")
	}

	return nil
}

// Session 解析配置中的交易时段
func (c *Config) Session() (timing.SessionRange, error) {
	open, err := parseTimeOfDay(c.Picker.OpenTime)
	if err != nil {
		return timing.SessionRange{}, fmt.Errorf("picker open_time invalid: %w", err)
	}
	close, err := parseTimeOfDay(c.Picker.CloseTime)
	if err != nil {
		return timing.SessionRange{}, fmt.Errorf("picker close_time invalid: %w", err)
	}
	return timing.SessionRange{Open: open, Close: close}, nil
}

// parseTimeOfDay 解析 HH:MM 格式的时刻
func parseTimeOfDay(s string) (timing.TimeOfDay, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return timing.TimeOfDay{}, fmt.Errorf("expected HH:MM, got %q", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return timing.TimeOfDay{}, fmt.Errorf("time out of range: %q", s)
	}
	return timing.TimeOfDay{Hour: hour, Minute: minute}, nil
}

// SetProviderTimeout 设置提供商超时时间
func (c *Config) SetProviderTimeout(timeout time.Duration) *Config {
	c.Provider.Timeout = timeout
	return c
}

// SetRateLimit 设置请求频率限制
func (c *Config) SetRateLimit(limit time.Duration) *Config {
	c.Provider.RateLimit = limit
	return c
}

// SetAppKey 设置应用密钥
func (c *Config) SetAppKey(key string) *Config {
	c.Provider.AppKey = key
	return c
}

// SetDateCount 设置回看交易日数
func (c *Config) SetDateCount(cnt int) *Config {
	c.Picker.DateCount = cnt
	return c
}

// SetLogLevel 设置日志级别
func (c *Config) SetLogLevel(level string) *Config {
	c.Logger.Level = level
	return c
}
