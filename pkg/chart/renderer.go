package chart

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"intrabar/pkg/frame"
	"intrabar/pkg/logger"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultTheme 默认图表主题
	DefaultTheme = "dark"
	// DefaultWidth 默认图表宽度
	DefaultWidth = "1100px"
	// DefaultHeight 默认图表高度
	DefaultHeight = "500px"
)

// RendererConfig 图表渲染配置
type RendererConfig struct {
	Theme  string // echarts 主题名称
	Width  string // 像素宽度, 如 "1100px"
	Height string // 像素高度, 如 "500px"
	OutDir string // HTML 输出目录
}

// DefaultRendererConfig 返回默认渲染配置
func DefaultRendererConfig() *RendererConfig {
	return &RendererConfig{
		Theme:  DefaultTheme,
		Width:  DefaultWidth,
		Height: DefaultHeight,
		OutDir: "charts",
	}
}

// Renderer 日内度量图表渲染器
// 价格渲染为折线图（每个交易日一条线），成交量渲染为堆叠柱状图
type Renderer struct {
	config *RendererConfig
	log    *logrus.Entry
}

// NewRenderer 创建图表渲染器
func NewRenderer(config *RendererConfig) *Renderer {
	if config == nil {
		config = DefaultRendererConfig()
	}
	if config.Theme == "" {
		config.Theme = DefaultTheme
	}
	if config.Width == "" {
		config.Width = DefaultWidth
	}
	if config.Height == "" {
		config.Height = DefaultHeight
	}
	if config.OutDir == "" {
		config.OutDir = "charts"
	}
	return &Renderer{
		config: config,
		log:    logger.WithComponent("ChartRenderer"),
	}
}

// OutDir 返回HTML输出目录
func (r *Renderer) OutDir() string {
	return r.config.OutDir
}

// PriceFile 返回价格图表文件名
func PriceFile(ric string) string {
	return sanitizeRIC(ric) + "_prices.html"
}

// VolumeFile 返回成交量图表文件名
func VolumeFile(ric string) string {
	return sanitizeRIC(ric) + "_volumes.html"
}

// sanitizeRIC 将RIC转换为安全的文件名片段
func sanitizeRIC(ric string) string {
	s := strings.ToLower(ric)
	s = strings.ReplaceAll(s, ".", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}

// RenderAll 渲染价格和成交量图表，返回生成的文件路径
// title 为空时使用 label 作为标题
func (r *Renderer) RenderAll(ric, title, label string, prices, volumes *frame.Frame) ([]string, error) {
	if prices.Empty() {
		return nil, fmt.Errorf("no price data to render for %s", ric)
	}
	if title == "" {
		title = label
	}

	if err := os.MkdirAll(r.config.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	pricePath := filepath.Join(r.config.OutDir, PriceFile(ric))
	if err := r.renderPrices(pricePath, title, prices); err != nil {
		return nil, err
	}

	volumePath := filepath.Join(r.config.OutDir, VolumeFile(ric))
	if err := r.renderVolumes(volumePath, title, volumes); err != nil {
		return nil, err
	}

	r.log.Infof("图表渲染完成: %s, %s", pricePath, volumePath)
	return []string{pricePath, volumePath}, nil
}

// renderPrices 渲染价格折线图，每个交易日一条序列
func (r *Renderer) renderPrices(path, title string, prices *frame.Frame) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  r.config.Theme,
			Width:  r.config.Width,
			Height: r.config.Height,
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	times := prices.Times()
	xLabels := make([]string, 0, len(times))
	for _, t := range times {
		xLabels = append(xLabels, t.String())
	}
	line.SetXAxis(xLabels)

	for _, date := range prices.Dates() {
		points := make([]opts.LineData, 0, len(times))
		for _, t := range times {
			v, ok := prices.Value(t, date)
			if !ok {
				points = append(points, opts.LineData{Value: nil})
				continue
			}
			points = append(points, opts.LineData{Value: v})
		}
		line.AddSeries(string(date), points)
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false)}))

	return r.writeChart(path, line)
}

// renderVolumes 渲染成交量堆叠柱状图
func (r *Renderer) renderVolumes(path, title string, volumes *frame.Frame) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:  r.config.Theme,
			Width:  r.config.Width,
			Height: r.config.Height,
		}),
		charts.WithTitleOpts(opts.Title{Title: title + " volumes"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	times := volumes.Times()
	xLabels := make([]string, 0, len(times))
	for _, t := range times {
		xLabels = append(xLabels, t.String())
	}
	bar.SetXAxis(xLabels)

	for _, date := range volumes.Dates() {
		points := make([]opts.BarData, 0, len(times))
		for _, t := range times {
			v, ok := volumes.Value(t, date)
			if !ok {
				points = append(points, opts.BarData{Value: nil})
				continue
			}
			points = append(points, opts.BarData{Value: v})
		}
		bar.AddSeries(string(date), points)
	}
	bar.SetSeriesOptions(charts.WithBarChartOpts(opts.BarChart{Stack: "volumes"}))

	return r.writeChart(path, bar)
}

// renderable 可渲染为HTML的图表
type renderable interface {
	Render(w io.Writer) error
}

// writeChart 渲染图表到文件
func (r *Renderer) writeChart(path string, chart renderable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()

	if err := chart.Render(f); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
