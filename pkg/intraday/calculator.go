package intraday

import (
	"context"
	"fmt"
	"time"

	"intrabar/pkg/core"
	"intrabar/pkg/frame"
	"intrabar/pkg/limiter"
	"intrabar/pkg/logger"
	providercore "intrabar/pkg/provider/core"
	"intrabar/pkg/timing"

	"github.com/sirupsen/logrus"
)

// ProgressFunc 进度回调，每处理完一个日期调用一次
type ProgressFunc func(done, total int)

// Calculator 日内度量计算器
// 负责解析仪器交易时区、抓取分钟K线并生成价格/成交量宽表
// 每次 CalculateMeasures 调用整体覆盖上一次的结果
type Calculator struct {
	intraday   providercore.IntradayProvider
	reference  providercore.ReferenceProvider
	classifier *limiter.ErrorClassifier

	tz       string
	label    string
	location *time.Location
	prices   *frame.Frame
	volumes  *frame.Frame

	onProgress ProgressFunc
	log        *logrus.Entry
}

// NewCalculator 创建日内度量计算器
func NewCalculator(intraday providercore.IntradayProvider, reference providercore.ReferenceProvider) *Calculator {
	return &Calculator{
		intraday:   intraday,
		reference:  reference,
		classifier: limiter.NewErrorClassifier(),
		log:        logger.WithComponent("Calculator"),
	}
}

// SetProgressFunc 设置进度回调
func (c *Calculator) SetProgressFunc(fn ProgressFunc) {
	c.onProgress = fn
}

// CalculateMeasures 生成指定仪器在选定日期与时段内的价格/成交量度量
// measure 取值: raw / net / pct（空值等同 raw）
// 单个日期抓取失败只跳过该日期；时区解析失败终止整个计算
func (c *Calculator) CalculateMeasures(ctx context.Context, ric string, dates []time.Time, timeRange timing.SessionRange, measure core.Measure) error {
	if ric == "" {
		return core.ErrInvalidRIC
	}
	if len(dates) == 0 {
		return core.ErrNoDates
	}
	if err := timeRange.Validate(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrBadTimeRange, err)
	}
	if !measure.IsValid() {
		return core.ErrUnknownMeasure
	}
	if measure == "" {
		measure = core.MeasureRaw
	}

	// 结果整体覆盖
	c.prices = nil
	c.volumes = nil

	// 解析仪器交易时区
	if err := c.resolveTimezone(ctx, ric); err != nil {
		return err
	}

	prices := frame.New()
	volumes := frame.New()
	log := c.log.WithField("ric", ric)

	for i, date := range dates {
		start, end := c.sessionWindow(date, timeRange)

		bars, err := c.intraday.FetchMinuteBars(ctx, ric, start, end)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// 致命错误（鉴权失败等）对每个日期都会重现，直接终止
			if c.classifier.Classify(err) == limiter.LevelFatal {
				return fmt.Errorf("获取 %s 分钟数据失败: %w", ric, err)
			}
			log.Warnf("获取 %s 区间 [%s, %s] 数据失败，跳过: %v",
				ric, start.Format(time.RFC3339), end.Format(time.RFC3339), err)
			c.reportProgress(i+1, len(dates))
			continue
		}

		if len(bars) == 0 {
			log.Warnf("%s 区间 [%s, %s] 无数据返回，跳过",
				ric, start.Format(time.RFC3339), end.Format(time.RFC3339))
			c.reportProgress(i+1, len(dates))
			continue
		}

		priceSeries, volumeSeries, barDate := c.buildDaySeries(bars, measure)
		prices.SetColumn(barDate, priceSeries)
		volumes.SetColumn(barDate, volumeSeries)

		log.Debugf("%s 生成 %d 个分钟度量", barDate, len(priceSeries))
		c.reportProgress(i+1, len(dates))
	}

	if prices.Empty() {
		return core.ErrNoMeasures
	}

	// 行对齐: 只保留每个交易日都有数据的分钟
	prices.AlignRows()
	volumes.AlignRows()

	c.prices = prices
	c.volumes = volumes

	log.Infof("度量计算完成: %d 个交易日, %d 个分钟时刻", prices.NumCols(), prices.NumRows())
	return nil
}

// resolveTimezone 查询仪器交易时区与名称，生成展示标签
func (c *Calculator) resolveTimezone(ctx context.Context, ric string) error {
	info, err := c.reference.FetchInstrumentInfo(ctx, ric)
	if err != nil {
		c.log.Errorf("获取 %s 时区信息失败: %v", ric, err)
		return fmt.Errorf("%w: %v", core.ErrUnknownTimezone, err)
	}

	location, err := time.LoadLocation(info.Timezone)
	if err != nil {
		return fmt.Errorf("%w: %q", core.ErrUnknownTimezone, info.Timezone)
	}

	c.tz = info.Timezone
	c.location = location
	c.label = fmt.Sprintf("%s (Timezone: %s)", info.Name, info.Timezone)
	return nil
}

// sessionWindow 在仪器本地时区构造当日交易窗口并转换为UTC
func (c *Calculator) sessionWindow(date time.Time, timeRange timing.SessionRange) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(),
		timeRange.Open.Hour, timeRange.Open.Minute, 0, 0, c.location)
	end := time.Date(date.Year(), date.Month(), date.Day(),
		timeRange.Close.Hour, timeRange.Close.Minute, 0, 0, c.location)
	return start.UTC(), end.UTC()
}

// buildDaySeries 将一天的K线转换为本地时刻键值的价格/成交量序列
// 度量变换以当日第一根K线为基准
func (c *Calculator) buildDaySeries(bars []core.Bar, measure core.Measure) (frame.Series, frame.Series, frame.DateKey) {
	priceSeries := make(frame.Series, len(bars))
	volumeSeries := make(frame.Series, len(bars))

	base := bars[0].Price
	var lastLocal time.Time

	for _, bar := range bars {
		local := bar.Timestamp.In(c.location)
		if local.After(lastLocal) {
			lastLocal = local
		}

		price := bar.Price
		switch measure {
		case core.MeasureNet:
			price = bar.Price - base
		case core.MeasurePct:
			price = (bar.Price - base) / base
		}

		t := timing.NewTimeOfDay(local)
		priceSeries[t] = price
		volumeSeries[t] = float64(bar.Volume)
	}

	// 列名取当日最大时间戳对应的本地日期
	return priceSeries, volumeSeries, frame.NewDateKey(lastLocal)
}

// reportProgress 上报进度
func (c *Calculator) reportProgress(done, total int) {
	if c.onProgress != nil {
		c.onProgress(done, total)
	}
}

// Prices 返回价格宽表，计算成功前为 nil
func (c *Calculator) Prices() *frame.Frame {
	return c.prices
}

// Volumes 返回成交量宽表，计算成功前为 nil
func (c *Calculator) Volumes() *frame.Frame {
	return c.volumes
}

// Label 返回仪器展示标签
func (c *Calculator) Label() string {
	return c.label
}

// Timezone 返回解析出的仪器交易时区
func (c *Calculator) Timezone() string {
	return c.tz
}
