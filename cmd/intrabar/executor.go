package main

import (
	"context"
	"fmt"
	"time"

	"intrabar/pkg/chart"
	"intrabar/pkg/core"
	"intrabar/pkg/datepick"
	"intrabar/pkg/intraday"
	"intrabar/pkg/logger"
	"intrabar/pkg/scheduler"

	"github.com/sirupsen/logrus"
)

// RefreshExecutor 刷新执行器，重新计算度量并重绘图表
type RefreshExecutor struct {
	calculator *intraday.Calculator
	renderer   *chart.Renderer
	picker     *datepick.Picker
	measure    core.Measure
	log        *logrus.Entry
}

// NewRefreshExecutor 创建刷新执行器
func NewRefreshExecutor(calculator *intraday.Calculator, renderer *chart.Renderer, picker *datepick.Picker, measure core.Measure) *RefreshExecutor {
	return &RefreshExecutor{
		calculator: calculator,
		renderer:   renderer,
		picker:     picker,
		measure:    measure,
		log:        logger.WithComponent("RefreshExecutor"),
	}
}

// Refresh 计算度量并渲染图表，返回生成的文件路径
func (e *RefreshExecutor) Refresh(ctx context.Context, ric string) ([]string, error) {
	start := time.Now()

	err := e.calculator.CalculateMeasures(ctx, ric, e.picker.Dates(), e.picker.TimeRange(), e.measure)
	if err != nil {
		return nil, fmt.Errorf("计算度量失败: %w", err)
	}
	e.log.Debugf("度量计算耗时: %v", time.Since(start))

	files, err := e.renderer.RenderAll(ric, "", e.calculator.Label(),
		e.calculator.Prices(), e.calculator.Volumes())
	if err != nil {
		return nil, fmt.Errorf("渲染图表失败: %w", err)
	}

	return files, nil
}

// Execute 实现 JobExecutor 接口，周期刷新时以任务当天为基准重选日期
func (e *RefreshExecutor) Execute(ctx context.Context, job *scheduler.Job) error {
	log := e.log.WithFields(map[string]interface{}{
		"job":   job.Config.Name,
		"jobID": job.ID,
	})

	log.Infof("开始刷新 %s", job.Config.RIC)

	// 刷新任务重建选择器，保证日期窗口随时间前移
	days := job.Config.Days
	if days < datepick.MinDateCount || days > datepick.MaxDateCount {
		days = datepick.DefaultDateCount
	}
	picker := datepick.New(days)
	if err := picker.SetTimeRange(e.picker.TimeRange().Open, e.picker.TimeRange().Close); err != nil {
		return fmt.Errorf("设置时段失败: %w", err)
	}
	e.picker = picker

	measure := e.measure
	if job.Config.Measure != "" {
		parsed, err := core.ParseMeasure(job.Config.Measure)
		if err != nil {
			return fmt.Errorf("无效的度量类型 %q: %w", job.Config.Measure, err)
		}
		measure = parsed
	}
	e.measure = measure

	files, err := e.Refresh(ctx, job.Config.RIC)
	if err != nil {
		return err
	}

	for _, f := range files {
		log.Debugf("图表已更新: %s", f)
	}
	return nil
}
