package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"intrabar/pkg/chart"
	"intrabar/pkg/config"
	intrabarcore "intrabar/pkg/core"
	"intrabar/pkg/datepick"
	"intrabar/pkg/intraday"
	"intrabar/pkg/logger"
	"intrabar/pkg/provider"
	"intrabar/pkg/provider/decorators"
	"intrabar/pkg/provider/refinitiv"
	"intrabar/pkg/scheduler"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	ric         = flag.String("ric", "", "仪器代码 (RIC)，如 VOD.L")
	days        = flag.Int("days", datepick.DefaultDateCount, "回看交易日数 (1-10)")
	dates       = flag.String("dates", "", "逗号分隔的交易日列表 (YYYY-MM-DD)，覆盖 -days")
	from        = flag.String("from", "", "时段开始 (HH:MM)，默认 09:30")
	to          = flag.String("to", "", "时段结束 (HH:MM)，默认 16:00")
	measureFlag = flag.String("measure", "raw", "价格度量: raw / net / pct")
	configPath  = flag.String("config", "", "配置文件路径")
	outDir      = flag.String("out", "", "图表输出目录")
	theme       = flag.String("theme", "", "图表主题")
	serveAddr   = flag.String("serve", "", "启动本地图表服务的监听地址，如 :8380")
	refresh     = flag.String("refresh", "", "周期刷新的 cron 表达式 (秒级)，如 '0 */5 * * * *'")
	interactive = flag.Bool("interactive", false, "交互式调整日期与时段")
	logLevel    = flag.String("log-level", "info", "日志级别")
	logFormat   = flag.String("log-format", "text", "日志格式 (json 或 text)")
)

func main() {
	flag.Parse()

	// .env 文件可选，用于携带 APP_KEY 等密钥
	_ = godotenv.Load()

	logger.Init(logger.Config{
		Level:  *logLevel,
		Format: *logFormat,
	})

	log := logger.WithComponent("intrabar")

	if *ric == "" {
		log.Error("必须指定 -ric")
		flag.Usage()
		os.Exit(1)
	}

	// 加载配置
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Errorf("加载配置失败: %v", err)
			os.Exit(1)
		}
		cfg = loaded
		log.Debugf("已加载配置文件: %s", *configPath)
	}
	applyFlagOverrides(cfg)

	// 构建日期选择器
	picker, err := buildPicker(cfg)
	if err != nil {
		log.Errorf("构建日期选择器失败: %v", err)
		os.Exit(1)
	}

	if *interactive {
		accepted, err := datepick.Run(picker)
		if err != nil {
			log.Errorf("交互式选择失败: %v", err)
			os.Exit(1)
		}
		if !accepted {
			log.Info("已取消")
			os.Exit(0)
		}
	}

	measure, err := intrabarcore.ParseMeasure(*measureFlag)
	if err != nil {
		log.Errorf("无效的度量类型: %s", *measureFlag)
		os.Exit(1)
	}

	// 创建行情提供商并应用装饰器
	log.Debug("创建行情数据提供商")
	baseProvider := newRefinitivProvider(cfg)
	decorated := decorators.CreateDecoratedProvider(baseProvider, decorators.DefaultDecoratorConfig())

	providerManager := provider.NewManager()
	if err := providerManager.RegisterIntradayProvider("refinitiv", decorated); err != nil {
		log.Errorf("注册分钟行情提供商失败: %v", err)
		os.Exit(1)
	}
	if err := providerManager.RegisterReferenceProvider("refinitiv", baseProvider); err != nil {
		log.Errorf("注册参考数据提供商失败: %v", err)
		os.Exit(1)
	}
	log.Info("行情数据提供商注册成功")

	intradayProvider, _ := providerManager.GetIntradayProvider("refinitiv")
	referenceProvider, _ := providerManager.GetReferenceProvider("refinitiv")

	// 计算器与渲染器
	calculator := intraday.NewCalculator(intradayProvider, referenceProvider)
	calculator.SetProgressFunc(func(done, total int) {
		log.Debugf("进度: %d/%d", done, total)
	})

	renderer := chart.NewRenderer(&chart.RendererConfig{
		Theme:  cfg.Chart.Theme,
		Width:  cfg.Chart.Width,
		Height: cfg.Chart.Height,
		OutDir: cfg.Chart.OutDir,
	})

	executor := NewRefreshExecutor(calculator, renderer, picker, measure)

	// 首次计算并渲染
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	files, err := executor.Refresh(ctx, *ric)
	cancel()
	if err != nil {
		log.Errorf("度量计算失败: %v", err)
		os.Exit(1)
	}
	for _, f := range files {
		log.Infof("图表已生成: %s", f)
	}

	// 无服务、无周期刷新时直接退出
	if *serveAddr == "" && *refresh == "" {
		shutdown(providerManager, nil, nil, log)
		return
	}

	// 周期刷新
	var refreshScheduler *scheduler.RefreshScheduler
	if *refresh != "" {
		refreshScheduler = scheduler.NewRefreshScheduler()
		refreshScheduler.SetExecutor(executor)

		job := scheduler.JobConfig{
			Name:     "refresh-" + strings.ToLower(*ric),
			Enabled:  true,
			Schedule: *refresh,
			RIC:      *ric,
			Days:     picker.Count(),
			Measure:  string(measure),
		}
		if err := refreshScheduler.AddJob(job); err != nil {
			log.Errorf("添加刷新任务失败: %v", err)
			os.Exit(1)
		}
		if err := refreshScheduler.Start(); err != nil {
			log.Errorf("启动刷新调度器失败: %v", err)
			os.Exit(1)
		}
		log.Infof("周期刷新已启动: %s", *refresh)
	}

	// 本地图表服务
	var chartServer *chart.Server
	if *serveAddr != "" {
		chartServer = chart.NewServer(&chart.ServerConfig{
			Addr:   *serveAddr,
			OutDir: cfg.Chart.OutDir,
		})
		go func() {
			if err := chartServer.Start(); err != nil {
				log.Errorf("图表服务异常退出: %v", err)
			}
		}()
	}

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info("运行中，按 Ctrl+C 停止...")
	<-sigChan

	log.Info("收到停止信号，正在优雅关闭...")
	shutdown(providerManager, refreshScheduler, chartServer, log)
}

// applyFlagOverrides 用命令行参数覆盖配置
func applyFlagOverrides(cfg *config.Config) {
	if *days != datepick.DefaultDateCount {
		cfg.Picker.DateCount = *days
	}
	if *from != "" {
		cfg.Picker.OpenTime = *from
	}
	if *to != "" {
		cfg.Picker.CloseTime = *to
	}
	if *outDir != "" {
		cfg.Chart.OutDir = *outDir
	}
	if *theme != "" {
		cfg.Chart.Theme = *theme
	}
	if appKey := os.Getenv("APP_KEY"); appKey != "" && cfg.Provider.AppKey == "" {
		cfg.Provider.AppKey = appKey
	}
}

// buildPicker 根据配置与命令行参数构建日期选择器
func buildPicker(cfg *config.Config) (*datepick.Picker, error) {
	explicit, err := parseDates(*dates)
	if err != nil {
		return nil, err
	}

	cnt := cfg.Picker.DateCount
	if len(explicit) > 0 {
		cnt = len(explicit)
	}

	picker := datepick.New(cnt)

	for i, d := range explicit {
		if err := picker.SetDate(i, d); err != nil {
			return nil, err
		}
	}

	session, err := cfg.Session()
	if err != nil {
		return nil, err
	}
	if err := picker.SetTimeRange(session.Open, session.Close); err != nil {
		return nil, err
	}

	return picker, nil
}

// parseDates 解析逗号分隔的 YYYY-MM-DD 日期列表
func parseDates(s string) ([]time.Time, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	out := make([]time.Time, 0, len(parts))
	for _, part := range parts {
		d, err := time.Parse("2006-01-02", strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// newRefinitivProvider 按配置创建行情提供商
func newRefinitivProvider(cfg *config.Config) *refinitiv.Provider {
	p := refinitiv.NewProvider(
		refinitiv.WithBaseURL(cfg.Provider.BaseURL),
		refinitiv.WithAppKey(cfg.Provider.AppKey),
	)
	p.SetRateLimit(cfg.Provider.RateLimit)
	p.SetTimeout(cfg.Provider.Timeout)
	p.SetMaxRetries(cfg.Provider.MaxRetries)
	return p
}

// shutdown 按依赖顺序关闭各组件
func shutdown(manager *provider.Manager, refreshScheduler *scheduler.RefreshScheduler, chartServer *chart.Server, log *logrus.Entry) {
	if refreshScheduler != nil {
		if err := refreshScheduler.Stop(); err != nil {
			log.Errorf("停止刷新调度器失败: %v", err)
		}
	}

	if chartServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := chartServer.Shutdown(ctx); err != nil {
			log.Errorf("关闭图表服务失败: %v", err)
		}
		cancel()
	}

	if err := manager.Close(); err != nil {
		log.Errorf("关闭提供商失败: %v", err)
	}

	log.Info("已停止")
}
