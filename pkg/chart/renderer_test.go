package chart

import (
	"os"
	"path/filepath"
	"testing"

	"intrabar/pkg/frame"
	"intrabar/pkg/timing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleFrames 构造两个交易日的价格/成交量宽表
func sampleFrames() (*frame.Frame, *frame.Frame) {
	prices := frame.New()
	volumes := frame.New()

	t0 := timing.TimeOfDay{Hour: 9, Minute: 30}
	t1 := timing.TimeOfDay{Hour: 9, Minute: 31}

	prices.SetColumn("2024-06-10", frame.Series{t0: 100.0, t1: 101.5})
	prices.SetColumn("2024-06-11", frame.Series{t0: 102.0, t1: 99.8})
	volumes.SetColumn("2024-06-10", frame.Series{t0: 1000, t1: 1100})
	volumes.SetColumn("2024-06-11", frame.Series{t0: 1200, t1: 900})
	return prices, volumes
}

func TestRendererRenderAll(t *testing.T) {
	outDir := t.TempDir()
	renderer := NewRenderer(&RendererConfig{OutDir: outDir})
	prices, volumes := sampleFrames()

	t.Run("生成价格和成交量两个文件", func(t *testing.T) {
		files, err := renderer.RenderAll("VOD.L", "", "Vodafone (Timezone: Europe/London)", prices, volumes)
		require.NoError(t, err)
		require.Len(t, files, 2)

		assert.Equal(t, filepath.Join(outDir, "vod_l_prices.html"), files[0])
		assert.Equal(t, filepath.Join(outDir, "vod_l_volumes.html"), files[1])
		for _, f := range files {
			info, err := os.Stat(f)
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(0))
		}
	})

	t.Run("空标题回退为标签", func(t *testing.T) {
		files, err := renderer.RenderAll("VOD.L", "", "Vodafone (Timezone: Europe/London)", prices, volumes)
		require.NoError(t, err)

		content, err := os.ReadFile(files[0])
		require.NoError(t, err)
		assert.Contains(t, string(content), "Vodafone (Timezone: Europe/London)")
	})

	t.Run("显式标题覆盖标签", func(t *testing.T) {
		files, err := renderer.RenderAll("VOD.L", "Custom Title", "ignored label", prices, volumes)
		require.NoError(t, err)

		content, err := os.ReadFile(files[0])
		require.NoError(t, err)
		assert.Contains(t, string(content), "Custom Title")
		assert.NotContains(t, string(content), "ignored label")
	})

	t.Run("每个交易日是一条序列", func(t *testing.T) {
		files, err := renderer.RenderAll("VOD.L", "", "label", prices, volumes)
		require.NoError(t, err)

		content, err := os.ReadFile(files[0])
		require.NoError(t, err)
		assert.Contains(t, string(content), "2024-06-10")
		assert.Contains(t, string(content), "2024-06-11")
		assert.Contains(t, string(content), "09:30")
		assert.Contains(t, string(content), "09:31")
	})

	t.Run("空价格表返回错误", func(t *testing.T) {
		_, err := renderer.RenderAll("VOD.L", "", "label", frame.New(), frame.New())
		assert.Error(t, err)
	})
}

func TestRendererConfig(t *testing.T) {
	t.Run("nil配置使用默认值", func(t *testing.T) {
		renderer := NewRenderer(nil)
		assert.Equal(t, "charts", renderer.OutDir())
		assert.Equal(t, DefaultTheme, renderer.config.Theme)
	})

	t.Run("空字段回填默认值", func(t *testing.T) {
		renderer := NewRenderer(&RendererConfig{OutDir: "out"})
		assert.Equal(t, "out", renderer.OutDir())
		assert.Equal(t, DefaultWidth, renderer.config.Width)
		assert.Equal(t, DefaultHeight, renderer.config.Height)
	})
}

func TestChartFileNames(t *testing.T) {
	assert.Equal(t, "vod_l_prices.html", PriceFile("VOD.L"))
	assert.Equal(t, "vod_l_volumes.html", VolumeFile("VOD.L"))
	assert.Equal(t, "0005_hk_prices.html", PriceFile("0005.HK"))
}
