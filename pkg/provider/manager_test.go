package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intrabar/pkg/core"
)

// fakeProvider 同时实现日内行情与参考数据接口
type fakeProvider struct {
	closed bool
}

func (f *fakeProvider) Name() string                { return "fake" }
func (f *fakeProvider) GetRateLimit() time.Duration { return 0 }
func (f *fakeProvider) IsHealthy() bool             { return true }
func (f *fakeProvider) IsRICSupported(string) bool  { return true }

func (f *fakeProvider) FetchMinuteBars(ctx context.Context, ric string, start, end time.Time) ([]core.Bar, error) {
	return nil, nil
}

func (f *fakeProvider) FetchInstrumentInfo(ctx context.Context, ric string) (*core.InstrumentInfo, error) {
	return &core.InstrumentInfo{RIC: ric}, nil
}

func (f *fakeProvider) Close() error {
	f.closed = true
	return nil
}

func TestManagerRegister(t *testing.T) {
	t.Run("注册与查找", func(t *testing.T) {
		m := NewManager()
		fake := &fakeProvider{}

		require.NoError(t, m.RegisterIntradayProvider("fake", fake))
		require.NoError(t, m.RegisterReferenceProvider("fake", fake))

		p, err := m.GetIntradayProvider("fake")
		require.NoError(t, err)
		assert.Equal(t, "fake", p.Name())

		r, err := m.GetReferenceProvider("fake")
		require.NoError(t, err)
		assert.Equal(t, "fake", r.Name())
	})

	t.Run("空名称被拒绝", func(t *testing.T) {
		m := NewManager()
		assert.Error(t, m.RegisterIntradayProvider("", &fakeProvider{}))
	})

	t.Run("nil提供商被拒绝", func(t *testing.T) {
		m := NewManager()
		assert.Error(t, m.RegisterIntradayProvider("x", nil))
	})

	t.Run("未注册提供商查找失败", func(t *testing.T) {
		m := NewManager()
		_, err := m.GetIntradayProvider("missing")
		assert.Error(t, err)
	})
}

func TestManagerRegisterProvider(t *testing.T) {
	t.Run("智能注册到两个类别", func(t *testing.T) {
		m := NewManager()
		require.NoError(t, m.RegisterProvider("fake", &fakeProvider{}))

		_, err := m.GetIntradayProvider("fake")
		assert.NoError(t, err)
		_, err = m.GetReferenceProvider("fake")
		assert.NoError(t, err)
	})

	t.Run("不支持的类型报错", func(t *testing.T) {
		m := NewManager()
		assert.Error(t, m.RegisterProvider("bad", struct{}{}))
	})
}

func TestManagerListProviders(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.RegisterProvider("fake", &fakeProvider{}))

	listed := m.ListProviders()
	assert.Contains(t, listed[TypeIntraday], "fake")
	assert.Contains(t, listed[TypeReference], "fake")
}

func TestManagerUnregister(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.RegisterProvider("fake", &fakeProvider{}))

	require.NoError(t, m.UnregisterProvider("fake"))
	_, err := m.GetIntradayProvider("fake")
	assert.Error(t, err)

	assert.Error(t, m.UnregisterProvider("fake"), "重复注销应报错")
}

func TestManagerClose(t *testing.T) {
	t.Run("关闭时清理可关闭提供商", func(t *testing.T) {
		m := NewManager()
		fake := &fakeProvider{}
		require.NoError(t, m.RegisterProvider("fake", fake))

		require.NoError(t, m.Close())
		assert.True(t, fake.closed)

		_, err := m.GetIntradayProvider("fake")
		assert.Error(t, err, "关闭后注册表应清空")
	})
}
