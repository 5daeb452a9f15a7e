package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockJobExecutor 模拟刷新执行器
type MockJobExecutor struct {
	mu           sync.Mutex
	executedJobs []string
	shouldError  bool
}

func (m *MockJobExecutor) Execute(ctx context.Context, job *Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executedJobs = append(m.executedJobs, job.Config.Name)
	if m.shouldError {
		return errors.New("刷新失败")
	}
	return nil
}

func (m *MockJobExecutor) executed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.executedJobs))
	copy(out, m.executedJobs)
	return out
}

func validJobConfig(name string) JobConfig {
	return JobConfig{
		Name:     name,
		Enabled:  true,
		Schedule: "*/5 * * * * *",
		RIC:      "VOD.L",
		Days:     5,
		Measure:  "pct",
	}
}

func TestNewRefreshScheduler(t *testing.T) {
	scheduler := NewRefreshScheduler()

	assert.NotNil(t, scheduler)
	assert.NotNil(t, scheduler.cron)
	assert.NotNil(t, scheduler.jobs)
	assert.NotNil(t, scheduler.ctx)
}

func TestRefreshScheduler_LoadConfig(t *testing.T) {
	tests := []struct {
		name        string
		configYAML  string
		expectError bool
		expectJobs  int
	}{
		{
			name: "有效配置",
			configYAML: `
jobs:
  - name: "refresh-vod"
    enabled: true
    schedule: "*/5 * * * * *"
    ric: "VOD.L"
    days: 5
    measure: "pct"
  - name: "refresh-hsbc"
    enabled: false
    schedule: "0 * * * * *"
    ric: "0005.HK"
    days: 3
    measure: "raw"
`,
			expectError: false,
			expectJobs:  2,
		},
		{
			name: "无效的 cron 表达式",
			configYAML: `
jobs:
  - name: "invalid-job"
    enabled: true
    schedule: "invalid-cron"
    ric: "VOD.L"
`,
			expectError: false, // 无效任务会被跳过，不会导致整体失败
			expectJobs:  0,
		},
		{
			name: "缺少仪器代码",
			configYAML: `
jobs:
  - name: "no-ric"
    enabled: true
    schedule: "*/5 * * * * *"
`,
			expectError: false, // 无效任务会被跳过
			expectJobs:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "test-config.yaml")

			err := os.WriteFile(configPath, []byte(tt.configYAML), 0644)
			require.NoError(t, err)

			scheduler := NewRefreshScheduler()
			err = scheduler.LoadConfig(configPath)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Len(t, scheduler.jobs, tt.expectJobs)
			}
		})
	}
}

func TestRefreshScheduler_AddJob(t *testing.T) {
	scheduler := NewRefreshScheduler()

	// 测试添加有效任务
	err := scheduler.AddJob(validJobConfig("refresh-vod"))
	assert.NoError(t, err)

	// 验证任务已添加
	job, err := scheduler.GetJob("refresh-vod")
	assert.NoError(t, err)
	assert.Equal(t, "refresh-vod", job.Config.Name)
	assert.Equal(t, "VOD.L", job.Config.RIC)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.NotEmpty(t, job.ID)

	// 测试添加重复任务
	err = scheduler.AddJob(validJobConfig("refresh-vod"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "任务已存在")

	// 测试添加无效任务
	invalid := validJobConfig("invalid-job")
	invalid.Schedule = "invalid-cron"
	err = scheduler.AddJob(invalid)
	assert.Error(t, err)
}

func TestRefreshScheduler_RemoveJob(t *testing.T) {
	scheduler := NewRefreshScheduler()

	err := scheduler.AddJob(validJobConfig("refresh-vod"))
	require.NoError(t, err)

	// 测试移除存在的任务
	err = scheduler.RemoveJob("refresh-vod")
	assert.NoError(t, err)

	_, err = scheduler.GetJob("refresh-vod")
	assert.Error(t, err)

	// 测试移除不存在的任务
	err = scheduler.RemoveJob("non-existent")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "任务不存在")
}

func TestRefreshScheduler_GetAllJobs(t *testing.T) {
	scheduler := NewRefreshScheduler()

	jobs := scheduler.GetAllJobs()
	assert.Len(t, jobs, 0)

	for i := 0; i < 3; i++ {
		err := scheduler.AddJob(validJobConfig(fmt.Sprintf("refresh-%d", i)))
		require.NoError(t, err)
	}

	jobs = scheduler.GetAllJobs()
	assert.Len(t, jobs, 3)

	// 验证返回的是副本，不会影响原始数据
	jobs[0].Status = JobStatusError
	originalJob, err := scheduler.GetJob(jobs[0].Config.Name)
	require.NoError(t, err)
	assert.NotEqual(t, JobStatusError, originalJob.Status)
}

func TestRefreshScheduler_RunJob(t *testing.T) {
	scheduler := NewRefreshScheduler()
	executor := &MockJobExecutor{}
	scheduler.SetExecutor(executor)

	err := scheduler.AddJob(validJobConfig("refresh-vod"))
	require.NoError(t, err)

	// 测试手动执行任务
	err = scheduler.RunJob("refresh-vod")
	assert.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	assert.Contains(t, executor.executed(), "refresh-vod")

	// 测试执行不存在的任务
	err = scheduler.RunJob("non-existent")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "任务不存在")

	// 测试执行禁用的任务
	disabled := validJobConfig("disabled-job")
	disabled.Enabled = false
	err = scheduler.AddJob(disabled)
	require.NoError(t, err)

	err = scheduler.RunJob("disabled-job")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "任务已禁用")
}

func TestRefreshScheduler_ExecuteError(t *testing.T) {
	scheduler := NewRefreshScheduler()
	executor := &MockJobExecutor{shouldError: true}
	scheduler.SetExecutor(executor)

	err := scheduler.AddJob(validJobConfig("refresh-vod"))
	require.NoError(t, err)

	err = scheduler.RunJob("refresh-vod")
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	job, err := scheduler.GetJob("refresh-vod")
	require.NoError(t, err)
	assert.Equal(t, JobStatusError, job.Status)
	assert.Equal(t, int64(1), job.ErrorCount)
	assert.Error(t, job.LastError)
}

func TestRefreshScheduler_StartStop(t *testing.T) {
	scheduler := NewRefreshScheduler()
	executor := &MockJobExecutor{}
	scheduler.SetExecutor(executor)

	err := scheduler.Start()
	assert.NoError(t, err)

	err = scheduler.Stop()
	assert.NoError(t, err)

	// 测试没有执行器时启动
	scheduler2 := NewRefreshScheduler()
	err = scheduler2.Start()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "任务执行器未设置")
}

func TestRefreshScheduler_validateJobConfig(t *testing.T) {
	scheduler := NewRefreshScheduler()

	tests := []struct {
		name        string
		mutate      func(*JobConfig)
		expectError bool
	}{
		{"有效配置", func(c *JobConfig) {}, false},
		{"缺少任务名称", func(c *JobConfig) { c.Name = "" }, true},
		{"缺少调度表达式", func(c *JobConfig) { c.Schedule = "" }, true},
		{"无效的调度表达式", func(c *JobConfig) { c.Schedule = "invalid-cron" }, true},
		{"缺少仪器代码", func(c *JobConfig) { c.RIC = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validJobConfig("test-job")
			tt.mutate(&config)

			err := scheduler.validateJobConfig(config)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRefreshScheduler_Integration(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "integration-test.yaml")

	configYAML := `
jobs:
  - name: "integration-refresh"
    enabled: true
    schedule: "*/1 * * * * *"  # 每秒执行一次
    ric: "VOD.L"
    days: 5
    measure: "net"
`

	err := os.WriteFile(configPath, []byte(configYAML), 0644)
	require.NoError(t, err)

	scheduler := NewRefreshScheduler()
	executor := &MockJobExecutor{}
	scheduler.SetExecutor(executor)

	err = scheduler.LoadConfig(configPath)
	require.NoError(t, err)

	jobs := scheduler.GetAllJobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "integration-refresh", jobs[0].Config.Name)
	assert.True(t, jobs[0].Config.Enabled)

	err = scheduler.Start()
	require.NoError(t, err)

	// 等待任务执行几次
	time.Sleep(2500 * time.Millisecond)

	err = scheduler.Stop()
	require.NoError(t, err)

	executed := executor.executed()
	assert.True(t, len(executed) >= 2, "任务应该至少执行2次")
	for _, name := range executed {
		assert.Equal(t, "integration-refresh", name)
	}

	job, err := scheduler.GetJob("integration-refresh")
	require.NoError(t, err)
	assert.True(t, job.RunCount >= 2, "运行次数应该至少为2")
	assert.NotNil(t, job.LastRun)
}
