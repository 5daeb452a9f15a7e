package chart

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"intrabar/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ServerConfig 图表HTTP服务配置
type ServerConfig struct {
	Addr   string // 监听地址, 如 ":8380"
	OutDir string // 图表HTML所在目录
}

// DefaultServerConfig 返回默认服务配置
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr:   ":8380",
		OutDir: "charts",
	}
}

// Server 本地图表浏览服务
// 提供图表HTML静态访问和JSON索引
type Server struct {
	config *ServerConfig
	engine *gin.Engine
	server *http.Server
	log    *logrus.Entry
}

// NewServer 创建图表服务
func NewServer(config *ServerConfig) *Server {
	if config == nil {
		config = DefaultServerConfig()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		config: config,
		engine: engine,
		log:    logger.WithComponent("ChartServer"),
	}
	s.registerRoutes()
	return s
}

// registerRoutes 注册路由
func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/charts", s.handleIndex)
	s.engine.Static("/charts/view", s.config.OutDir)
	s.engine.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/charts")
	})
}

// handleHealth 健康检查
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// chartEntry 索引中的一项图表
type chartEntry struct {
	Name     string    `json:"name"`
	URL      string    `json:"url"`
	Modified time.Time `json:"modified"`
	Size     int64     `json:"size"`
}

// handleIndex 列出输出目录下的全部图表HTML
func (s *Server) handleIndex(c *gin.Context) {
	entries, err := os.ReadDir(s.config.OutDir)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusOK, gin.H{"charts": []chartEntry{}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	charts := make([]chartEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		charts = append(charts, chartEntry{
			Name:     entry.Name(),
			URL:      "/charts/view/" + entry.Name(),
			Modified: info.ModTime(),
			Size:     info.Size(),
		})
	}
	sort.Slice(charts, func(i, j int) bool {
		return charts[i].Name < charts[j].Name
	})

	c.JSON(http.StatusOK, gin.H{"charts": charts, "dir": filepath.Clean(s.config.OutDir)})
}

// Start 启动HTTP服务，阻塞直到服务退出
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.config.Addr,
		Handler: s.engine,
	}

	s.log.Infof("图表服务启动: http://localhost%s/charts", s.config.Addr)
	err := s.server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭服务
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.log.Info("图表服务关闭中")
	return s.server.Shutdown(ctx)
}

// Handler 返回底层HTTP处理器，测试用
func (s *Server) Handler() http.Handler {
	return s.engine
}
