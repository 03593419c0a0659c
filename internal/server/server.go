// Package server 签名边车的 HTTP 服务：健康检查、指标以及交易签名接口
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/SafeMPC/custody-signer/internal/multisig"
	"github.com/SafeMPC/custody-signer/internal/util"
	"github.com/dropbox/godropbox/time2"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const headerRequestID = "X-Request-ID"

// Server 签名边车服务，签名方就绪前 /health/ready 和 /v1/sign 返回 503
type Server struct {
	Echo *echo.Echo

	clock    time2.Clock
	started  time.Time
	gatherer prometheus.Gatherer

	mu       sync.RWMutex
	signer   multisig.TransactionSigner
	lastPing time.Time
}

// Option 配置 Server
type Option func(*Server)

// WithClock 注入时钟
func WithClock(clock time2.Clock) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

// WithGatherer 指定 /metrics 输出的指标来源，默认使用全局注册表
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// New 创建服务并注册路由
func New(opts ...Option) *Server {
	s := &Server{
		clock:    time2.DefaultClock,
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.started = s.clock.Now()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(e)
	e.Use(requestLogger)

	s.Echo = e
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/health", s.healthCheck)
	s.Echo.GET("/health/live", s.livenessCheck)
	s.Echo.GET("/health/ready", s.readinessCheck)
	s.Echo.GET("/ping", s.ping)
	s.Echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	s.Echo.POST("/v1/sign", s.postSign)
}

// SetSigner 设置签名方，之后服务进入就绪状态
func (s *Server) SetSigner(sg multisig.TransactionSigner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signer = sg
}

func (s *Server) currentSigner() multisig.TransactionSigner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.signer
}

// Start 监听 addr，直到 Shutdown 被调用
func (s *Server) Start(addr string) error {
	log.Info().Str("addr", addr).Msg("Starting signer server")

	if err := s.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "signer server stopped")
	}

	return nil
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down signer server")
	return s.Echo.Shutdown(ctx)
}

// requestLogger 为每个请求绑定带 request id 的 logger
func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()

		id := req.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Response().Header().Set(headerRequestID, id)

		l := log.With().Str("request_id", id).Str("method", req.Method).Str("path", req.URL.Path).Logger()
		c.SetRequest(req.WithContext(util.ContextWithLogger(req.Context(), l)))

		start := time.Now()
		err := next(c)
		l.Debug().Dur("elapsed", time.Since(start)).Msg("Request handled")

		return err
	}
}
