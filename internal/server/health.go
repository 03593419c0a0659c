package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// healthCheck 基础健康检查
func (s *Server) healthCheck(c echo.Context) error {
	now := s.clock.Now()
	status := map[string]interface{}{
		"status":    "ok",
		"timestamp": now.Format(time.RFC3339),
		"uptime":    now.Sub(s.started).String(),
	}

	if sg := s.currentSigner(); sg != nil {
		status["signer"] = sg.PublicKey().String()
	} else {
		status["signer"] = "not_ready"
		status["status"] = "degraded"
	}

	return c.JSON(http.StatusOK, status)
}

// livenessCheck 存活检查
func (s *Server) livenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "alive",
		"timestamp": s.clock.Now().Format(time.RFC3339),
	})
}

// readinessCheck 就绪检查，签名方公钥解析完成后才就绪
func (s *Server) readinessCheck(c echo.Context) error {
	status := "ready"
	httpStatus := http.StatusOK

	if s.currentSigner() == nil {
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, map[string]interface{}{
		"status":    status,
		"timestamp": s.clock.Now().Format(time.RFC3339),
	})
}

func (s *Server) ping(c echo.Context) error {
	s.mu.Lock()
	s.lastPing = s.clock.Now()
	last := s.lastPing
	s.mu.Unlock()

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":   "pong",
		"timestamp": last.Format(time.RFC3339),
	})
}
