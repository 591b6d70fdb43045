package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"sandwich-bot/internal/core/session"
	"sandwich-bot/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Sessions  map[string]interface{} `json:"sessions,omitempty"`
}

// Pinger 可檢查連線的依賴
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler 健康檢查處理器
type Handler struct {
	version string
	store   session.Store
}

// NewHandler 創建健康檢查處理器
func NewHandler(version string, store session.Store) *Handler {
	return &Handler{version: version, store: store}
}

// HealthCheck 健康檢查
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"go_version": runtime.Version(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	if sp, ok := h.store.(session.StatsProvider); ok {
		response.Sessions = sp.Stats()
	}

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查：暫存可連線時才就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if p, ok := h.store.(Pinger); ok {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			common.LogWarn("Readiness check failed", zap.Error(err))
			common.WriteError(c, common.ErrServiceUnavailable, gin.H{"session_store": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
