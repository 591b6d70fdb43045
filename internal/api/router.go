package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"sandwich-bot/internal/api/handlers/health"
	lineHandler "sandwich-bot/internal/api/handlers/line"
	orderHandler "sandwich-bot/internal/api/handlers/order"
	"sandwich-bot/internal/api/middleware"
	"sandwich-bot/internal/core/order"
	"sandwich-bot/internal/core/session"
	"sandwich-bot/internal/infrastructure/config"
	"sandwich-bot/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 請求超時
const timeoutDuration = 30 * time.Second

// errRequestTimeout 請求處理超時
var errRequestTimeout = common.NewError("REQUEST_TIMEOUT", "請求超時", http.StatusGatewayTimeout, nil)

// Dependencies 路由使用的服務
type Dependencies struct {
	Engine   *order.Engine
	Store    session.Store
	Profiles lineHandler.ProfileLookup
	Replier  lineHandler.Replier
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if deps.Engine == nil || deps.Store == nil || deps.Replier == nil {
		return nil, fmt.Errorf("engine, session store and replier are required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID)))
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID", "X-Line-Signature"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(requestTimeout(timeoutDuration))

	// LINE 重送的事件 body 不同（isRedelivery），依 webhookEventId 去重
	events := middleware.NewDeduplicator(cfg.Line.EventDedupWindow)
	events.StartCleanup(10 * time.Minute)

	webhookHandler, err := lineHandler.NewHandler(
		cfg.Line.ChannelSecret, cfg.Bot, deps.Engine, deps.Store, deps.Profiles, deps.Replier, events,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize webhook handler: %w", err)
	}
	healthHandler := health.NewHandler(cfg.App.Version, deps.Store)
	parseHandler := orderHandler.NewHandler(deps.Engine)

	// 健康檢查路由
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	// LINE webhook
	router.POST("/webhook", middleware.Deduplication(cfg.DedupWindow), webhookHandler.HandleWebhook)

	// API 路由組
	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	{
		api.POST("/orders/parse", parseHandler.HandleParse)
		api.GET("/menu", parseHandler.HandleMenu)
	}

	common.LogInfo("Router setup completed successfully",
		zap.String("version", cfg.App.Version),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("dedup_window", cfg.DedupWindow),
		zap.Duration("event_dedup_window", cfg.Line.EventDedupWindow),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
		zap.String("channel_secret", config.MaskSecret(cfg.Line.ChannelSecret)),
	)

	return router, nil
}

// requestTimeout 設置請求超時
func requestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.Duration("timeout", timeout),
			)
			common.WriteError(c, errRequestTimeout, gin.H{"timeout": timeout.String()})
		}
	}
}
