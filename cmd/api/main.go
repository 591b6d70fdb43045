package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sandwich-bot/internal/api"
	lineHandler "sandwich-bot/internal/api/handlers/line"
	"sandwich-bot/internal/core/order"
	"sandwich-bot/internal/core/profile"
	"sandwich-bot/internal/core/session"
	"sandwich-bot/internal/infrastructure/config"
	"sandwich-bot/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogDir, cfg.App.Name); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("channel_token_masked", config.MaskSecret(cfg.Line.ChannelAccessToken)),
		zap.String("session_backend", cfg.Session.Backend),
		zap.String("menu_file", cfg.Menu.File),
	)

	// 初始化訂單解析引擎
	engine, err := order.NewEngine(order.MenuFromConfig(cfg.Menu))
	if err != nil {
		common.LogFatal("Invalid menu", zap.Error(err))
	}

	// 初始化訂單暫存
	store, err := newSessionStore(cfg)
	if err != nil {
		common.LogFatal("Failed to initialize session store", zap.Error(err))
	}
	defer store.Close()

	replier, err := lineHandler.NewSDKReplier(cfg.Line)
	if err != nil {
		common.LogFatal("Failed to initialize LINE client", zap.Error(err))
	}

	// 設置路由
	router, err := api.SetupRouter(cfg, api.Dependencies{
		Engine:   engine,
		Store:    store,
		Profiles: profile.NewClient(cfg.Line),
		Replier:  replier,
	})
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}

// newSessionStore 依設定選擇暫存後端
func newSessionStore(cfg *config.Config) (session.Store, error) {
	switch cfg.Session.Backend {
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return session.NewRedisStore(ctx, cfg.Redis, cfg.Session.TTL)
	default:
		return session.NewMemoryStore(cfg.Session), nil
	}
}
