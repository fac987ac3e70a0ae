package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"expense_bot/internal/app"
	"expense_bot/internal/config"
	"expense_bot/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	// 本地开发时从 .env 读取配置，文件不存在则忽略
	_ = godotenv.Load()

	// 初始化logger
	logger.Init()

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatalf("Failed to load config: %v", err)
	}

	// 初始化应用
	application, err := app.New(cfg)
	if err != nil {
		logger.L().Fatalf("Failed to initialize app: %v", err)
	}

	// 运行直到收到退出信号
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		logger.L().Errorf("App exited with error: %v", err)
	}

	// 优雅关闭
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := application.Close(shutdownCtx); err != nil {
		logger.L().Errorf("Failed to close app: %v", err)
	}

	logger.L().Info("Bye")
}
