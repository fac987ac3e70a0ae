package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"expense_bot/internal/ai/openai"
	"expense_bot/internal/config"
	"expense_bot/internal/logger"
	"expense_bot/internal/rates"
	"expense_bot/internal/telegram/repository"
	"expense_bot/internal/telegram/service"

	"github.com/go-telegram/bot"
	botModels "github.com/go-telegram/bot/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// Config Telegram Bot 配置
type Config struct {
	Token string // Bot Token
	Debug bool   // 是否开启调试模式
}

// Bot Telegram Bot 服务
type Bot struct {
	bot        *bot.Bot
	db         *mongo.Database
	httpClient *http.Client // 下载语音/图片文件用

	expenseRepo  repository.ExpenseRepository
	settingsRepo repository.SettingsRepository

	expenseService  service.ExpenseService
	summaryService  service.SummaryService
	settingsService service.SettingsService

	ai         *openai.Client
	workerPool *WorkerPool
}

// New 创建 Telegram Bot 实例
func New(cfg Config, db *mongo.Database, rateFeed *rates.Feed, aiClient *openai.Client) (*Bot, error) {
	// 验证配置
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram token cannot be empty")
	}
	if aiClient == nil {
		return nil, fmt.Errorf("openai client cannot be nil")
	}

	// 创建 repositories
	expenseRepo := repository.NewMongoExpenseRepository(db)
	settingsRepo := repository.NewMongoSettingsRepository(db)

	// 创建 services
	converter := service.NewConverterService(settingsRepo, rateFeed)
	telegramBot := &Bot{
		db:         db,
		httpClient: &http.Client{Timeout: 30 * time.Second},

		expenseRepo:  expenseRepo,
		settingsRepo: settingsRepo,

		expenseService:  service.NewExpenseService(expenseRepo),
		summaryService:  service.NewSummaryService(expenseRepo, converter),
		settingsService: service.NewSettingsService(settingsRepo),

		ai:         aiClient,
		workerPool: NewWorkerPool(8, 64),
	}

	// 创建 bot 实例（非命令消息走 defaultHandler：文本/语音/图片记账）
	opts := []bot.Option{
		bot.WithDefaultHandler(telegramBot.asyncHandler(telegramBot.handleDefault)),
	}
	if cfg.Debug {
		opts = append(opts, bot.WithDebug())
	}

	b, err := bot.New(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	telegramBot.bot = b

	// 注册 handlers
	telegramBot.registerHandlers()

	// 初始化数据库索引
	if err := telegramBot.ensureIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}

	logger.L().Info("Telegram bot initialized successfully")
	return telegramBot, nil
}

// InitFromConfig 从应用配置初始化 Telegram Bot
func InitFromConfig(cfg *config.Config, db *mongo.Database, rateFeed *rates.Feed, aiClient *openai.Client) (*Bot, error) {
	telegramCfg := Config{
		Token: cfg.TelegramToken,
		Debug: false, // 可根据需要从环境变量读取
	}
	return New(telegramCfg, db, rateFeed, aiClient)
}

// Start 启动 Bot（阻塞式，应在 goroutine 中运行）
func (b *Bot) Start(ctx context.Context) error {
	logger.L().Info("Starting Telegram bot...")
	b.bot.Start(ctx)
	logger.L().Info("Telegram bot stopped")
	return nil
}

// Stop 停止 Bot 并等待正在处理的消息完成
func (b *Bot) Stop(ctx context.Context) error {
	logger.L().Info("Stopping Telegram bot...")
	b.workerPool.Shutdown()
	return nil
}

// asyncHandler 将 handler 包装为经工作池异步执行
func (b *Bot) asyncHandler(handler bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
		b.workerPool.Submit(HandlerTask{
			Ctx:         ctx,
			BotInstance: botInstance,
			Update:      update,
			Handler:     handler,
		})
	}
}

// ensureIndexes 确保所有数据库索引存在
func (b *Bot) ensureIndexes(ctx context.Context) error {
	if err := b.expenseRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to ensure expense indexes: %w", err)
	}
	logger.L().Debug("Expense indexes ensured")

	if err := b.settingsRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to ensure settings indexes: %w", err)
	}
	logger.L().Debug("Settings indexes ensured")

	return nil
}
