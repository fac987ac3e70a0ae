package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 应用程序配置
type Config struct {
	TelegramToken string // Telegram Bot API Token
	MongoURI      string // MongoDB连接URI
	MongoDBName   string // MongoDB数据库名称
	Rates         RatesConfig
	OpenAI        OpenAIConfig
}

// RatesConfig 汇率源配置
type RatesConfig struct {
	FeedURL string        // 汇率接口地址（返回以USD为基准的rates文档）
	Timeout time.Duration // 单次拉取超时时间
}

// OpenAIConfig OpenAI 兼容接口配置
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	ChatModel   string // 文本/图片解析模型
	SpeechModel string // 语音转写模型
	Timeout     time.Duration
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	if mongoDBName == "" {
		mongoDBName = "expense_bot"
	}

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDBName:   mongoDBName,
	}

	ratesCfg, err := loadRatesConfig()
	if err != nil {
		return nil, err
	}
	cfg.Rates = ratesCfg

	openAICfg, err := loadOpenAIConfig()
	if err != nil {
		return nil, err
	}
	cfg.OpenAI = openAICfg

	return cfg, nil
}

func loadRatesConfig() (RatesConfig, error) {
	var cfg RatesConfig

	cfg.FeedURL = strings.TrimSpace(os.Getenv("RATE_FEED_URL"))
	if cfg.FeedURL == "" {
		cfg.FeedURL = "https://api.exchangerate-api.com/v4/latest/USD"
	}

	// 解析RATE_FEED_TIMEOUT_SECONDS（默认5秒）
	if timeoutStr := strings.TrimSpace(os.Getenv("RATE_FEED_TIMEOUT_SECONDS")); timeoutStr != "" {
		seconds, err := strconv.Atoi(timeoutStr)
		if err != nil || seconds <= 0 {
			return RatesConfig{}, fmt.Errorf("invalid RATE_FEED_TIMEOUT_SECONDS: %s", timeoutStr)
		}
		cfg.Timeout = time.Duration(seconds) * time.Second
	} else {
		cfg.Timeout = 5 * time.Second
	}

	return cfg, nil
}

func loadOpenAIConfig() (OpenAIConfig, error) {
	var cfg OpenAIConfig

	cfg.APIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	cfg.BaseURL = strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))

	cfg.ChatModel = strings.TrimSpace(os.Getenv("OPENAI_CHAT_MODEL"))
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-4o"
	}

	cfg.SpeechModel = strings.TrimSpace(os.Getenv("OPENAI_SPEECH_MODEL"))
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = "whisper-1"
	}

	if timeoutStr := strings.TrimSpace(os.Getenv("OPENAI_TIMEOUT_SECONDS")); timeoutStr != "" {
		seconds, err := strconv.Atoi(timeoutStr)
		if err != nil || seconds <= 0 {
			return OpenAIConfig{}, fmt.Errorf("invalid OPENAI_TIMEOUT_SECONDS: %s", timeoutStr)
		}
		cfg.Timeout = time.Duration(seconds) * time.Second
	} else {
		cfg.Timeout = 30 * time.Second
	}

	return cfg, nil
}
