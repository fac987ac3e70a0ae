package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"expense_bot/internal/config"
	"expense_bot/internal/logger"
	"expense_bot/internal/telegram/models"
)

// Client OpenAI 兼容接口客户端
// 承担三个外部协作者角色：语音转写、图片文字识别、自由文本的金额/货币/分类抽取
type Client struct {
	baseURL     string
	apiKey      string
	chatModel   string
	speechModel string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient 创建客户端
func NewClient(cfg config.OpenAIConfig, opts ...Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is empty")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	chatModel := strings.TrimSpace(cfg.ChatModel)
	if chatModel == "" {
		chatModel = "gpt-4o"
	}

	speechModel := strings.TrimSpace(cfg.SpeechModel)
	if speechModel == "" {
		speechModel = "whisper-1"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		chatModel:   chatModel,
		speechModel: speechModel,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

type chatCompletionRequest struct {
	Model       string                  `json:"model"`
	Messages    []chatCompletionMessage `json:"messages"`
	Temperature float64                 `json:"temperature"`
	MaxTokens   int                     `json:"max_tokens,omitempty"`
}

// chatCompletionMessage Content 为 string 或 []contentPart（图片消息）
type chatCompletionMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *imageURLPart `json:"image_url,omitempty"`
}

type imageURLPart struct {
	URL string `json:"url"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ExpenseExtraction 从文本中抽取的支出信息
type ExpenseExtraction struct {
	Amount   float64
	Currency models.Currency
	Category models.Category
}

type expenseExtractionPayload struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Category string  `json:"category"`
}

// ParseExpense 从自由文本中抽取支出金额、货币和分类
// 金额在返回前钳到非负，账本只存非负金额
func (c *Client) ParseExpense(ctx context.Context, text string) (*ExpenseExtraction, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text is empty")
	}

	systemPrompt := "Ты помощник для извлечения расходов из текста. " +
		"Отвечай ТОЛЬКО компактным JSON вида {\"amount\":123.45,\"currency\":\"RUB\",\"category\":\"food\"}. " +
		"currency — трёхбуквенный код (RUB, ARS, USD, EUR); если валюта не указана, используй RUB. " +
		"category — одна из: food, transport, entertainment, utilities, clothing, health, other. " +
		"Если суммы нет, верни amount 0. Без пояснений."

	userPrompt := fmt.Sprintf("Текст: %s", text)

	payload := chatCompletionRequest{
		Model: c.chatModel,
		Messages: []chatCompletionMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0,
		MaxTokens:   100,
	}

	content, err := c.chatCompletion(ctx, payload)
	if err != nil {
		return nil, err
	}

	return parseExpenseFromContent(content)
}

// ExtractImageText 识别图片（base64 JPEG）上的文字
func (c *Client) ExtractImageText(ctx context.Context, imageBase64 string) (string, error) {
	payload := chatCompletionRequest{
		Model: c.chatModel,
		Messages: []chatCompletionMessage{
			{
				Role: "user",
				Content: []contentPart{
					{
						Type: "text",
						Text: "Прочитай текст на этом изображении и верни его полностью.",
					},
					{
						Type: "image_url",
						ImageURL: &imageURLPart{
							URL: "data:image/jpeg;base64," + imageBase64,
						},
					},
				},
			},
		},
		Temperature: 0,
		MaxTokens:   300,
	}

	return c.chatCompletion(ctx, payload)
}

// chatCompletion 调用 chat/completions 并返回首个回复内容
func (c *Client) chatCompletion(ctx context.Context, payload chatCompletionRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal openai request failed: %w", err)
	}

	endpoint := strings.TrimRight(c.baseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create openai request failed: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request openai api failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read openai response failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logger.L().Warnf("OpenAI response: status=%d body=%s", resp.StatusCode, truncate(string(data), 512))
		return "", fmt.Errorf("openai http error: status=%d", resp.StatusCode)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(data, &completion); err != nil {
		return "", fmt.Errorf("decode openai response failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openai response has no choices")
	}

	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// TranscribeVoice 语音转写（multipart 上传音频文件）
func (c *Client) TranscribeVoice(ctx context.Context, audio io.Reader, filename string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create multipart file failed: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("copy audio data failed: %w", err)
	}
	if err := writer.WriteField("model", c.speechModel); err != nil {
		return "", fmt.Errorf("write multipart field failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer failed: %w", err)
	}

	endpoint := strings.TrimRight(c.baseURL, "/") + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("create transcription request failed: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request transcription api failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read transcription response failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logger.L().Warnf("Transcription response: status=%d body=%s", resp.StatusCode, truncate(string(data), 512))
		return "", fmt.Errorf("transcription http error: status=%d", resp.StatusCode)
	}

	var transcript transcriptionResponse
	if err := json.Unmarshal(data, &transcript); err != nil {
		return "", fmt.Errorf("decode transcription response failed: %w", err)
	}

	return strings.TrimSpace(transcript.Text), nil
}

// parseExpenseFromContent 解析模型返回的 JSON（容忍 markdown 代码块包裹）
func parseExpenseFromContent(content string) (*ExpenseExtraction, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, fmt.Errorf("openai returned empty content")
	}

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```JSON")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
	}

	var payload expenseExtractionPayload
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return nil, fmt.Errorf("decode expense payload failed: %w", err)
	}

	amount := payload.Amount
	if amount < 0 {
		amount = 0
	}

	currency := models.ParseCurrency(payload.Currency)
	if currency == "" {
		currency = models.LegacyCurrency
	}

	return &ExpenseExtraction{
		Amount:   amount,
		Currency: currency,
		Category: models.ParseCategory(payload.Category),
	}, nil
}

func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[:limit]
}
