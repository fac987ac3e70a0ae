package telegram

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"expense_bot/internal/ai/openai"
	"expense_bot/internal/logger"
	"expense_bot/internal/telegram/models"

	"github.com/go-telegram/bot"
	botModels "github.com/go-telegram/bot/models"
)

// registerHandlers 注册所有命令处理器（异步执行）
func (b *Bot) registerHandlers() {
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact,
		b.asyncHandler(b.handleStart))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact,
		b.asyncHandler(b.handleHelp))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/today", bot.MatchTypeExact,
		b.asyncHandler(b.handleToday))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/month", bot.MatchTypeExact,
		b.asyncHandler(b.handleMonth))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/currency", bot.MatchTypePrefix,
		b.asyncHandler(b.handleSetCurrency))
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/rate", bot.MatchTypePrefix,
		b.asyncHandler(b.handleSetRate))

	logger.L().Debug("All handlers registered with async execution")
}

// handleStart 处理 /start 命令
func (b *Bot) handleStart(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	welcomeText := "Привет! Я бот для учета расходов.\n\n" +
		"Отправь мне сообщение с расходом (текст, голос или фото чека),\n" +
		"и я сохраню его автоматически.\n\n" +
		"Команды:\n" +
		"/today - расходы за сегодня\n" +
		"/month - расходы за месяц\n" +
		"/currency - валюта отображения\n" +
		"/rate - ручной курс к ARS\n" +
		"/help - справка"

	b.sendMessage(ctx, update.Message.Chat.ID, welcomeText)
}

// handleHelp 处理 /help 命令
func (b *Bot) handleHelp(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil {
		return
	}

	helpText := "Команды:\n" +
		"/today - показать расходы за сегодня по категориям\n" +
		"/month - показать расходы за текущий месяц по категориям\n" +
		"/currency &lt;код&gt; - установить валюту отображения (USD, EUR, RUB, ARS)\n" +
		"/rate &lt;USD|RUB&gt; &lt;курс&gt; - установить ручной курс: 1 USD/RUB = курс ARS\n" +
		"/help - эта справка\n\n" +
		"Также можно просто отправлять сообщения с расходами:\n" +
		"- Текстовое сообщение\n" +
		"- Голосовое сообщение\n" +
		"- Фото чека или скриншота"

	b.sendMessage(ctx, update.Message.Chat.ID, helpText)
}

// handleToday 处理 /today 命令
func (b *Bot) handleToday(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	totals, currency, err := b.summaryService.TotalsForToday(ctx, update.Message.From.ID)
	if err != nil {
		b.sendErrorMessage(ctx, update.Message.Chat.ID, err.Error())
		return
	}

	b.sendMessage(ctx, update.Message.Chat.ID, formatTotals("Расходы за сегодня", totals, currency))
}

// handleMonth 处理 /month 命令
func (b *Bot) handleMonth(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	totals, currency, err := b.summaryService.TotalsForCurrentMonth(ctx, update.Message.From.ID)
	if err != nil {
		b.sendErrorMessage(ctx, update.Message.Chat.ID, err.Error())
		return
	}

	b.sendMessage(ctx, update.Message.Chat.ID, formatTotals("Расходы за текущий месяц", totals, currency))
}

// handleSetCurrency 处理 /currency 命令（设置显示货币）
func (b *Bot) handleSetCurrency(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	parts := strings.Fields(update.Message.Text)
	if len(parts) < 2 {
		b.sendErrorMessage(ctx, update.Message.Chat.ID,
			"Использование: /currency <код>\nНапример: /currency USD")
		return
	}

	currency, err := b.settingsService.SetDisplayCurrency(ctx, update.Message.From.ID, parts[1])
	if err != nil {
		b.sendErrorMessage(ctx, update.Message.Chat.ID, err.Error())
		return
	}

	b.sendSuccessMessage(ctx, update.Message.Chat.ID,
		fmt.Sprintf("Валюта отображения: %s", currency))
}

// handleSetRate 处理 /rate 命令（设置手动汇率）
func (b *Bot) handleSetRate(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	parts := strings.Fields(update.Message.Text)
	if len(parts) < 3 {
		b.sendErrorMessage(ctx, update.Message.Chat.ID,
			"Использование: /rate <USD|RUB> <курс>\nНапример: /rate USD 1150.5")
		return
	}

	rate, err := strconv.ParseFloat(strings.ReplaceAll(parts[2], ",", "."), 64)
	if err != nil {
		b.sendErrorMessage(ctx, update.Message.Chat.ID, "Курс должен быть числом")
		return
	}

	currency := models.ParseCurrency(parts[1])
	if err := b.settingsService.SetManualRate(ctx, update.Message.From.ID, currency, rate); err != nil {
		// service.ErrUnsupportedRatePair 与其余错误一样按原文回复
		b.sendErrorMessage(ctx, update.Message.Chat.ID, err.Error())
		return
	}

	b.sendSuccessMessage(ctx, update.Message.Chat.ID,
		fmt.Sprintf("Установлен курс: 1 %s = %s ARS", currency, parts[2]))
}

// handleDefault 处理非命令消息：文本/语音/图片记账
func (b *Bot) handleDefault(ctx context.Context, botInstance *bot.Bot, update *botModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	message := update.Message
	switch {
	case message.Voice != nil:
		b.handleVoice(ctx, message)
	case len(message.Photo) > 0:
		b.handlePhoto(ctx, message)
	case message.Text != "" && !strings.HasPrefix(message.Text, "/"):
		b.handleText(ctx, message)
	}
}

// handleText 文本消息记账
func (b *Bot) handleText(ctx context.Context, message *botModels.Message) {
	extraction, err := b.ai.ParseExpense(ctx, message.Text)
	if err != nil {
		logger.L().Errorf("Failed to parse expense from text: %v", err)
		b.sendErrorMessage(ctx, message.Chat.ID, "Ошибка при обработке сообщения")
		return
	}

	b.recordAndReply(ctx, message, extraction, "")
}

// handleVoice 语音消息记账（先转写再抽取）
func (b *Bot) handleVoice(ctx context.Context, message *botModels.Message) {
	audio, err := b.downloadFile(ctx, message.Voice.FileID)
	if err != nil {
		logger.L().Errorf("Failed to download voice file: %v", err)
		b.sendErrorMessage(ctx, message.Chat.ID, "Ошибка при обработке голосового сообщения")
		return
	}

	transcribed, err := b.ai.TranscribeVoice(ctx, bytes.NewReader(audio), "voice.ogg")
	if err != nil {
		logger.L().Errorf("Failed to transcribe voice: %v", err)
		b.sendErrorMessage(ctx, message.Chat.ID, "Ошибка при обработке голосового сообщения")
		return
	}

	extraction, err := b.ai.ParseExpense(ctx, transcribed)
	if err != nil {
		logger.L().Errorf("Failed to parse expense from transcript: %v", err)
		b.sendErrorMessage(ctx, message.Chat.ID, "Ошибка при обработке голосового сообщения")
		return
	}

	b.recordAndReply(ctx, message, extraction, fmt.Sprintf("Распознано: %s\n", transcribed))
}

// handlePhoto 图片消息记账（OCR 后抽取，取最大尺寸的图）
func (b *Bot) handlePhoto(ctx context.Context, message *botModels.Message) {
	photo := message.Photo[len(message.Photo)-1]

	image, err := b.downloadFile(ctx, photo.FileID)
	if err != nil {
		logger.L().Errorf("Failed to download photo: %v", err)
		b.sendErrorMessage(ctx, message.Chat.ID, "Ошибка при обработке изображения")
		return
	}

	extracted, err := b.ai.ExtractImageText(ctx, base64.StdEncoding.EncodeToString(image))
	if err != nil {
		logger.L().Errorf("Failed to extract text from image: %v", err)
		b.sendErrorMessage(ctx, message.Chat.ID, "Ошибка при обработке изображения")
		return
	}

	extraction, err := b.ai.ParseExpense(ctx, extracted)
	if err != nil {
		logger.L().Errorf("Failed to parse expense from image text: %v", err)
		b.sendErrorMessage(ctx, message.Chat.ID, "Ошибка при обработке изображения")
		return
	}

	b.recordAndReply(ctx, message, extraction, fmt.Sprintf("Прочитано с изображения: %s\n", extracted))
}

// recordAndReply 保存支出并回复当日汇总
func (b *Bot) recordAndReply(ctx context.Context, message *botModels.Message, extraction *openai.ExpenseExtraction, prefix string) {
	if extraction.Amount <= 0 {
		b.sendMessage(ctx, message.Chat.ID, prefix+"Не удалось извлечь сумму расхода из сообщения.")
		return
	}

	err := b.expenseService.Record(ctx, extraction.Amount, extraction.Currency, extraction.Category, time.Time{})
	if err != nil {
		b.sendErrorMessage(ctx, message.Chat.ID, err.Error())
		return
	}

	reply := fmt.Sprintf("%sРасход %.2f %s (%s) сохранен.",
		prefix, extraction.Amount, extraction.Currency, extraction.Category.DisplayName())

	// 保存成功后追加当日汇总；汇总失败不影响记账结果
	totals, currency, err := b.summaryService.TotalsForToday(ctx, message.From.ID)
	if err != nil {
		logger.L().Warnf("Failed to build today summary after recording: %v", err)
		b.sendMessage(ctx, message.Chat.ID, reply)
		return
	}

	b.sendMessage(ctx, message.Chat.ID, reply+"\n\n"+formatTotals("Всего за сегодня", totals, currency))
}

// downloadFile 通过 Bot API 下载文件内容
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.bot.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	link := b.bot.FileDownloadLink(file)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download returned non-200 status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file body: %w", err)
	}

	return data, nil
}
