package service

import (
	"context"
	"errors"
	"fmt"

	"expense_bot/internal/logger"
	"expense_bot/internal/telegram/models"
	"expense_bot/internal/telegram/repository"
)

// ErrUnsupportedRatePair 手动汇率只支持 USD→ARS 和 RUB→ARS
var ErrUnsupportedRatePair = errors.New("неподдерживаемая валютная пара, доступны только USD и RUB")

// SettingsServiceImpl 用户设置服务实现
type SettingsServiceImpl struct {
	settingsRepo repository.SettingsRepository
}

// NewSettingsService 创建用户设置服务
func NewSettingsService(settingsRepo repository.SettingsRepository) SettingsService {
	return &SettingsServiceImpl{
		settingsRepo: settingsRepo,
	}
}

// GetOrDefault 获取用户设置，尚无记录时返回默认值
func (s *SettingsServiceImpl) GetOrDefault(ctx context.Context, userID int64) (*models.UserSettings, error) {
	settings, err := s.settingsRepo.Get(ctx, userID)
	if err != nil {
		logger.L().Errorf("Failed to get settings for user %d: %v", userID, err)
		return nil, fmt.Errorf("не удалось получить настройки")
	}
	if settings == nil {
		settings = models.DefaultUserSettings(userID)
	}
	return settings, nil
}

// SetDisplayCurrency 设置显示货币
// 只接受已知货币代码，未知代码直接拒绝
func (s *SettingsServiceImpl) SetDisplayCurrency(ctx context.Context, userID int64, code string) (models.Currency, error) {
	currency := models.ParseCurrency(code)
	if !currency.Known() {
		return "", fmt.Errorf("неизвестная валюта %s, доступны: USD, EUR, RUB, ARS", currency)
	}

	if err := s.settingsRepo.SetDisplayCurrency(ctx, userID, currency); err != nil {
		logger.L().Errorf("Failed to set display currency for user %d: %v", userID, err)
		return "", fmt.Errorf("не удалось сохранить настройки")
	}

	logger.L().Infof("Display currency set: user_id=%d currency=%s", userID, currency)
	return currency, nil
}

// SetManualRate 设置手动汇率 1 currency = rate ARS
// 仅支持 USD 和 RUB，其余货币对拒绝且不改动任何状态
func (s *SettingsServiceImpl) SetManualRate(ctx context.Context, userID int64, currency models.Currency, rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("курс должен быть положительным числом")
	}

	var err error
	switch currency {
	case models.CurrencyUSD:
		err = s.settingsRepo.SetUSDRate(ctx, userID, rate)
	case models.CurrencyRUB:
		err = s.settingsRepo.SetRUBRate(ctx, userID, rate)
	default:
		logger.L().Warnf("Unsupported manual rate pair: %s -> ARS", currency)
		return ErrUnsupportedRatePair
	}

	if err != nil {
		logger.L().Errorf("Failed to set manual rate for user %d: %v", userID, err)
		return fmt.Errorf("не удалось сохранить курс")
	}

	logger.L().Infof("Manual rate set: user_id=%d 1 %s = %.4f ARS", userID, currency, rate)
	return nil
}
