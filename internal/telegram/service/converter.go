package service

import (
	"context"

	"expense_bot/internal/logger"
	"expense_bot/internal/telegram/models"
	"expense_bot/internal/telegram/repository"
)

// ConverterServiceImpl 货币换算服务实现
type ConverterServiceImpl struct {
	settingsRepo repository.SettingsRepository
	rateSource   RateSource
}

// NewConverterService 创建货币换算服务
func NewConverterService(settingsRepo repository.SettingsRepository, rateSource RateSource) ConverterService {
	return &ConverterServiceImpl{
		settingsRepo: settingsRepo,
		rateSource:   rateSource,
	}
}

// Convert 将金额换算到用户的显示货币
func (s *ConverterServiceImpl) Convert(ctx context.Context, userID int64, amount float64, from models.Currency) (float64, models.Currency, error) {
	settings, err := s.resolveSettings(ctx, userID)
	if err != nil {
		return 0, "", err
	}

	to := settings.DisplayCurrency
	return s.convert(ctx, amount, from, to, settings), to, nil
}

// ConvertTo 将金额换算到指定货币
func (s *ConverterServiceImpl) ConvertTo(ctx context.Context, userID int64, amount float64, from, to models.Currency) (float64, error) {
	settings, err := s.resolveSettings(ctx, userID)
	if err != nil {
		return 0, err
	}

	return s.convert(ctx, amount, from, to, settings), nil
}

// resolveSettings 读取用户设置，尚无记录时使用默认值
func (s *ConverterServiceImpl) resolveSettings(ctx context.Context, userID int64) (*models.UserSettings, error) {
	settings, err := s.settingsRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = models.DefaultUserSettings(userID)
	}
	return settings, nil
}

// convert 两段式换算：先折算到中转货币 ARS，再从 ARS 折算到目标货币
// 不做舍入，展示格式化是上层的事
func (s *ConverterServiceImpl) convert(ctx context.Context, amount float64, from, to models.Currency, settings *models.UserSettings) float64 {
	// 同币种直通，不查汇率
	if from == to {
		return amount
	}

	arsAmount := s.toPivot(ctx, amount, from, settings)
	return s.fromPivot(ctx, arsAmount, to, settings)
}

// toPivot 将金额折算为 ARS
// 手动汇率优先；汇率源的值均以 USD=1.0 为基准
func (s *ConverterServiceImpl) toPivot(ctx context.Context, amount float64, from models.Currency, settings *models.UserSettings) float64 {
	switch from {
	case models.CurrencyARS:
		return amount

	case models.CurrencyUSD:
		if settings.USDToARSRate != nil {
			return amount * *settings.USDToARSRate
		}
		snapshot := s.rateSource.Rates(ctx)
		return amount * snapshot.Rates[models.CurrencyARS]

	case models.CurrencyRUB:
		if settings.RUBToARSRate != nil {
			return amount * *settings.RUBToARSRate
		}
		snapshot := s.rateSource.Rates(ctx)
		return amount * (snapshot.Rates[models.CurrencyARS] / snapshot.Rates[models.CurrencyRUB])

	default:
		// 未知货币按已是 ARS 处理，不报错
		logger.L().Warnf("Unknown currency %s, treating amount as ARS", from)
		return amount
	}
}

// fromPivot 将 ARS 金额折算为目标货币
// 与 toPivot 对称：除以同一手动汇率或汇率源的值
func (s *ConverterServiceImpl) fromPivot(ctx context.Context, arsAmount float64, to models.Currency, settings *models.UserSettings) float64 {
	switch to {
	case models.CurrencyARS:
		return arsAmount

	case models.CurrencyUSD:
		if settings.USDToARSRate != nil {
			return arsAmount / *settings.USDToARSRate
		}
		snapshot := s.rateSource.Rates(ctx)
		return arsAmount / snapshot.Rates[models.CurrencyARS]

	case models.CurrencyRUB:
		if settings.RUBToARSRate != nil {
			return arsAmount / *settings.RUBToARSRate
		}
		snapshot := s.rateSource.Rates(ctx)
		return arsAmount * (snapshot.Rates[models.CurrencyRUB] / snapshot.Rates[models.CurrencyARS])

	default:
		// 其余目标货币（含 EUR）没有可设置的汇率对，按 ARS 金额原样返回
		return arsAmount
	}
}
