package service

import (
	"context"
	"time"

	"expense_bot/internal/rates"
	"expense_bot/internal/telegram/models"
)

// RateSource 全局汇率来源
// rates.Feed 实现了该接口；测试中用固定快照替代
type RateSource interface {
	Rates(ctx context.Context) rates.Snapshot
}

// ConverterService 货币换算业务逻辑接口
// 所有换算经过固定中转货币 ARS，用户手动汇率优先于全局汇率源
type ConverterService interface {
	// Convert 将金额换算到用户的显示货币，返回换算结果与目标货币
	Convert(ctx context.Context, userID int64, amount float64, from models.Currency) (float64, models.Currency, error)

	// ConvertTo 将金额换算到指定货币
	ConvertTo(ctx context.Context, userID int64, amount float64, from, to models.Currency) (float64, error)
}

// ExpenseService 支出记录业务逻辑接口
type ExpenseService interface {
	// Record 保存一笔支出；date 为零值时取今天
	Record(ctx context.Context, amount float64, currency models.Currency, category models.Category, date time.Time) error
}

// SummaryService 支出汇总业务逻辑接口
// 汇总结果以请求用户的显示货币计价，按分类分组
type SummaryService interface {
	// TotalsForDate 指定日期的分类汇总
	TotalsForDate(ctx context.Context, date time.Time, userID int64) (map[models.Category]float64, models.Currency, error)

	// TotalsForMonth 指定年月的分类汇总
	TotalsForMonth(ctx context.Context, year int, month time.Month, userID int64) (map[models.Category]float64, models.Currency, error)

	// TotalsForToday 今日分类汇总
	TotalsForToday(ctx context.Context, userID int64) (map[models.Category]float64, models.Currency, error)

	// TotalsForCurrentMonth 本月分类汇总
	TotalsForCurrentMonth(ctx context.Context, userID int64) (map[models.Category]float64, models.Currency, error)
}

// SettingsService 用户设置业务逻辑接口
type SettingsService interface {
	// GetOrDefault 获取用户设置，尚无记录时返回默认值
	GetOrDefault(ctx context.Context, userID int64) (*models.UserSettings, error)

	// SetDisplayCurrency 设置显示货币
	SetDisplayCurrency(ctx context.Context, userID int64, code string) (models.Currency, error)

	// SetManualRate 设置手动汇率 1 currency = rate ARS（仅支持 USD 和 RUB）
	SetManualRate(ctx context.Context, userID int64, currency models.Currency, rate float64) error
}
