package repository

import (
	"context"
	"time"

	"expense_bot/internal/telegram/models"
)

// ExpenseRepository 支出账本数据访问接口（只追加，不修改不删除）
type ExpenseRepository interface {
	// Insert 写入一条支出记录
	Insert(ctx context.Context, record *models.ExpenseRecord) error

	// GetByDate 查询指定日期的全部记录（无记录时返回空切片）
	GetByDate(ctx context.Context, date time.Time) ([]*models.ExpenseRecord, error)

	// GetByMonth 查询指定年月的全部记录（无记录时返回空切片）
	GetByMonth(ctx context.Context, year int, month time.Month) ([]*models.ExpenseRecord, error)

	// EnsureIndexes 确保索引存在
	EnsureIndexes(ctx context.Context) error
}

// SettingsRepository 用户设置数据访问接口
type SettingsRepository interface {
	// Get 获取用户设置；用户尚无记录时返回 (nil, nil)
	Get(ctx context.Context, userID int64) (*models.UserSettings, error)

	// SetDisplayCurrency 设置显示货币（按 user_id upsert）
	SetDisplayCurrency(ctx context.Context, userID int64, currency models.Currency) error

	// SetUSDRate 设置手动汇率 1 USD = rate ARS
	SetUSDRate(ctx context.Context, userID int64, rate float64) error

	// SetRUBRate 设置手动汇率 1 RUB = rate ARS
	SetRUBRate(ctx context.Context, userID int64, rate float64) error

	// EnsureIndexes 确保索引存在
	EnsureIndexes(ctx context.Context) error
}
