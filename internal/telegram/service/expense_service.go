package service

import (
	"context"
	"fmt"
	"time"

	"expense_bot/internal/logger"
	"expense_bot/internal/telegram/models"
	"expense_bot/internal/telegram/repository"
)

// ExpenseServiceImpl 支出记录服务实现
type ExpenseServiceImpl struct {
	expenseRepo repository.ExpenseRepository
}

// NewExpenseService 创建支出记录服务
func NewExpenseService(expenseRepo repository.ExpenseRepository) ExpenseService {
	return &ExpenseServiceImpl{
		expenseRepo: expenseRepo,
	}
}

// Record 保存一笔支出
// 写入失败会返回错误：静默丢弃支出记录是账本不能接受的
func (s *ExpenseServiceImpl) Record(ctx context.Context, amount float64, currency models.Currency, category models.Category, date time.Time) error {
	if amount < 0 {
		// 上游应当已把负数钳到零，这里兜底
		logger.L().Warnf("Negative expense amount %.2f clamped to zero", amount)
		amount = 0
	}

	if currency == "" {
		currency = models.LegacyCurrency
	}
	if category == "" {
		category = models.LegacyCategory
	}

	record := &models.ExpenseRecord{
		Date:     models.DateOnly(dateOrToday(date)),
		Amount:   amount,
		Currency: currency,
		Category: category,
	}

	if err := s.expenseRepo.Insert(ctx, record); err != nil {
		logger.L().Errorf("Failed to insert expense record: %v", err)
		return fmt.Errorf("не удалось сохранить расход")
	}

	logger.L().Infof("Expense recorded: amount=%.2f currency=%s category=%s date=%s",
		amount, currency, category, record.Date.Format("2006-01-02"))
	return nil
}

// dateOrToday 零值日期取今天
func dateOrToday(date time.Time) time.Time {
	if date.IsZero() {
		return time.Now()
	}
	return date
}
