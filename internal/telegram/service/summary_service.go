package service

import (
	"context"
	"fmt"
	"time"

	"expense_bot/internal/logger"
	"expense_bot/internal/telegram/models"
	"expense_bot/internal/telegram/repository"
)

// SummaryServiceImpl 支出汇总服务实现
type SummaryServiceImpl struct {
	expenseRepo repository.ExpenseRepository
	converter   ConverterService
}

// NewSummaryService 创建支出汇总服务
func NewSummaryService(expenseRepo repository.ExpenseRepository, converter ConverterService) SummaryService {
	return &SummaryServiceImpl{
		expenseRepo: expenseRepo,
		converter:   converter,
	}
}

// TotalsForDate 指定日期的分类汇总
func (s *SummaryServiceImpl) TotalsForDate(ctx context.Context, date time.Time, userID int64) (map[models.Category]float64, models.Currency, error) {
	records, err := s.expenseRepo.GetByDate(ctx, date)
	if err != nil {
		logger.L().Errorf("Failed to query expenses for date %s: %v", date.Format("2006-01-02"), err)
		return nil, "", fmt.Errorf("не удалось получить расходы")
	}

	return s.accumulate(ctx, records, userID)
}

// TotalsForMonth 指定年月的分类汇总
func (s *SummaryServiceImpl) TotalsForMonth(ctx context.Context, year int, month time.Month, userID int64) (map[models.Category]float64, models.Currency, error) {
	records, err := s.expenseRepo.GetByMonth(ctx, year, month)
	if err != nil {
		logger.L().Errorf("Failed to query expenses for month %d-%02d: %v", year, month, err)
		return nil, "", fmt.Errorf("не удалось получить расходы")
	}

	return s.accumulate(ctx, records, userID)
}

// TotalsForToday 今日分类汇总
func (s *SummaryServiceImpl) TotalsForToday(ctx context.Context, userID int64) (map[models.Category]float64, models.Currency, error) {
	return s.TotalsForDate(ctx, time.Now(), userID)
}

// TotalsForCurrentMonth 本月分类汇总
func (s *SummaryServiceImpl) TotalsForCurrentMonth(ctx context.Context, userID int64) (map[models.Category]float64, models.Currency, error) {
	now := time.Now()
	return s.TotalsForMonth(ctx, now.Year(), now.Month(), userID)
}

// accumulate 逐条换算到用户显示货币并按分类累加
// 无记录时返回空 map，调用方自行渲染"0"
func (s *SummaryServiceImpl) accumulate(ctx context.Context, records []*models.ExpenseRecord, userID int64) (map[models.Category]float64, models.Currency, error) {
	totals := make(map[models.Category]float64)
	displayCurrency := models.DefaultDisplayCurrency

	for _, record := range records {
		converted, to, err := s.converter.Convert(ctx, userID, record.Amount, record.Currency)
		if err != nil {
			logger.L().Errorf("Failed to convert expense amount: %v", err)
			return nil, "", fmt.Errorf("не удалось получить расходы")
		}
		displayCurrency = to
		totals[record.Category] += converted
	}

	// 没有记录时仍需返回用户的显示货币
	if len(records) == 0 {
		_, to, err := s.converter.Convert(ctx, userID, 0, models.PivotCurrency)
		if err != nil {
			return nil, "", fmt.Errorf("не удалось получить расходы")
		}
		displayCurrency = to
	}

	return totals, displayCurrency, nil
}
