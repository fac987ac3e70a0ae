package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"expense_bot/internal/telegram/models"

	"github.com/stretchr/testify/require"
)

// stubExpenseRepository 固定返回预设记录的 ExpenseRepository
type stubExpenseRepository struct {
	records  []*models.ExpenseRecord
	queryErr error

	inserted []*models.ExpenseRecord
}

func (s *stubExpenseRepository) Insert(ctx context.Context, record *models.ExpenseRecord) error {
	if s.queryErr != nil {
		return s.queryErr
	}
	s.inserted = append(s.inserted, record)
	return nil
}

func (s *stubExpenseRepository) GetByDate(ctx context.Context, date time.Time) ([]*models.ExpenseRecord, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.records, nil
}

func (s *stubExpenseRepository) GetByMonth(ctx context.Context, year int, month time.Month) ([]*models.ExpenseRecord, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.records, nil
}

func (s *stubExpenseRepository) EnsureIndexes(ctx context.Context) error {
	return nil
}

func newSummaryService(records []*models.ExpenseRecord, settings *models.UserSettings) SummaryService {
	expenseRepo := &stubExpenseRepository{records: records}
	converter := NewConverterService(&stubSettingsRepository{settings: settings}, fallbackSource())
	return NewSummaryService(expenseRepo, converter)
}

func TestSummaryAggregation(t *testing.T) {
	// 兜底汇率、无手动汇率：
	// food: (100+50) USD * 900 = 135000 ARS
	// transport: 30 RUB * (900/90) = 300 ARS
	records := []*models.ExpenseRecord{
		{Amount: 100, Currency: models.CurrencyUSD, Category: models.CategoryFood},
		{Amount: 50, Currency: models.CurrencyUSD, Category: models.CategoryFood},
		{Amount: 30, Currency: models.CurrencyRUB, Category: models.CategoryTransport},
	}

	summary := newSummaryService(records, nil)
	totals, currency, err := summary.TotalsForDate(context.Background(), time.Now(), 1)
	require.NoError(t, err)

	require.Equal(t, models.CurrencyARS, currency)
	require.Len(t, totals, 2)
	require.InEpsilon(t, 135000.0, totals[models.CategoryFood], 1e-9)
	require.InEpsilon(t, 300.0, totals[models.CategoryTransport], 1e-9)
}

func TestSummaryAggregationInDisplayCurrency(t *testing.T) {
	// 显示货币 USD：汇总结果按 USD 计价
	records := []*models.ExpenseRecord{
		{Amount: 900, Currency: models.CurrencyARS, Category: models.CategoryFood},
		{Amount: 2, Currency: models.CurrencyUSD, Category: models.CategoryFood},
	}
	settings := &models.UserSettings{UserID: 5, DisplayCurrency: models.CurrencyUSD}

	summary := newSummaryService(records, settings)
	totals, currency, err := summary.TotalsForMonth(context.Background(), 2026, time.August, 5)
	require.NoError(t, err)

	require.Equal(t, models.CurrencyUSD, currency)
	// 900 ARS = 1 USD；2 USD 同币种直通
	require.InEpsilon(t, 3.0, totals[models.CategoryFood], 1e-9)
}

func TestSummaryEmptyPeriod(t *testing.T) {
	// 没有记录时返回空 map，而不是错误或带零值分类的 map
	summary := newSummaryService(nil, nil)

	totals, currency, err := summary.TotalsForMonth(context.Background(), 2026, time.January, 1)
	require.NoError(t, err)
	require.Empty(t, totals)
	require.Equal(t, models.CurrencyARS, currency)
}

func TestSummaryEmptyPeriodUsesDisplayCurrency(t *testing.T) {
	settings := &models.UserSettings{UserID: 3, DisplayCurrency: models.CurrencyEUR}
	summary := newSummaryService(nil, settings)

	totals, currency, err := summary.TotalsForToday(context.Background(), 3)
	require.NoError(t, err)
	require.Empty(t, totals)
	require.Equal(t, models.CurrencyEUR, currency)
}

func TestSummaryOverrideApplied(t *testing.T) {
	// 手动汇率 1 USD = 1000 ARS 优先于兜底快照
	records := []*models.ExpenseRecord{
		{Amount: 1, Currency: models.CurrencyUSD, Category: models.CategoryHealth},
	}
	settings := &models.UserSettings{
		UserID:          9,
		DisplayCurrency: models.CurrencyARS,
		USDToARSRate:    floatPtr(1000),
	}

	summary := newSummaryService(records, settings)
	totals, _, err := summary.TotalsForDate(context.Background(), time.Now(), 9)
	require.NoError(t, err)
	require.Equal(t, 1000.0, totals[models.CategoryHealth])
}

func TestSummaryQueryError(t *testing.T) {
	expenseRepo := &stubExpenseRepository{queryErr: errors.New("mock connection refused")}
	converter := NewConverterService(&stubSettingsRepository{}, fallbackSource())
	summary := NewSummaryService(expenseRepo, converter)

	_, _, err := summary.TotalsForToday(context.Background(), 1)
	require.Error(t, err)
}

func TestSummaryUnknownCurrencyRecord(t *testing.T) {
	// 未知货币的记录按 ARS 直通参与汇总，不报错
	records := []*models.ExpenseRecord{
		{Amount: 100, Currency: models.Currency("XYZ"), Category: models.CategoryOther},
	}

	summary := newSummaryService(records, nil)
	totals, _, err := summary.TotalsForToday(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 100.0, totals[models.CategoryOther])
}
