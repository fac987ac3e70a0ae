//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	mongoclient "expense_bot/internal/mongo"
	"expense_bot/internal/telegram/models"
	"expense_bot/internal/telegram/repository"

	mongodriver "go.mongodb.org/mongo-driver/mongo"
)

func TestExpenseRepositoryIntegrationFlow(t *testing.T) {
	t.Parallel()

	db := setupIntegrationDatabase(t)
	expenseRepo := repository.NewMongoExpenseRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := expenseRepo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("failed to ensure indexes: %v", err)
	}

	today := models.DateOnly(time.Now().UTC())
	yesterday := today.AddDate(0, 0, -1)

	records := []*models.ExpenseRecord{
		{Date: today, Amount: 1500, Currency: models.CurrencyARS, Category: models.CategoryFood},
		{Date: today, Amount: 20, Currency: models.CurrencyUSD, Category: models.CategoryTransport},
		{Date: yesterday, Amount: 500, Currency: models.CurrencyRUB, Category: models.CategoryFood},
	}
	for _, record := range records {
		if err := expenseRepo.Insert(ctx, record); err != nil {
			t.Fatalf("failed to insert expense: %v", err)
		}
	}

	byDate, err := expenseRepo.GetByDate(ctx, today)
	if err != nil {
		t.Fatalf("failed to query expenses by date: %v", err)
	}
	if len(byDate) != 2 {
		t.Fatalf("unexpected record count for today: got %d, want %d", len(byDate), 2)
	}
	if byDate[0].Currency != models.CurrencyARS || byDate[1].Currency != models.CurrencyUSD {
		t.Fatalf("expected records ordered by creation time, got %s then %s", byDate[0].Currency, byDate[1].Currency)
	}
	if byDate[0].CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set on insert")
	}

	byMonth, err := expenseRepo.GetByMonth(ctx, today.Year(), today.Month())
	if err != nil {
		t.Fatalf("failed to query expenses by month: %v", err)
	}
	wantMonth := 2
	if yesterday.Month() == today.Month() {
		wantMonth = 3
	}
	if len(byMonth) != wantMonth {
		t.Fatalf("unexpected record count for month: got %d, want %d", len(byMonth), wantMonth)
	}
}

func TestSettingsRepositoryIntegrationFlow(t *testing.T) {
	t.Parallel()

	db := setupIntegrationDatabase(t)
	settingsRepo := repository.NewMongoSettingsRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := settingsRepo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("failed to ensure indexes: %v", err)
	}

	const userID int64 = 424242

	settings, err := settingsRepo.Get(ctx, userID)
	if err != nil {
		t.Fatalf("failed to query missing settings: %v", err)
	}
	if settings != nil {
		t.Fatalf("expected nil settings for unknown user, got %+v", settings)
	}

	// 先只写汇率，文档里不会有 display_currency 字段
	if err := settingsRepo.SetUSDRate(ctx, userID, 1000); err != nil {
		t.Fatalf("failed to set usd rate: %v", err)
	}

	settings, err = settingsRepo.Get(ctx, userID)
	if err != nil {
		t.Fatalf("failed to query settings after rate upsert: %v", err)
	}
	if settings == nil {
		t.Fatalf("expected settings document after upsert")
	}
	if settings.DisplayCurrency != models.DefaultDisplayCurrency {
		t.Fatalf("unexpected display currency: got %s, want %s", settings.DisplayCurrency, models.DefaultDisplayCurrency)
	}
	if settings.USDToARSRate == nil || *settings.USDToARSRate != 1000 {
		t.Fatalf("unexpected usd rate: got %v, want %v", settings.USDToARSRate, 1000)
	}
	if settings.RUBToARSRate != nil {
		t.Fatalf("expected rub rate to stay unset, got %v", *settings.RUBToARSRate)
	}

	if err := settingsRepo.SetDisplayCurrency(ctx, userID, models.CurrencyUSD); err != nil {
		t.Fatalf("failed to set display currency: %v", err)
	}
	if err := settingsRepo.SetRUBRate(ctx, userID, 11.5); err != nil {
		t.Fatalf("failed to set rub rate: %v", err)
	}

	settings, err = settingsRepo.Get(ctx, userID)
	if err != nil {
		t.Fatalf("failed to query settings after updates: %v", err)
	}
	if settings.DisplayCurrency != models.CurrencyUSD {
		t.Fatalf("unexpected display currency: got %s, want %s", settings.DisplayCurrency, models.CurrencyUSD)
	}
	if settings.USDToARSRate == nil || *settings.USDToARSRate != 1000 {
		t.Fatalf("usd rate lost after unrelated updates: got %v", settings.USDToARSRate)
	}
	if settings.RUBToARSRate == nil || *settings.RUBToARSRate != 11.5 {
		t.Fatalf("unexpected rub rate: got %v, want %v", settings.RUBToARSRate, 11.5)
	}
}

func setupIntegrationDatabase(t *testing.T) *mongodriver.Database {
	t.Helper()

	uri := envOrDefault("MONGO_URI", "mongodb://localhost:27017")
	baseDatabase := envOrDefault("TEST_DATABASE", "test_expense_bot")
	databaseName := fmt.Sprintf("%s_%d", baseDatabase, time.Now().UnixNano())

	client, err := mongoclient.NewClient(mongoclient.Config{
		URI:      uri,
		Database: databaseName,
		Timeout:  5 * time.Second,
	})
	if err != nil {
		if isCIEnvironment() {
			t.Fatalf("failed to connect MongoDB in CI: %v", err)
		}
		t.Skipf("MongoDB is not available locally, skip integration test: %v", err)
		return nil
	}

	db := client.Database()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := db.Drop(ctx); err != nil {
			t.Errorf("failed to drop integration database %s: %v", databaseName, err)
		}
		if err := client.Close(ctx); err != nil {
			t.Errorf("failed to close MongoDB connection: %v", err)
		}
	})

	return db
}

func envOrDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func isCIEnvironment() bool {
	return os.Getenv("CI") == "true" || os.Getenv("GITHUB_ACTIONS") == "true"
}
