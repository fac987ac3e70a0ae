package models

import (
	"testing"
	"time"
)

func TestExpenseRecordNormalize(t *testing.T) {
	t.Run("补全缺失字段", func(t *testing.T) {
		record := &ExpenseRecord{Amount: 100}
		record.Normalize()

		if record.Currency != LegacyCurrency {
			t.Errorf("unexpected currency: %s", record.Currency)
		}
		if record.Category != LegacyCategory {
			t.Errorf("unexpected category: %s", record.Category)
		}
	})

	t.Run("已有字段不改动", func(t *testing.T) {
		record := &ExpenseRecord{Amount: 100, Currency: CurrencyUSD, Category: CategoryHealth}
		record.Normalize()

		if record.Currency != CurrencyUSD || record.Category != CategoryHealth {
			t.Errorf("normalize must not overwrite existing fields: %+v", record)
		}
	})
}

func TestDateOnly(t *testing.T) {
	loc := time.FixedZone("ART", -3*60*60)
	input := time.Date(2026, 8, 15, 22, 30, 45, 123, loc)

	got := DateOnly(input)
	// -3 时区的 22:30 已是 UTC 的次日
	want := time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DateOnly(%v) = %v, want %v", input, got, want)
	}
}
