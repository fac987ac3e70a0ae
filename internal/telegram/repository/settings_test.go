package repository

import (
	"context"
	"strings"
	"testing"

	"expense_bot/internal/telegram/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoSettingsRepositoryGet(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		repo := &MongoSettingsRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(
			0,
			settingsNamespace(mt),
			mtest.FirstBatch,
			bson.D{
				{Key: "user_id", Value: int64(1001)},
				{Key: "display_currency", Value: "USD"},
				{Key: "usd_to_ars_rate", Value: 1150.5},
			},
		))

		settings, err := repo.Get(context.Background(), 1001)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if settings == nil {
			t.Fatalf("expected settings, got nil")
		}
		if settings.DisplayCurrency != models.CurrencyUSD {
			t.Fatalf("unexpected display currency: %s", settings.DisplayCurrency)
		}
		if settings.USDToARSRate == nil || *settings.USDToARSRate != 1150.5 {
			t.Fatalf("unexpected usd rate: %v", settings.USDToARSRate)
		}
		if settings.RUBToARSRate != nil {
			t.Fatalf("expected nil rub rate")
		}
	})

	mt.Run("not found returns nil", func(mt *mtest.T) {
		repo := &MongoSettingsRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(
			0,
			settingsNamespace(mt),
			mtest.FirstBatch,
		))

		settings, err := repo.Get(context.Background(), 9999)
		if err != nil {
			t.Fatalf("expected no error for missing settings, got %v", err)
		}
		if settings != nil {
			t.Fatalf("expected nil settings, got %+v", settings)
		}
	})

	mt.Run("missing display currency defaults to ARS", func(mt *mtest.T) {
		// 只设置过汇率的文档没有 display_currency 字段
		repo := &MongoSettingsRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(
			0,
			settingsNamespace(mt),
			mtest.FirstBatch,
			bson.D{
				{Key: "user_id", Value: int64(1002)},
				{Key: "rub_to_ars_rate", Value: 11.8},
			},
		))

		settings, err := repo.Get(context.Background(), 1002)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if settings.DisplayCurrency != models.DefaultDisplayCurrency {
			t.Fatalf("unexpected display currency: %s", settings.DisplayCurrency)
		}
	})

	mt.Run("find error", func(mt *mtest.T) {
		repo := &MongoSettingsRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "mock find failure",
		}))

		_, err := repo.Get(context.Background(), 1003)
		if err == nil {
			t.Fatalf("expected error but got nil")
		}
		if !strings.Contains(err.Error(), "failed to get user settings") {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestMongoSettingsRepositorySetFields(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("set display currency", func(mt *mtest.T) {
		repo := &MongoSettingsRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		if err := repo.SetDisplayCurrency(context.Background(), 2001, models.CurrencyEUR); err != nil {
			t.Fatalf("SetDisplayCurrency failed: %v", err)
		}
	})

	mt.Run("set usd rate", func(mt *mtest.T) {
		repo := &MongoSettingsRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		if err := repo.SetUSDRate(context.Background(), 2002, 1150.5); err != nil {
			t.Fatalf("SetUSDRate failed: %v", err)
		}
	})

	mt.Run("set rub rate", func(mt *mtest.T) {
		repo := &MongoSettingsRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		if err := repo.SetRUBRate(context.Background(), 2003, 11.8); err != nil {
			t.Fatalf("SetRUBRate failed: %v", err)
		}
	})

	mt.Run("update error", func(mt *mtest.T) {
		repo := &MongoSettingsRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    112,
			Name:    "WriteConflict",
			Message: "mock write conflict",
		}))

		err := repo.SetDisplayCurrency(context.Background(), 2004, models.CurrencyARS)
		if err == nil {
			t.Fatalf("expected error but got nil")
		}
		if !strings.Contains(err.Error(), "failed to update user settings") {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestMongoSettingsRepositoryEnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		repo := &MongoSettingsRepository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		if err := repo.EnsureIndexes(context.Background()); err != nil {
			t.Fatalf("EnsureIndexes failed: %v", err)
		}
	})
}

func settingsNamespace(mt *mtest.T) string {
	return mt.DB.Name() + "." + mt.Coll.Name()
}
