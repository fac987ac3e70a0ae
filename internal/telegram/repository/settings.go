package repository

import (
	"context"
	"errors"
	"fmt"

	"expense_bot/internal/telegram/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSettingsRepository 用户设置数据访问层（MongoDB 实现）
type MongoSettingsRepository struct {
	collection *mongo.Collection
}

// NewMongoSettingsRepository 创建用户设置 Repository
func NewMongoSettingsRepository(db *mongo.Database) SettingsRepository {
	return &MongoSettingsRepository{
		collection: db.Collection("user_settings"),
	}
}

// Get 获取用户设置
// 用户尚无记录时返回 (nil, nil)，默认值由调用方填充
func (r *MongoSettingsRepository) Get(ctx context.Context, userID int64) (*models.UserSettings, error) {
	filter := bson.M{"user_id": userID}

	var settings models.UserSettings
	err := r.collection.FindOne(ctx, filter).Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user settings: %w", err)
	}

	// 只设置过汇率的记录没有 display_currency 字段
	if settings.DisplayCurrency == "" {
		settings.DisplayCurrency = models.DefaultDisplayCurrency
	}

	return &settings, nil
}

// SetDisplayCurrency 设置显示货币（按 user_id upsert）
func (r *MongoSettingsRepository) SetDisplayCurrency(ctx context.Context, userID int64, currency models.Currency) error {
	return r.setField(ctx, userID, "display_currency", currency)
}

// SetUSDRate 设置手动汇率 1 USD = rate ARS
func (r *MongoSettingsRepository) SetUSDRate(ctx context.Context, userID int64, rate float64) error {
	return r.setField(ctx, userID, "usd_to_ars_rate", rate)
}

// SetRUBRate 设置手动汇率 1 RUB = rate ARS
func (r *MongoSettingsRepository) SetRUBRate(ctx context.Context, userID int64, rate float64) error {
	return r.setField(ctx, userID, "rub_to_ars_rate", rate)
}

// setField 按 user_id upsert 单个字段
// 每次写入只动一个字段，同一用户并发写入不同字段互不覆盖
func (r *MongoSettingsRepository) setField(ctx context.Context, userID int64, field string, value interface{}) error {
	filter := bson.M{"user_id": userID}
	update := bson.M{"$set": bson.M{field: value}}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to update user settings: %w", err)
	}

	return nil
}

// EnsureIndexes 确保索引存在
func (r *MongoSettingsRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// 唯一索引：user_id（每用户一条设置记录）
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create settings indexes: %w", err)
	}

	return nil
}
