package repository

import (
	"context"
	"fmt"
	"time"

	"expense_bot/internal/telegram/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoExpenseRepository 支出账本数据访问层（MongoDB 实现）
type MongoExpenseRepository struct {
	collection *mongo.Collection
}

// NewMongoExpenseRepository 创建支出账本 Repository
func NewMongoExpenseRepository(db *mongo.Database) ExpenseRepository {
	return &MongoExpenseRepository{
		collection: db.Collection("expenses"),
	}
}

// Insert 写入一条支出记录
func (r *MongoExpenseRepository) Insert(ctx context.Context, record *models.ExpenseRecord) error {
	now := time.Now()
	record.CreatedAt = now

	// 日期只保留日历日（UTC 零点），未设置时取今天
	if record.Date.IsZero() {
		record.Date = models.DateOnly(now)
	} else {
		record.Date = models.DateOnly(record.Date)
	}

	_, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to insert expense record: %w", err)
	}

	return nil
}

// GetByDate 查询指定日期的全部记录
func (r *MongoExpenseRepository) GetByDate(ctx context.Context, date time.Time) ([]*models.ExpenseRecord, error) {
	filter := bson.M{"date": models.DateOnly(date)}
	return r.find(ctx, filter)
}

// GetByMonth 查询指定年月的全部记录
func (r *MongoExpenseRepository) GetByMonth(ctx context.Context, year int, month time.Month) ([]*models.ExpenseRecord, error) {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	filter := bson.M{
		"date": bson.M{
			"$gte": monthStart,
			"$lt":  monthEnd,
		},
	}
	return r.find(ctx, filter)
}

// find 查询并解码记录，补全旧记录缺失的字段
func (r *MongoExpenseRepository) find(ctx context.Context, filter bson.M) ([]*models.ExpenseRecord, error) {
	// 按写入时间升序排序
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*models.ExpenseRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode expense records: %w", err)
	}

	// 早期版本的记录没有 currency/category 字段
	for _, record := range records {
		record.Normalize()
	}

	return records, nil
}

// EnsureIndexes 确保索引存在
func (r *MongoExpenseRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// 单字段索引：date（按日查询）
		{
			Keys: bson.D{{Key: "date", Value: 1}},
		},
		// 复合索引：date + category（按日期范围和分类汇总）
		{
			Keys: bson.D{
				{Key: "date", Value: 1},
				{Key: "category", Value: 1},
			},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create expense indexes: %w", err)
	}

	return nil
}
