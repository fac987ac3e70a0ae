package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExpenseRecord 单笔支出记录（写入后不可变）
// 记录本身不归属任何用户的显示偏好，"以谁的货币展示"只在聚合读取时解析
type ExpenseRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Date      time.Time          `bson:"date"`               // 支出日期（UTC 零点，无时间分量）
	Amount    float64            `bson:"amount"`             // 金额（currency 计价，非负）
	Currency  Currency           `bson:"currency,omitempty"` // 货币代码
	Category  Category           `bson:"category,omitempty"` // 支出分类
	CreatedAt time.Time          `bson:"created_at"`         // 数据库写入时间（仅供参考）
}

// Normalize 填充旧记录缺失的字段
// 早期版本的 expenses 表没有 currency/category 列，按 RUB/other 处理
func (r *ExpenseRecord) Normalize() {
	if r.Currency == "" {
		r.Currency = LegacyCurrency
	}
	if r.Category == "" {
		r.Category = LegacyCategory
	}
}

// DateOnly 将时间截断为 UTC 日历日期
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
