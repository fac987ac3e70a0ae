package models

import "strings"

// Category 支出分类（固定枚举）
type Category string

// 支出分类常量
const (
	CategoryFood          Category = "food"          // 餐饮
	CategoryTransport     Category = "transport"     // 交通
	CategoryEntertainment Category = "entertainment" // 娱乐
	CategoryUtilities     Category = "utilities"     // 水电杂费
	CategoryClothing      Category = "clothing"      // 服装
	CategoryHealth        Category = "health"        // 医疗健康
	CategoryOther         Category = "other"         // 其他
)

// LegacyCategory 旧记录缺失分类字段时的默认值
const LegacyCategory = CategoryOther

// Categories 全部分类（用于提示词和报表的稳定顺序）
var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryEntertainment,
	CategoryUtilities,
	CategoryClothing,
	CategoryHealth,
	CategoryOther,
}

// 用户可见的俄语分类名
var categoryDisplayNames = map[Category]string{
	CategoryFood:          "еда",
	CategoryTransport:     "транспорт",
	CategoryEntertainment: "развлечения",
	CategoryUtilities:     "коммунальные услуги",
	CategoryClothing:      "одежда",
	CategoryHealth:        "здоровье",
	CategoryOther:         "другие",
}

// ParseCategory 解析分类，未知值归入 CategoryOther
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c.Known() {
		return c
	}
	return CategoryOther
}

// Known 是否为已知分类
func (c Category) Known() bool {
	_, ok := categoryDisplayNames[c]
	return ok
}

// DisplayName 返回用户可见的分类名
func (c Category) DisplayName() string {
	if name, ok := categoryDisplayNames[c]; ok {
		return name
	}
	return categoryDisplayNames[CategoryOther]
}

func (c Category) String() string {
	return string(c)
}
