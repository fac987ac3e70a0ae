package models

import "strings"

// Currency 货币代码（ISO 4217 三字母）
// 已知集合之外的代码原样保留，由转换层按 ARS 直通处理
type Currency string

// 已知货币常量
const (
	CurrencyUSD Currency = "USD" // 美元（汇率源的基准货币）
	CurrencyEUR Currency = "EUR" // 欧元
	CurrencyRUB Currency = "RUB" // 卢布
	CurrencyARS Currency = "ARS" // 阿根廷比索
)

// PivotCurrency 固定中转货币：所有换算都经过 ARS
const PivotCurrency = CurrencyARS

// DefaultDisplayCurrency 用户未设置时的默认显示货币
const DefaultDisplayCurrency = CurrencyARS

// LegacyCurrency 旧记录缺失货币字段时的默认值
const LegacyCurrency = CurrencyRUB

// ParseCurrency 规范化货币代码（去空格、转大写）
// 不做合法性校验：未知代码保留原值，由调用方决定如何处理
func ParseCurrency(s string) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(s)))
}

// Known 是否为已知货币
func (c Currency) Known() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyRUB, CurrencyARS:
		return true
	}
	return false
}

func (c Currency) String() string {
	return string(c)
}
