package telegram

import (
	"fmt"
	"sort"
	"strings"

	"expense_bot/internal/telegram/models"
)

// formatTotals 渲染分类汇总报告（用户显示货币计价）
func formatTotals(title string, totals map[models.Category]float64, currency models.Currency) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 %s\n\n", title))

	if len(totals) == 0 {
		sb.WriteString("Нет расходов.")
		return sb.String()
	}

	var total float64

	// 已知分类按固定顺序输出
	for _, category := range models.Categories {
		amount, ok := totals[category]
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("• %s: %.2f %s\n", category.DisplayName(), amount, currency))
		total += amount
	}

	// 旧记录可能带有枚举之外的分类值，排序后补在末尾
	var extras []models.Category
	for category := range totals {
		if !category.Known() {
			extras = append(extras, category)
		}
	}
	sort.Slice(extras, func(i, j int) bool { return extras[i] < extras[j] })
	for _, category := range extras {
		sb.WriteString(fmt.Sprintf("• %s: %.2f %s\n", category, totals[category], currency))
		total += totals[category]
	}

	sb.WriteString(fmt.Sprintf("\nИтого: <b>%.2f %s</b>", total, currency))
	return sb.String()
}
