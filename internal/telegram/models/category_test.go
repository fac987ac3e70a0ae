package models

import "testing"

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Category
	}{
		{"已知分类", "food", CategoryFood},
		{"大写归一化", "TRANSPORT", CategoryTransport},
		{"带空格", " health ", CategoryHealth},
		{"未知分类归入其他", "crypto", CategoryOther},
		{"空字符串归入其他", "", CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseCategory(tt.input); got != tt.expected {
				t.Errorf("ParseCategory(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCategoryDisplayName(t *testing.T) {
	if got := CategoryFood.DisplayName(); got != "еда" {
		t.Errorf("unexpected display name: %q", got)
	}
	// 未知分类显示为"другие"
	if got := Category("legacy-value").DisplayName(); got != "другие" {
		t.Errorf("unexpected display name for unknown category: %q", got)
	}
}

func TestCategoriesCoverDisplayNames(t *testing.T) {
	// 固定顺序列表与显示名映射保持一致
	if len(Categories) != len(categoryDisplayNames) {
		t.Fatalf("Categories has %d entries, display names %d", len(Categories), len(categoryDisplayNames))
	}
	for _, c := range Categories {
		if !c.Known() {
			t.Errorf("category %q has no display name", c)
		}
	}
}
