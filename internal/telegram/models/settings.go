package models

// UserSettings 每用户的显示货币与手动汇率设置
// usd/rub 两个字段为 nil 表示未设置，换算时回退到全局汇率源
type UserSettings struct {
	UserID          int64    `bson:"user_id"`
	DisplayCurrency Currency `bson:"display_currency"`
	USDToARSRate    *float64 `bson:"usd_to_ars_rate,omitempty"` // 1 USD = N ARS
	RUBToARSRate    *float64 `bson:"rub_to_ars_rate,omitempty"` // 1 RUB = N ARS
}

// DefaultUserSettings 用户尚无设置记录时的默认值
func DefaultUserSettings(userID int64) *UserSettings {
	return &UserSettings{
		UserID:          userID,
		DisplayCurrency: DefaultDisplayCurrency,
	}
}
