package domain

// UserActivity is a per-user aggregate over a window of messages
type UserActivity struct {
	UserName     string `gorm:"column:user_name"`
	MessageCount int64  `gorm:"column:message_count"`
	TotalLength  int64  `gorm:"column:total_length"`
}

// DailyCount is the number of messages on one calendar day (YYYY-MM-DD, UTC)
type DailyCount struct {
	Date  string `gorm:"column:day" json:"date"`
	Count int64  `gorm:"column:message_count" json:"count"`
}
