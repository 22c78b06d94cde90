package dto

// LeaderboardEntry is one row of the monthly leaderboard
type LeaderboardEntry struct {
	User        string  `json:"user" example:"Kim/85/남/Seoul"`
	Count       int64   `json:"count" example:"120"`
	TotalLength int64   `json:"total_length" example:"2400"`
	AvgLength   float64 `json:"avg_length" example:"20.0"`
} // @name LeaderboardEntry

// DailyCountResponse is the number of messages on one day
type DailyCountResponse struct {
	Date  string `json:"date" example:"2024-03-01"`
	Count int64  `json:"count" example:"42"`
} // @name DailyCountResponse

// UserStatsResponse summarizes one user's recent activity
type UserStatsResponse struct {
	TotalMessages int64                `json:"total_messages" example:"60"`
	ActiveDays    int                  `json:"active_days" example:"12"`
	AvgMessages   float64              `json:"avg_messages" example:"5.0"`
	DailyStats    []DailyCountResponse `json:"daily_stats"`
} // @name UserStatsResponse

// ActiveUserStatsResponse holds demographic estimates for active users.
// Every field is null when there is nothing to report.
type ActiveUserStatsResponse struct {
	AvgAge          *float64 `json:"avg_age" example:"31.4"`
	GenderRatio     *string  `json:"gender_ratio" example:"12:9"`
	MaleAvgAge      *float64 `json:"male_avg_age" example:"33.0"`
	FemaleAvgAge    *float64 `json:"female_avg_age" example:"29.2"`
	ActiveUserCount *int     `json:"active_user_count" example:"21"`
} // @name ActiveUserStatsResponse

// ImportResponse describes a completed CSV import
type ImportResponse struct {
	Success  bool   `json:"success" example:"true"`
	BatchID  string `json:"batch_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	Imported int    `json:"imported" example:"1532"`
} // @name ImportResponse
