package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/skylarnam/KakaoChatParserV2/internal/config"
	"github.com/skylarnam/KakaoChatParserV2/internal/domain"
	"github.com/skylarnam/KakaoChatParserV2/internal/dto"
	"github.com/skylarnam/KakaoChatParserV2/internal/repository"
	"github.com/skylarnam/KakaoChatParserV2/internal/response"
)

// StatsService computes read-only statistics over the imported chat.
// Every operation excludes departed users first.
type StatsService interface {
	MonthlyLeaderboard(ctx context.Context) ([]dto.LeaderboardEntry, error)
	InactiveUsersSince(ctx context.Context, days int) ([]string, error)
	InactiveUsersBetween(ctx context.Context, start, end time.Time) ([]string, error)
	ChatTrend(ctx context.Context) ([]dto.DailyCountResponse, error)
	Users(ctx context.Context) ([]string, error)
	UserStats(ctx context.Context, userName string) (*dto.UserStatsResponse, error)
	ActiveUserStatsSince(ctx context.Context, days int) (*dto.ActiveUserStatsResponse, error)
	ActiveUserStatsBetween(ctx context.Context, start, end time.Time) (*dto.ActiveUserStatsResponse, error)
}

type statsServiceImpl struct {
	messageRepo repository.MessageRepository
	membership  MembershipService
	cfg         config.StatsConfig
	logger      *zap.Logger
	now         func() time.Time
}

// NewStatsService creates a new StatsService
func NewStatsService(
	messageRepo repository.MessageRepository,
	membership MembershipService,
	cfg config.StatsConfig,
	logger *zap.Logger,
) StatsService {
	return &statsServiceImpl{
		messageRepo: messageRepo,
		membership:  membership,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// MonthlyLeaderboard returns the most active users of the last leaderboard window
func (s *statsServiceImpl) MonthlyLeaderboard(ctx context.Context) ([]dto.LeaderboardEntry, error) {
	departed, err := s.membership.DepartedUsers(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rows, err := s.messageRepo.UserActivity(ctx, repository.MessageFilter{
		From:         now.AddDate(0, 0, -s.cfg.LeaderboardDays),
		To:           now,
		ExcludeUsers: departed.Users(),
	}, s.cfg.LeaderboardLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate user activity: %w", err)
	}

	entries := make([]dto.LeaderboardEntry, len(rows))
	for i, row := range rows {
		var avgLength float64
		if row.MessageCount > 0 {
			avgLength = roundTo(float64(row.TotalLength)/float64(row.MessageCount), 1)
		}
		entries[i] = dto.LeaderboardEntry{
			User:        row.UserName,
			Count:       row.MessageCount,
			TotalLength: row.TotalLength,
			AvgLength:   avgLength,
		}
	}
	return entries, nil
}

// InactiveUsersSince returns users silent for the last days days
func (s *statsServiceImpl) InactiveUsersSince(ctx context.Context, days int) ([]string, error) {
	if days < 0 {
		return nil, response.NewAppError(response.ErrCodeValidation, "days must not be negative", fmt.Sprintf("days=%d", days))
	}
	now := s.now()
	return s.InactiveUsersBetween(ctx, now.AddDate(0, 0, -days), now)
}

// InactiveUsersBetween returns all remaining users minus those who posted in [start, end].
// When start is after end nobody is active and every remaining user is returned.
func (s *statsServiceImpl) InactiveUsersBetween(ctx context.Context, start, end time.Time) ([]string, error) {
	departed, err := s.membership.DepartedUsers(ctx)
	if err != nil {
		return nil, err
	}
	excluded := departed.Users()

	allUsers, err := s.messageRepo.DistinctUsers(ctx, repository.MessageFilter{ExcludeUsers: excluded})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	activeUsers, err := s.messageRepo.DistinctUsers(ctx, repository.MessageFilter{
		From:         start,
		To:           end,
		ExcludeUsers: excluded,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}

	active := make(map[string]struct{}, len(activeUsers))
	for _, user := range activeUsers {
		active[user] = struct{}{}
	}

	inactive := make([]string, 0, len(allUsers))
	for _, user := range allUsers {
		if _, ok := active[user]; !ok {
			inactive = append(inactive, user)
		}
	}
	return inactive, nil
}

// ChatTrend returns the number of messages per day over the whole dataset
func (s *statsServiceImpl) ChatTrend(ctx context.Context) ([]dto.DailyCountResponse, error) {
	departed, err := s.membership.DepartedUsers(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.messageRepo.DailyCounts(ctx, repository.MessageFilter{ExcludeUsers: departed.Users()})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily counts: %w", err)
	}
	return toDailyCountResponses(rows), nil
}

// Users returns every user that has not departed
func (s *statsServiceImpl) Users(ctx context.Context) ([]string, error) {
	departed, err := s.membership.DepartedUsers(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.messageRepo.DistinctUsers(ctx, repository.MessageFilter{ExcludeUsers: departed.Users()})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UserStats summarizes one user's activity over the user stats window.
// A departed user gets the zero summary.
func (s *statsServiceImpl) UserStats(ctx context.Context, userName string) (*dto.UserStatsResponse, error) {
	stats := &dto.UserStatsResponse{DailyStats: []dto.DailyCountResponse{}}

	departed, err := s.membership.DepartedUsers(ctx)
	if err != nil {
		return nil, err
	}
	if departed.Contains(userName) {
		return stats, nil
	}

	now := s.now()
	rows, err := s.messageRepo.DailyCounts(ctx, repository.MessageFilter{
		From:     now.AddDate(0, 0, -s.cfg.UserStatsDays),
		To:       now,
		UserName: userName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate user activity: %w", err)
	}

	for _, row := range rows {
		stats.TotalMessages += row.Count
	}
	stats.ActiveDays = len(rows)
	if stats.ActiveDays > 0 {
		stats.AvgMessages = roundTo(float64(stats.TotalMessages)/float64(stats.ActiveDays), 1)
	}
	stats.DailyStats = toDailyCountResponses(rows)
	return stats, nil
}

// ActiveUserStatsSince computes demographics for users active in the last days days
func (s *statsServiceImpl) ActiveUserStatsSince(ctx context.Context, days int) (*dto.ActiveUserStatsResponse, error) {
	if days < 0 {
		return nil, response.NewAppError(response.ErrCodeValidation, "days must not be negative", fmt.Sprintf("days=%d", days))
	}
	now := s.now()
	return s.ActiveUserStatsBetween(ctx, now.AddDate(0, 0, -days), now)
}

// ActiveUserStatsBetween computes demographics for users with at least
// ActiveMinMessages messages in [start, end]
func (s *statsServiceImpl) ActiveUserStatsBetween(ctx context.Context, start, end time.Time) (*dto.ActiveUserStatsResponse, error) {
	departed, err := s.membership.DepartedUsers(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.messageRepo.UserActivity(ctx, repository.MessageFilter{
		From:         start,
		To:           end,
		ExcludeUsers: departed.Users(),
	}, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate user activity: %w", err)
	}

	active := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.MessageCount >= int64(s.cfg.ActiveMinMessages) {
			active = append(active, row.UserName)
		}
	}

	s.logger.Debug("Computing active user demographics",
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Int("active_users", len(active)),
	)

	return SummarizeDemographics(active, s.now().Year()), nil
}

func toDailyCountResponses(rows []domain.DailyCount) []dto.DailyCountResponse {
	responses := make([]dto.DailyCountResponse, len(rows))
	for i, row := range rows {
		responses[i] = dto.DailyCountResponse{Date: row.Date, Count: row.Count}
	}
	return responses
}
