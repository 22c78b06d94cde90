package handler

import (
	"context"
	"io"
	"time"

	"github.com/skylarnam/KakaoChatParserV2/internal/dto"
	"github.com/skylarnam/KakaoChatParserV2/internal/service"
)

// MockStatsService is a mock implementation of StatsService
type MockStatsService struct {
	MonthlyLeaderboardFunc     func(ctx context.Context) ([]dto.LeaderboardEntry, error)
	InactiveUsersSinceFunc     func(ctx context.Context, days int) ([]string, error)
	InactiveUsersBetweenFunc   func(ctx context.Context, start, end time.Time) ([]string, error)
	ChatTrendFunc              func(ctx context.Context) ([]dto.DailyCountResponse, error)
	UsersFunc                  func(ctx context.Context) ([]string, error)
	UserStatsFunc              func(ctx context.Context, userName string) (*dto.UserStatsResponse, error)
	ActiveUserStatsSinceFunc   func(ctx context.Context, days int) (*dto.ActiveUserStatsResponse, error)
	ActiveUserStatsBetweenFunc func(ctx context.Context, start, end time.Time) (*dto.ActiveUserStatsResponse, error)
}

func (m *MockStatsService) MonthlyLeaderboard(ctx context.Context) ([]dto.LeaderboardEntry, error) {
	if m.MonthlyLeaderboardFunc != nil {
		return m.MonthlyLeaderboardFunc(ctx)
	}
	return []dto.LeaderboardEntry{}, nil
}

func (m *MockStatsService) InactiveUsersSince(ctx context.Context, days int) ([]string, error) {
	if m.InactiveUsersSinceFunc != nil {
		return m.InactiveUsersSinceFunc(ctx, days)
	}
	return []string{}, nil
}

func (m *MockStatsService) InactiveUsersBetween(ctx context.Context, start, end time.Time) ([]string, error) {
	if m.InactiveUsersBetweenFunc != nil {
		return m.InactiveUsersBetweenFunc(ctx, start, end)
	}
	return []string{}, nil
}

func (m *MockStatsService) ChatTrend(ctx context.Context) ([]dto.DailyCountResponse, error) {
	if m.ChatTrendFunc != nil {
		return m.ChatTrendFunc(ctx)
	}
	return []dto.DailyCountResponse{}, nil
}

func (m *MockStatsService) Users(ctx context.Context) ([]string, error) {
	if m.UsersFunc != nil {
		return m.UsersFunc(ctx)
	}
	return []string{}, nil
}

func (m *MockStatsService) UserStats(ctx context.Context, userName string) (*dto.UserStatsResponse, error) {
	if m.UserStatsFunc != nil {
		return m.UserStatsFunc(ctx, userName)
	}
	return &dto.UserStatsResponse{}, nil
}

func (m *MockStatsService) ActiveUserStatsSince(ctx context.Context, days int) (*dto.ActiveUserStatsResponse, error) {
	if m.ActiveUserStatsSinceFunc != nil {
		return m.ActiveUserStatsSinceFunc(ctx, days)
	}
	return &dto.ActiveUserStatsResponse{}, nil
}

func (m *MockStatsService) ActiveUserStatsBetween(ctx context.Context, start, end time.Time) (*dto.ActiveUserStatsResponse, error) {
	if m.ActiveUserStatsBetweenFunc != nil {
		return m.ActiveUserStatsBetweenFunc(ctx, start, end)
	}
	return &dto.ActiveUserStatsResponse{}, nil
}

// MockImportService is a mock implementation of ImportService
type MockImportService struct {
	ImportFunc func(ctx context.Context, fileName string, r io.Reader) (*service.ImportResult, error)
	calls      int
}

func (m *MockImportService) Import(ctx context.Context, fileName string, r io.Reader) (*service.ImportResult, error) {
	m.calls++
	if m.ImportFunc != nil {
		return m.ImportFunc(ctx, fileName, r)
	}
	return &service.ImportResult{BatchID: "batch-1"}, nil
}
