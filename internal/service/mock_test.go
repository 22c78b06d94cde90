package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/skylarnam/KakaoChatParserV2/internal/domain"
	"github.com/skylarnam/KakaoChatParserV2/internal/repository"
)

const (
	mockAnyContext = mock.Anything
	mockAnyNames   = mock.Anything
	mockAnyFilter  = mock.Anything
)

// MockMessageRepository is a testify mock of MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockMessageRepository) InsertAll(ctx context.Context, messages []*domain.Message, batchSize int) error {
	args := m.Called(ctx, messages, batchSize)
	return args.Error(0)
}

func (m *MockMessageRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageRepository) FindStatusMessages(ctx context.Context) ([]domain.Message, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockMessageRepository) LatestActivity(ctx context.Context, userNames []string) (map[string]time.Time, error) {
	args := m.Called(ctx, userNames)
	return args.Get(0).(map[string]time.Time), args.Error(1)
}

func (m *MockMessageRepository) DistinctUsers(ctx context.Context, filter repository.MessageFilter) ([]string, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockMessageRepository) UserActivity(ctx context.Context, filter repository.MessageFilter, limit int) ([]domain.UserActivity, error) {
	args := m.Called(ctx, filter, limit)
	return args.Get(0).([]domain.UserActivity), args.Error(1)
}

func (m *MockMessageRepository) DailyCounts(ctx context.Context, filter repository.MessageFilter) ([]domain.DailyCount, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.DailyCount), args.Error(1)
}

// MockMembershipService is a testify mock of MembershipService
type MockMembershipService struct {
	mock.Mock
}

func (m *MockMembershipService) DepartedUsers(ctx context.Context) (DepartureSet, error) {
	args := m.Called(ctx)
	if set, ok := args.Get(0).(DepartureSet); ok {
		return set, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockDatasetEventPublisher is a testify mock of DatasetEventPublisher
type MockDatasetEventPublisher struct {
	mock.Mock
}

func (m *MockDatasetEventPublisher) PublishDatasetEvent(ctx context.Context, event domain.DatasetEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
