package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skylarnam/KakaoChatParserV2/internal/domain"
	"github.com/skylarnam/KakaoChatParserV2/internal/metrics"
	"github.com/skylarnam/KakaoChatParserV2/internal/repository"
)

// baseTime is the fixed "now" used by service tests
var baseTime = time.Date(2024, time.June, 30, 12, 0, 0, 0, time.UTC)

// setupTestDB creates an in-memory SQLite database with the messages table.
// A single connection keeps every query on the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "Failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.Message{}))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func setupTestRepo(t *testing.T) repository.MessageRepository {
	t.Helper()
	return repository.NewMessageRepository(setupTestDB(t))
}

func testMetrics() *metrics.Metrics {
	return metrics.NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())
}

// msg builds a message sent by user at the given time
func msg(user, text string, at time.Time) *domain.Message {
	return &domain.Message{UserName: user, Text: text, SentAt: at}
}

func daysAgo(days int) time.Time {
	return baseTime.AddDate(0, 0, -days)
}

func seed(t *testing.T, repo repository.MessageRepository, messages ...*domain.Message) {
	t.Helper()
	require.NoError(t, repo.InsertAll(context.Background(), messages, 100))
}
