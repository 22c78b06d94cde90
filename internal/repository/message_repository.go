package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/skylarnam/KakaoChatParserV2/internal/domain"
)

// lookupChunkSize bounds the number of bind parameters per IN clause
const lookupChunkSize = 500

// MessageFilter narrows aggregate queries. Zero values mean "no restriction";
// From and To are inclusive bounds.
type MessageFilter struct {
	From         time.Time
	To           time.Time
	UserName     string
	ExcludeUsers []string
}

// MessageRepository defines the interface for message data access
type MessageRepository interface {
	DeleteAll(ctx context.Context) error
	InsertAll(ctx context.Context, messages []*domain.Message, batchSize int) error
	Count(ctx context.Context) (int64, error)

	FindStatusMessages(ctx context.Context) ([]domain.Message, error)
	LatestActivity(ctx context.Context, userNames []string) (map[string]time.Time, error)

	DistinctUsers(ctx context.Context, filter MessageFilter) ([]string, error)
	UserActivity(ctx context.Context, filter MessageFilter, limit int) ([]domain.UserActivity, error)
	DailyCounts(ctx context.Context, filter MessageFilter) ([]domain.DailyCount, error)
}

// messageRepositoryImpl is the GORM implementation of MessageRepository
type messageRepositoryImpl struct {
	db *gorm.DB
}

// NewMessageRepository creates a new instance of MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepositoryImpl{db: db}
}

// DeleteAll removes every message
func (r *messageRepositoryImpl) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&domain.Message{}).Error
}

// InsertAll inserts messages in slice order inside a single transaction
func (r *messageRepositoryImpl) InsertAll(ctx context.Context, messages []*domain.Message, batchSize int) error {
	if len(messages) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = len(messages)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(messages, batchSize).Error
	})
}

// Count returns the number of stored messages
func (r *messageRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Message{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindStatusMessages returns join/leave/removal messages in chronological order
func (r *messageRepositoryImpl) FindStatusMessages(ctx context.Context) ([]domain.Message, error) {
	conditions := make([]string, len(domain.StatusPhrases))
	args := make([]interface{}, len(domain.StatusPhrases))
	for i, phrase := range domain.StatusPhrases {
		conditions[i] = "content LIKE ?"
		args[i] = "%" + phrase + "%"
	}

	var messages []domain.Message
	if err := r.db.WithContext(ctx).
		Where(strings.Join(conditions, " OR "), args...).
		Order("sent_at ASC, id ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// LatestActivity returns the time of the most recent message of each given user.
// Users without any message are absent from the result.
func (r *messageRepositoryImpl) LatestActivity(ctx context.Context, userNames []string) (map[string]time.Time, error) {
	latest := make(map[string]time.Time, len(userNames))

	for start := 0; start < len(userNames); start += lookupChunkSize {
		end := start + lookupChunkSize
		if end > len(userNames) {
			end = len(userNames)
		}

		var rows []domain.Message
		if err := r.db.WithContext(ctx).
			Table("messages AS m").
			Select("m.user_name, m.sent_at").
			Where("m.user_name IN ?", userNames[start:end]).
			Where("NOT EXISTS (SELECT 1 FROM messages AS n WHERE n.user_name = m.user_name AND n.sent_at > m.sent_at)").
			Scan(&rows).Error; err != nil {
			return nil, err
		}

		for _, row := range rows {
			latest[row.UserName] = row.SentAt
		}
	}

	return latest, nil
}

// DistinctUsers returns the sorted set of senders matching the filter.
// The result is never nil so it encodes as an empty JSON array.
func (r *messageRepositoryImpl) DistinctUsers(ctx context.Context, filter MessageFilter) ([]string, error) {
	users := []string{}
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&domain.Message{}), filter).
		Distinct("user_name").
		Order("user_name ASC").
		Pluck("user_name", &users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UserActivity returns per-user message counts and text lengths, busiest first.
// A non-positive limit returns every user.
func (r *messageRepositoryImpl) UserActivity(ctx context.Context, filter MessageFilter, limit int) ([]domain.UserActivity, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&domain.Message{}), filter).
		Select("user_name, COUNT(*) AS message_count, COALESCE(SUM(LENGTH(content)), 0) AS total_length").
		Group("user_name").
		Order("message_count DESC, user_name ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []domain.UserActivity
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DailyCounts groups matching messages by calendar day in ascending order
func (r *messageRepositoryImpl) DailyCounts(ctx context.Context, filter MessageFilter) ([]domain.DailyCount, error) {
	day := dayExpression(r.db)

	var rows []domain.DailyCount
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&domain.Message{}), filter).
		Select(day + " AS day, COUNT(*) AS message_count").
		Group(day).
		Order("day ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *messageRepositoryImpl) applyFilter(query *gorm.DB, filter MessageFilter) *gorm.DB {
	if !filter.From.IsZero() {
		query = query.Where("sent_at >= ?", filter.From.UTC())
	}
	if !filter.To.IsZero() {
		query = query.Where("sent_at <= ?", filter.To.UTC())
	}
	if filter.UserName != "" {
		query = query.Where("user_name = ?", filter.UserName)
	}
	// NOT IN with an empty list would match nothing
	if len(filter.ExcludeUsers) > 0 {
		query = query.Where("user_name NOT IN ?", filter.ExcludeUsers)
	}
	return query
}

// dayExpression renders sent_at as a YYYY-MM-DD string for the active dialect
func dayExpression(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "to_char(sent_at AT TIME ZONE 'UTC', 'YYYY-MM-DD')"
	}
	return "strftime('%Y-%m-%d', sent_at)"
}
