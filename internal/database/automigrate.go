package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/skylarnam/KakaoChatParserV2/internal/domain"
)

// AutoMigrate creates the messages table and its indexes
func AutoMigrate(db *gorm.DB, logger *zap.Logger) error {
	tableExists := db.Migrator().HasTable(&domain.Message{})

	if err := db.AutoMigrate(&domain.Message{}); err != nil {
		logger.Error("Failed to migrate table",
			zap.String("table", "messages"),
			zap.Bool("table_existed", tableExists),
			zap.Error(err),
		)
		return fmt.Errorf("failed to migrate table messages: %w", err)
	}

	logger.Info("Successfully migrated table",
		zap.String("table", "messages"),
		zap.Bool("was_existing", tableExists),
	)
	return nil
}

// AutoMigrateWithRetry runs AutoMigrate up to maxRetries times with linear backoff
func AutoMigrateWithRetry(db *gorm.DB, logger *zap.Logger, maxRetries int) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = AutoMigrate(db, logger)
		if err == nil {
			return nil
		}

		if attempt < maxRetries {
			backoff := time.Duration(attempt) * time.Second
			logger.Warn("Migration attempt failed, retrying...",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", maxRetries),
				zap.Duration("backoff", backoff),
				zap.Error(err),
			)
			time.Sleep(backoff)
		}
	}

	return fmt.Errorf("migration failed after %d attempts: %w", maxRetries, err)
}
