package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skylarnam/KakaoChatParserV2/internal/client"
	"github.com/skylarnam/KakaoChatParserV2/internal/config"
	"github.com/skylarnam/KakaoChatParserV2/internal/domain"
	"github.com/skylarnam/KakaoChatParserV2/internal/metrics"
	"github.com/skylarnam/KakaoChatParserV2/internal/repository"
	"github.com/skylarnam/KakaoChatParserV2/internal/response"
)

// DatasetEventPublisher announces dataset replacements
type DatasetEventPublisher interface {
	PublishDatasetEvent(ctx context.Context, event domain.DatasetEvent) error
}

// ImportResult describes a completed import
type ImportResult struct {
	BatchID    string
	FileName   string
	Imported   int
	ArchiveURL string
}

// ImportService replaces the chat dataset with an uploaded CSV export
type ImportService interface {
	Import(ctx context.Context, fileName string, r io.Reader) (*ImportResult, error)
}

type importServiceImpl struct {
	messageRepo repository.MessageRepository
	archiver    client.Archiver
	publisher   DatasetEventPublisher
	metrics     *metrics.Metrics
	cfg         config.UploadConfig
	logger      *zap.Logger
	now         func() time.Time
}

// NewImportService creates a new ImportService. archiver and publisher are
// optional and may be nil.
func NewImportService(
	messageRepo repository.MessageRepository,
	archiver client.Archiver,
	publisher DatasetEventPublisher,
	m *metrics.Metrics,
	cfg config.UploadConfig,
	logger *zap.Logger,
) ImportService {
	return &importServiceImpl{
		messageRepo: messageRepo,
		archiver:    archiver,
		publisher:   publisher,
		metrics:     m,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// Import clears the table and loads every row of the CSV. A row that fails to
// parse aborts the whole import and the table stays empty.
func (s *importServiceImpl) Import(ctx context.Context, fileName string, r io.Reader) (*ImportResult, error) {
	start := s.now()
	result := &ImportResult{BatchID: uuid.NewString(), FileName: fileName}

	logger := s.logger.With(
		zap.String("batch_id", result.BatchID),
		zap.String("file_name", fileName),
	)

	data, err := s.readUpload(r)
	if err != nil {
		s.metrics.RecordImport(0, 0, err)
		return nil, err
	}

	result.ArchiveURL = s.archive(ctx, result.BatchID, fileName, data, logger)

	imported, err := s.replaceDataset(ctx, data)
	duration := s.now().Sub(start)
	s.metrics.RecordImport(imported, duration, err)
	if err != nil {
		logger.Error("Failed to import chat export", zap.Error(err))
		return nil, err
	}
	result.Imported = imported

	logger.Info("Chat export imported",
		zap.Int("rows", imported),
		zap.Duration("duration", duration),
	)

	s.publish(ctx, result, logger)
	return result, nil
}

func (s *importServiceImpl) readUpload(r io.Reader) ([]byte, error) {
	limit := s.cfg.MaxSizeBytes
	if limit <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read upload: %w", err)
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, response.NewAppError(response.ErrCodeTooLarge, "file too large",
			fmt.Sprintf("max %d bytes", limit))
	}
	return data, nil
}

func (s *importServiceImpl) replaceDataset(ctx context.Context, data []byte) (int, error) {
	if err := s.messageRepo.DeleteAll(ctx); err != nil {
		return 0, fmt.Errorf("failed to clear messages: %w", err)
	}

	messages, err := ParseChatCSV(bytes.NewReader(data))
	if err != nil {
		return 0, response.NewAppError(response.ErrCodeImport, "failed to parse CSV", err.Error())
	}

	if err := s.messageRepo.InsertAll(ctx, messages, s.cfg.InsertBatchSize); err != nil {
		return 0, fmt.Errorf("failed to insert messages: %w", err)
	}
	return len(messages), nil
}

// archive keeps a copy of the raw upload. Failures are logged and otherwise ignored.
func (s *importServiceImpl) archive(ctx context.Context, batchID, fileName string, data []byte, logger *zap.Logger) string {
	if s.archiver == nil {
		return ""
	}

	key := s.archiver.GenerateArchiveKey(batchID, fileName)
	start := time.Now()
	url, err := s.archiver.Archive(ctx, key, bytes.NewReader(data), "text/csv")
	s.metrics.RecordExternalCall(metrics.TargetS3, time.Since(start), err)
	if err != nil {
		logger.Warn("Failed to archive upload", zap.String("key", key), zap.Error(err))
		return ""
	}
	return url
}

func (s *importServiceImpl) publish(ctx context.Context, result *ImportResult, logger *zap.Logger) {
	if s.publisher == nil {
		return
	}

	start := time.Now()
	err := s.publisher.PublishDatasetEvent(ctx, domain.DatasetEvent{
		BatchID:    result.BatchID,
		FileName:   result.FileName,
		Rows:       result.Imported,
		ArchiveURL: result.ArchiveURL,
		ImportedAt: s.now().UTC(),
	})
	s.metrics.RecordExternalCall(metrics.TargetRedis, time.Since(start), err)
	if err != nil {
		logger.Warn("Failed to publish dataset event", zap.Error(err))
	}
}
