package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skylarnam/KakaoChatParserV2/internal/client"
	"github.com/skylarnam/KakaoChatParserV2/internal/config"
	"github.com/skylarnam/KakaoChatParserV2/internal/domain"
	"github.com/skylarnam/KakaoChatParserV2/internal/metrics"
	"github.com/skylarnam/KakaoChatParserV2/internal/repository"
	"github.com/skylarnam/KakaoChatParserV2/internal/response"
)

const datasetA = "Date,User,Message\n" +
	"2024-03-01 09:00:00,A,hello\n" +
	"2024-03-01 09:01:00,B,hi\n" +
	"2024-03-01 09:02:00,A,how are you\n"

const datasetB = "Date,User,Message\n" +
	"2024-04-01 10:00:00,C,new room\n"

func testUploadConfig() config.UploadConfig {
	return config.UploadConfig{MaxSizeBytes: 1 << 20, AllowedExtension: ".csv", InsertBatchSize: 2}
}

type importFixture struct {
	repo      repository.MessageRepository
	archiver  *client.MockArchiver
	publisher *MockDatasetEventPublisher
	metrics   *metrics.Metrics
	svc       ImportService
}

func newImportFixture(t *testing.T, cfg config.UploadConfig) *importFixture {
	t.Helper()
	f := &importFixture{
		repo:      setupTestRepo(t),
		archiver:  client.NewMockArchiver(),
		publisher: new(MockDatasetEventPublisher),
		metrics:   testMetrics(),
	}
	f.svc = NewImportService(f.repo, f.archiver, f.publisher, f.metrics, cfg, zap.NewNop())
	return f
}

func TestImport(t *testing.T) {
	f := newImportFixture(t, testUploadConfig())
	f.publisher.On("PublishDatasetEvent", mockAnyContext, mock.MatchedBy(func(e domain.DatasetEvent) bool {
		return e.Rows == 3 && e.FileName == "chat.csv" && e.BatchID != "" && !e.ImportedAt.IsZero()
	})).Return(nil).Once()

	result, err := f.svc.Import(context.Background(), "chat.csv", strings.NewReader(datasetA))
	require.NoError(t, err)

	assert.Equal(t, 3, result.Imported)
	assert.NotEmpty(t, result.BatchID)
	assert.Equal(t, "mock://uploads/"+result.BatchID+"_chat.csv", result.ArchiveURL)

	archived, ok := f.archiver.Object("uploads/" + result.BatchID + "_chat.csv")
	require.True(t, ok)
	assert.Equal(t, datasetA, string(archived))

	count, err := f.repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	activity, err := f.repo.UserActivity(context.Background(), repository.MessageFilter{}, 0)
	require.NoError(t, err)
	assert.Equal(t, []domain.UserActivity{
		{UserName: "A", MessageCount: 2, TotalLength: 16},
		{UserName: "B", MessageCount: 1, TotalLength: 2},
	}, activity)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ImportsTotal.WithLabelValues(metrics.ImportResultSuccess)))
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.ImportedRowsTotal))
	f.publisher.AssertExpectations(t)
}

func TestImport_ReplacesPreviousDataset(t *testing.T) {
	f := newImportFixture(t, testUploadConfig())
	f.publisher.On("PublishDatasetEvent", mockAnyContext, mock.Anything).Return(nil)

	_, err := f.svc.Import(context.Background(), "a.csv", strings.NewReader(datasetA))
	require.NoError(t, err)
	_, err = f.svc.Import(context.Background(), "b.csv", strings.NewReader(datasetB))
	require.NoError(t, err)

	users, err := f.repo.DistinctUsers(context.Background(), repository.MessageFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, users)
}

func TestImport_KeepsFileOrder(t *testing.T) {
	f := newImportFixture(t, testUploadConfig())
	f.publisher.On("PublishDatasetEvent", mockAnyContext, mock.Anything).Return(nil)

	input := "Date,User,Message\n" +
		"2024-03-01 09:00:00,A,A left this chatroom.\n" +
		"2024-03-01 09:00:00,A,A joined this chatroom.\n"
	_, err := f.svc.Import(context.Background(), "order.csv", strings.NewReader(input))
	require.NoError(t, err)

	// Same timestamp: the later row in the file is the latest status
	departed, err := NewMembershipService(f.repo, zap.NewNop()).DepartedUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, departed)
}

func TestImport_ParseErrorLeavesTableCleared(t *testing.T) {
	f := newImportFixture(t, testUploadConfig())
	f.publisher.On("PublishDatasetEvent", mockAnyContext, mock.Anything).Return(nil).Once()

	_, err := f.svc.Import(context.Background(), "a.csv", strings.NewReader(datasetA))
	require.NoError(t, err)

	bad := "Date,User,Message\n2024-04-01 10:00:00,C,fine\nnot-a-date,D,broken\n"
	result, err := f.svc.Import(context.Background(), "bad.csv", strings.NewReader(bad))
	require.Error(t, err)
	assert.Nil(t, result)

	var appErr *response.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, response.ErrCodeImport, appErr.Code)
	assert.Contains(t, appErr.Details, "row 3")

	count, err := f.repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ImportsTotal.WithLabelValues(metrics.ImportResultFailure)))
	f.publisher.AssertNumberOfCalls(t, "PublishDatasetEvent", 1)
}

func TestImport_TooLarge(t *testing.T) {
	cfg := testUploadConfig()
	cfg.MaxSizeBytes = 16
	f := newImportFixture(t, cfg)

	_, err := f.svc.Import(context.Background(), "big.csv", strings.NewReader(datasetA))

	var appErr *response.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, response.ErrCodeTooLarge, appErr.Code)
	assert.Empty(t, f.archiver.Objects)
	f.publisher.AssertNotCalled(t, "PublishDatasetEvent", mock.Anything, mock.Anything)
}

func TestImport_ArchiveAndPublishFailuresAreNotFatal(t *testing.T) {
	f := newImportFixture(t, testUploadConfig())
	f.archiver.ArchiveFunc = func(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
		return "", errors.New("bucket not found")
	}
	f.publisher.On("PublishDatasetEvent", mockAnyContext, mock.Anything).Return(errors.New("redis down"))

	result, err := f.svc.Import(context.Background(), "chat.csv", strings.NewReader(datasetA))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)
	assert.Empty(t, result.ArchiveURL)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ExternalRequestsTotal.WithLabelValues(metrics.TargetS3, "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ExternalRequestsTotal.WithLabelValues(metrics.TargetRedis, "error")))
}

func TestImport_OptionalCollaborators(t *testing.T) {
	repo := setupTestRepo(t)
	svc := NewImportService(repo, nil, nil, testMetrics(), testUploadConfig(), zap.NewNop())

	result, err := svc.Import(context.Background(), "chat.csv", strings.NewReader(datasetA))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)
	assert.Empty(t, result.ArchiveURL)
}

func TestImport_InsertFailure(t *testing.T) {
	repo := new(MockMessageRepository)
	repo.On("DeleteAll", mockAnyContext).Return(nil)
	repo.On("InsertAll", mockAnyContext, mock.Anything, 2).Return(errors.New("disk full"))

	svc := NewImportService(repo, nil, nil, testMetrics(), testUploadConfig(), zap.NewNop())
	_, err := svc.Import(context.Background(), "chat.csv", strings.NewReader(datasetA))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert messages: disk full")

	var appErr *response.AppError
	assert.False(t, errors.As(err, &appErr))
	repo.AssertExpectations(t)
}
