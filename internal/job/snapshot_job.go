package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/skylarnam/KakaoChatParserV2/internal/metrics"
	"github.com/skylarnam/KakaoChatParserV2/internal/repository"
	"github.com/skylarnam/KakaoChatParserV2/internal/service"
)

// snapshotTimeout bounds a single run so a slow database cannot pile up runs
const snapshotTimeout = 30 * time.Second

// SnapshotJob refreshes the dataset gauges from the current messages table
type SnapshotJob struct {
	messageRepo repository.MessageRepository
	membership  service.MembershipService
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewSnapshotJob creates a new SnapshotJob instance
func NewSnapshotJob(
	messageRepo repository.MessageRepository,
	membership service.MembershipService,
	m *metrics.Metrics,
	logger *zap.Logger,
) *SnapshotJob {
	return &SnapshotJob{
		messageRepo: messageRepo,
		membership:  membership,
		metrics:     m,
		logger:      logger,
	}
}

// Run implements cron.Job
func (j *SnapshotJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	if err := j.Snapshot(ctx); err != nil {
		j.logger.Error("Dataset snapshot failed", zap.Error(err))
	}
}

// Snapshot recomputes the dataset gauges.
// Gauges are left untouched when any lookup fails.
func (j *SnapshotJob) Snapshot(ctx context.Context) error {
	messages, err := j.messageRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count messages: %w", err)
	}

	departed, err := j.membership.DepartedUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve departed users: %w", err)
	}

	users, err := j.messageRepo.DistinctUsers(ctx, repository.MessageFilter{ExcludeUsers: departed.Users()})
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	j.metrics.SetMessagesTotal(messages)
	j.metrics.SetUsersTotal(len(users))
	j.metrics.SetDepartedUsersTotal(len(departed))

	j.logger.Debug("Dataset snapshot updated",
		zap.Int64("messages", messages),
		zap.Int("users", len(users)),
		zap.Int("departed", len(departed)),
	)
	return nil
}

// Schedule registers the job on a new cron scheduler and starts it.
// The caller stops the returned scheduler on shutdown.
func Schedule(spec string, job cron.Job, logger *zap.Logger) (*cron.Cron, error) {
	scheduler := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
		cron.Recover(cron.DiscardLogger),
	))

	if _, err := scheduler.AddJob(spec, job); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	scheduler.Start()
	logger.Info("Job scheduler started", zap.String("schedule", spec))
	return scheduler, nil
}
