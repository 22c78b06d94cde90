package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/skylarnam/KakaoChatParserV2/internal/domain"
)

// InitRedis connects to the Redis instance at url (redis:// form)
func InitRedis(ctx context.Context, url string, logger *zap.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis connection established successfully",
		zap.String("addr", opts.Addr),
		zap.Int("db", opts.DB),
	)
	return client, nil
}

// DatasetPublisher publishes dataset replacement events on a Redis channel
type DatasetPublisher struct {
	client  *redis.Client
	channel string
}

// NewDatasetPublisher creates a publisher for the given channel
func NewDatasetPublisher(client *redis.Client, channel string) *DatasetPublisher {
	return &DatasetPublisher{client: client, channel: channel}
}

// PublishDatasetEvent publishes event as JSON
func (p *DatasetPublisher) PublishDatasetEvent(ctx context.Context, event domain.DatasetEvent) error {
	if p.client == nil {
		return fmt.Errorf("redis client not initialized")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode dataset event: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish dataset event: %w", err)
	}
	return nil
}
