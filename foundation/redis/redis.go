package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis publishes pipeline events for downstream consumers: job stage
// transitions on one channel, approved training examples on another.
type Redis struct {
	Client        *redis.Client
	Logger        *zap.SugaredLogger
	JobChannel    string
	ExportChannel string
}

func New(host, password, jobChannel, exportChannel string, logger *zap.SugaredLogger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     host,
		Password: password,
	})

	_, err := client.Ping(context.Background()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Redis{
		Client:        client,
		Logger:        logger,
		JobChannel:    jobChannel,
		ExportChannel: exportChannel,
	}, nil
}

func (r *Redis) Close() error {
	return r.Client.Close()
}

func (r *Redis) PublishJobEvent(ctx context.Context, data any) error {
	return r.publish(ctx, r.JobChannel, data)
}

func (r *Redis) PublishExport(ctx context.Context, data any) error {
	return r.publish(ctx, r.ExportChannel, data)
}

func (r *Redis) publish(ctx context.Context, channel string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	if err := r.Client.Publish(ctx, channel, jsonData).Err(); err != nil {
		return err
	}

	r.Logger.Infow("redis: publish", "channel", channel)

	return nil
}
