package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const popTimeout = 5 * time.Second

// RedisFeed carries jobs through a Redis list so any API replica can accept work
// while the consuming replica's worker pool executes it.
type RedisFeed struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewRedisFeed binds a feed to a Redis list key.
func NewRedisFeed(client *redis.Client, key string, logger *zap.Logger) *RedisFeed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisFeed{client: client, key: key, logger: logger}
}

// Dispatch pushes the encoded job onto the list.
func (f *RedisFeed) Dispatch(ctx context.Context, job Job) error {
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	if err := f.client.LPush(ctx, f.key, raw).Err(); err != nil {
		return fmt.Errorf("push job %s: %w", job.ID, err)
	}
	return nil
}

// Forward pops jobs from the list and hands them to sink until ctx is cancelled.
func (f *RedisFeed) Forward(ctx context.Context, sink Dispatcher) {
	f.logger.Info("redis job feed started", zap.String("key", f.key))
	for {
		if ctx.Err() != nil {
			f.logger.Info("redis job feed stopped", zap.String("key", f.key))
			return
		}

		result, err := f.client.BRPop(ctx, popTimeout, f.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			f.logger.Warn("redis job feed pop failed", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		if len(result) < 2 {
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			f.logger.Error("discarding malformed job", zap.String("key", f.key), zap.Error(err))
			continue
		}
		if err := sink.Dispatch(ctx, job); err != nil {
			f.logger.Error("failed to hand off job", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
}
