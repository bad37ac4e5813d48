package processor

import (
	"context"
	"time"

	"github.com/badal-community/backend/internal/cache"
	"github.com/badal-community/backend/internal/queue/task"
	"github.com/badal-community/backend/internal/service"
	"github.com/badal-community/backend/pkg/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const sweepLockTTL = 25 * time.Minute

type sweepProcessor struct {
	name  string
	run   func(ctx context.Context) error
	redis redis.UniversalClient
}

// NewSweepProcessor wraps one sweep behind a redis lock so overlapping
// schedule fires and multi-process deploys never double-run it.
func NewSweepProcessor(name string, redisClient redis.UniversalClient, run func(ctx context.Context) error) *sweepProcessor {
	return &sweepProcessor{
		name:  name,
		run:   run,
		redis: redisClient,
	}
}

func (p *sweepProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	lock, ok, err := cache.AcquireLock(ctx, p.redis, "lock:"+p.name, sweepLockTTL)
	if err != nil {
		return err
	}
	if !ok {
		logger.Info("sweep already running, skipping", zap.String("sweep", p.name))
		return nil
	}
	defer lock.Release(ctx)

	started := time.Now()
	if err := p.run(ctx); err != nil {
		logger.Error("sweep failed", zap.String("sweep", p.name), zap.Error(err))
		return err
	}

	logger.Info("sweep finished",
		zap.String("sweep", p.name),
		zap.Duration("took", time.Since(started)),
	)

	return nil
}

// SweepRunners maps task names to lifecycle sweep entry points.
func SweepRunners(sweeps service.Sweeps) map[string]func(ctx context.Context) error {
	return map[string]func(ctx context.Context) error{
		task.SweepNeverOpenedTaskName: func(ctx context.Context) error {
			_, err := sweeps.RunNeverOpened(ctx)
			return err
		},
		task.SweepStaleActivationTaskName: func(ctx context.Context) error {
			_, err := sweeps.RunStaleActivation(ctx)
			return err
		},
		task.SweepDeferredResendTaskName: func(ctx context.Context) error {
			_, err := sweeps.RunDeferredResend(ctx)
			return err
		},
		task.SweepRetentionTaskName: func(ctx context.Context) error {
			_, err := sweeps.RunRetention(ctx)
			return err
		},
	}
}
