package asynqserver

import (
	"fmt"

	"github.com/badal-community/backend/internal/config"
	"github.com/badal-community/backend/internal/queue/task"

	"github.com/hibiken/asynq"
)

// NewScheduler registers the sweep cadences. Specs accept both cron and
// "@every <duration>" syntax.
func NewScheduler(cfg *config.Config) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(RedisOptions(cfg.Cache), nil)

	entries := map[string]string{
		task.SweepStaleActivationTaskName: cfg.Sweeps.StaleActivation,
		task.SweepNeverOpenedTaskName:     cfg.Sweeps.NeverOpened,
		task.SweepDeferredResendTaskName:  cfg.Sweeps.DeferredResend,
		task.SweepRetentionTaskName:       cfg.Sweeps.Retention,
	}

	for name, spec := range entries {
		if _, err := scheduler.Register(spec, task.NewSweepTask(name)); err != nil {
			return nil, fmt.Errorf("register %s (%q) failed: %w", name, spec, err)
		}
	}

	return scheduler, nil
}
