package task

import "github.com/hibiken/asynq"

const (
	SweepQueueName = "sweepQueue"

	SweepNeverOpenedTaskName     = "sweep:neverOpened"
	SweepStaleActivationTaskName = "sweep:staleActivation"
	SweepDeferredResendTaskName  = "sweep:deferredResend"
	SweepRetentionTaskName       = "sweep:retention"
)

// NewSweepTask builds a parameterless sweep invocation. Sweeps are
// idempotent; overlap protection happens via the redis lock, so a duplicate
// enqueue is harmless.
func NewSweepTask(name string) *asynq.Task {
	return asynq.NewTask(
		name,
		nil,
		asynq.MaxRetry(0),
		asynq.Queue(SweepQueueName),
	)
}
