package asynqserver

import (
	"github.com/badal-community/backend/internal/cache"
	"github.com/badal-community/backend/internal/config"
	"github.com/badal-community/backend/internal/queue/processor"
	"github.com/badal-community/backend/internal/queue/task"
	"github.com/badal-community/backend/internal/repository"
	"github.com/badal-community/backend/internal/service"
	"github.com/badal-community/backend/internal/worker"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

type Deps struct {
	Workers  *worker.Workers
	Sweeps   service.Sweeps
	EmailLog repository.EmailLog
	Redis    redis.UniversalClient
}

func New(cfg config.Cache, deps Deps) (*asynq.Server, *asynq.ServeMux) {
	mux, queues := getQueues(deps)
	srv := asynq.NewServer(
		RedisOptions(cfg),
		asynq.Config{
			Concurrency: 10,
			LogLevel:    asynq.ErrorLevel,
			Queues:      queues,
		},
	)

	return srv, mux
}

func RedisOptions(cfg config.Cache) asynq.RedisConnOpt {
	var opts asynq.RedisConnOpt
	if cfg.Type == cache.RedisTypeCluster {
		opts = asynq.RedisClusterClientOpt{Addrs: cfg.RedisCluster.Addresses}
	} else {
		opts = asynq.RedisClientOpt{Addr: cfg.Redis.Address}
	}
	return opts
}

func getQueues(deps Deps) (*asynq.ServeMux, map[string]int) {
	mux := asynq.NewServeMux()
	mux.Handle(task.SendLinkEmailTaskName, processor.NewSendLinkEmailProcessor(deps.Workers, deps.EmailLog))

	for name, run := range processor.SweepRunners(deps.Sweeps) {
		mux.Handle(name, processor.NewSweepProcessor(name, deps.Redis, run))
	}

	queues := map[string]int{
		task.SendLinkEmailQueueName: 5,
		task.SweepQueueName:         1,
	}
	return mux, queues
}
