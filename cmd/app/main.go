package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apiHttp "github.com/badal-community/backend/internal/api/http"
	"github.com/badal-community/backend/internal/config"
	"github.com/badal-community/backend/internal/db"
	"github.com/badal-community/backend/internal/directory"
	"github.com/badal-community/backend/internal/discord"
	"github.com/badal-community/backend/internal/identity"
	"github.com/badal-community/backend/internal/queue/asynqserver"
	queueClient "github.com/badal-community/backend/internal/queue/client"
	"github.com/badal-community/backend/internal/repository"
	"github.com/badal-community/backend/internal/server"
	"github.com/badal-community/backend/internal/service"
	"github.com/badal-community/backend/internal/worker"
	"github.com/badal-community/backend/internal/cache"
	"github.com/badal-community/backend/pkg/auth"
	"github.com/badal-community/backend/pkg/email/smtp"
	"github.com/badal-community/backend/pkg/hash"
	"github.com/badal-community/backend/pkg/logger"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	cfg := config.MustLoad()

	logger.SetupLogger(cfg.Env)
	defer logger.Sync()

	logger.Info("starting backend api", zap.String("env", cfg.Env))
	logger.Debug("debug messages are enabled")

	// Primary store: tokens, deferrals, submissions, drafts, email log.
	primaryDB, err := db.New(cfg.Primary)
	if err != nil {
		logger.Fatal("primary mysql connect problem", zap.Error(err))
	}
	defer func() {
		if err := primaryDB.Close(); err != nil {
			logger.Error("error when closing primary db", zap.Error(err))
		}
	}()

	if err := db.RunMigrations(primaryDB.DB); err != nil {
		logger.Fatal("primary migrations failed", zap.Error(err))
	}
	logger.Info("primary mysql connection done")

	// Directory store: host-owned users and organizations, never migrated
	// from here.
	directoryDB, err := db.New(cfg.Directory)
	if err != nil {
		logger.Fatal("directory mysql connect problem", zap.Error(err))
	}
	defer func() {
		if err := directoryDB.Close(); err != nil {
			logger.Error("error when closing directory db", zap.Error(err))
		}
	}()
	logger.Info("directory mysql connection done")

	probeCtx, probeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	txSupported := db.SupportsTransactions(probeCtx, primaryDB)
	probeCancel()
	if !txSupported {
		logger.Warn("primary store has no transaction support, using compensating writes")
	}

	redisClient, err := cache.NewRedis(cfg.Cache)
	if err != nil {
		logger.Fatal("redis connect problem", zap.Error(err))
	}
	defer redisClient.Close()

	hasher := hash.NewSHA256Hasher(cfg.Admin.PasswordSalt)

	tokenManager, err := auth.NewManager(cfg.Admin.JWT)
	if err != nil {
		logger.Fatal("auth manager creation err", zap.Error(err))
	}

	emailSender, err := smtp.NewSMTPSender(cfg.SMTP.From, cfg.SMTP.Pass, cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Timeout)
	if err != nil {
		logger.Fatal("smtp sender creation failed", zap.Error(err))
	}

	asynqClient := asynq.NewClient(asynqserver.RedisOptions(cfg.Cache))
	defer asynqClient.Close()
	queueClient.SetClient(asynqClient)

	repos := repository.NewRepositories(primaryDB)
	dir := directory.New(directoryDB)

	services := service.NewServices(service.Deps{
		Config:       cfg,
		Repos:        repos,
		Directory:    dir,
		Identity:     identity.New(cfg.Identity),
		Discord:      discord.NewClient(cfg.Discord),
		Hasher:       hasher,
		TokenManager: tokenManager,
		Queue:        asynqClient,
		TxSupported:  txSupported,
	})

	workers := worker.NewWorkers(worker.Deps{
		EmailProvider: emailSender,
		Config:        cfg,
	})

	asynqSrv, mux := asynqserver.New(cfg.Cache, asynqserver.Deps{
		Workers:  workers,
		Sweeps:   services.Sweeps,
		EmailLog: repos.EmailLog,
		Redis:    redisClient,
	})
	if err := asynqSrv.Start(mux); err != nil {
		logger.Fatal("asynq server start failed", zap.Error(err))
	}

	scheduler, err := asynqserver.NewScheduler(cfg)
	if err != nil {
		logger.Fatal("scheduler creation failed", zap.Error(err))
	}
	if err := scheduler.Start(); err != nil {
		logger.Fatal("scheduler start failed", zap.Error(err))
	}

	handlers := apiHttp.NewHandlers(services, tokenManager, cfg)

	srv := server.NewServer(cfg, handlers.Init(cfg))
	go func() {
		if err := srv.Run(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("error occurred while running http server", zap.Error(err))
		}
	}()
	logger.Info("server started", zap.String("port", cfg.HttpServer.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	<-quit

	const timeout = 5 * time.Second

	ctx, shutdown := context.WithTimeout(context.Background(), timeout)
	defer shutdown()

	scheduler.Shutdown()
	asynqSrv.Shutdown()

	if err := srv.Stop(ctx); err != nil {
		logger.Error("failed to stop server", zap.Error(err))
	}

	logger.Info("app stopped")
}
