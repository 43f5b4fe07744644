package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/diatonic-ai/workbench/internal/app"
	jobmetrics "github.com/diatonic-ai/workbench/internal/jobs"
	"github.com/diatonic-ai/workbench/internal/platform/cache"
	"github.com/diatonic-ai/workbench/internal/platform/db"
	"github.com/diatonic-ai/workbench/internal/quota"
	"github.com/diatonic-ai/workbench/internal/users"
	"github.com/diatonic-ai/workbench/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	var store quota.Store
	switch cfg.QuotaBackend {
	case app.QuotaBackendRedis:
		redisClient, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Error("connect redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		store = quota.NewRedisStore(redisClient)
	case app.QuotaBackendPostgres:
		store = quota.NewPostgresStore(pool)
	}

	usersRepo := users.NewRepository(pool)
	resetJob := jobs.NewQuotaResetJob(usersRepo, store, logger, jobmetrics.NewMetrics(nil))

	resetTask, err := jobs.NewQuotaResetTask(jobs.QuotaResetPayload{})
	if err != nil {
		logger.Error("build quota reset task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskQuotaResetPeriod, Handler: resetJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.QuotaResetCron, Task: resetTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
