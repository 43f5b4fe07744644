package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/diatonic-ai/workbench/internal/app"
	"github.com/diatonic-ai/workbench/internal/auth"
	"github.com/diatonic-ai/workbench/internal/catalog"
	"github.com/diatonic-ai/workbench/internal/entitlement"
	"github.com/diatonic-ai/workbench/internal/observability"
	"github.com/diatonic-ai/workbench/internal/platform/cache"
	"github.com/diatonic-ai/workbench/internal/platform/db"
	"github.com/diatonic-ai/workbench/internal/quota"
	"github.com/diatonic-ai/workbench/internal/users"
	"github.com/diatonic-ai/workbench/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	cat, err := catalog.Load(catalog.Default())
	if err != nil {
		logger.Error("load role catalog", slog.Any("error", err))
		os.Exit(1)
	}
	limits, err := quota.NewLimits(quota.DefaultLimits())
	if err != nil {
		logger.Error("load quota limits", slog.Any("error", err))
		os.Exit(1)
	}

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

	metrics := observability.NewMetrics()

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, cat)
	usersHandler := users.NewHandler(logger, usersService)

	entResolver := entitlement.NewResolver(cat, logger, metrics)
	entHandler := entitlement.NewHandler(logger, entResolver, usersRepo)
	authz := &entitlement.Middleware{Resolver: entResolver, Loader: usersRepo, Logger: logger}

	quotaResolver := quota.NewResolver(limits, store, cat, logger, metrics)
	quotaHandler := quota.NewHandler(logger, quotaResolver, usersRepo)

	catalogHandler := catalog.NewHandler(cat)
	adminAuth := auth.NewAdminToken(cfg.AdminTokenHash, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		EntitlementHandler: entHandler,
		QuotaHandler:       quotaHandler,
		UsersHandler:       usersHandler,
		CatalogHandler:     catalogHandler,
		AdminAuth:          adminAuth,
		Authz:              authz,
		JobsHandler:        jobsHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
