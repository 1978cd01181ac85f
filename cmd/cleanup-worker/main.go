package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ammargroup/storefront-backend/internal/cleanup"
	"github.com/ammargroup/storefront-backend/pkg/config"
	"github.com/ammargroup/storefront-backend/pkg/db"
	"github.com/ammargroup/storefront-backend/pkg/logger"
	"github.com/ammargroup/storefront-backend/pkg/metrics"
	"github.com/ammargroup/storefront-backend/pkg/migrate"
	"github.com/ammargroup/storefront-backend/pkg/redis"
	"github.com/ammargroup/storefront-backend/pkg/storage/local"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cleanup-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cleanup-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	assetStore, err := local.New(context.Background(), cfg.Uploads, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to prepare asset store", err)
		os.Exit(1)
	}

	jobMetrics := metrics.NewJobMetrics(prometheus.DefaultRegisterer)
	repo := cleanup.NewRepository(dbClient.DB())

	queueJob, err := cleanup.NewFileQueueJob(cleanup.FileQueueJobParams{
		Repo:          repo,
		Assets:        assetStore,
		Logger:        logg,
		Metrics:       jobMetrics,
		MaxAttempts:   cfg.Cleanup.MaxAttempts,
		RetryBaseWait: cfg.Cleanup.RetryBaseWait,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create file queue job", err)
		os.Exit(1)
	}

	sweepJob, err := cleanup.NewOrphanSweepJob(cleanup.OrphanSweepJobParams{
		Repo:      repo,
		Assets:    assetStore,
		Logger:    logg,
		Metrics:   jobMetrics,
		Retention: cfg.Cleanup.RetentionAge,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orphan sweep job", err)
		os.Exit(1)
	}

	lock, err := cleanup.NewRedisLock(redisClient, redisClient.LockKey("file_cleanup"), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cleanup lock", err)
		os.Exit(1)
	}

	service, err := cleanup.NewService(cleanup.ServiceParams{
		Logger:   logg,
		Registry: cleanup.NewRegistry(queueJob, sweepJob),
		Lock:     lock,
		Metrics:  jobMetrics,
		Interval: cfg.Cleanup.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cleanup service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "starting cleanup worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cleanup worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cleanup worker shutting down gracefully")
}
