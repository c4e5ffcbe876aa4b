package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/mrpworks-backend/internal/cron"
	"github.com/angelmondragon/mrpworks-backend/internal/mrp"
	"github.com/angelmondragon/mrpworks-backend/internal/mrpstore"
	"github.com/angelmondragon/mrpworks-backend/pkg/config"
	"github.com/angelmondragon/mrpworks-backend/pkg/db"
	"github.com/angelmondragon/mrpworks-backend/pkg/logger"
	"github.com/angelmondragon/mrpworks-backend/pkg/metrics"
	"github.com/angelmondragon/mrpworks-backend/pkg/migrate"
	"github.com/angelmondragon/mrpworks-backend/pkg/outbox"
	"github.com/angelmondragon/mrpworks-backend/pkg/redis"
)

const (
	cycleLockKeyFormat = "mrp:worker:lock:%s"
	runLockKeyFormat   = "mrp:run:lock:%s"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "mrp-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "mrp-worker"

	logg = logger.New(logger.Options{
		ServiceName: "mrp-worker",
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	outboxRepo := outbox.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outboxRepo, logg)
	eventSink := mrpstore.NewOutboxSink(dbClient, outboxService, logg)

	runLock, err := cron.NewRedisLock(redisClient, lockKey(runLockKeyFormat, cfg.App.Env), cfg.Planning.RunTimeout)
	if err != nil {
		logg.Error(context.Background(), "failed to create run lock", err)
		os.Exit(1)
	}

	runMetrics := metrics.NewRunMetrics(prometheus.DefaultRegisterer)
	planner, err := mrp.NewService(mrp.ServiceParams{
		Logger:  logg,
		Reader:  mrpstore.NewReader(dbClient.DB()),
		Store:   mrpstore.NewWorkset(dbClient.DB()),
		Lock:    runLock,
		Events:  eventSink,
		Metrics: runMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create planning service", err)
		os.Exit(1)
	}

	runJob, err := cron.NewMRPRunJob(cron.MRPRunJobParams{
		Logger:  logg,
		Planner: planner,
		Options: mrp.OptionsFromConfig(cfg.Planning),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create mrp run job", err)
		os.Exit(1)
	}

	retentionJob, err := cron.NewWorksetRetentionJob(cron.WorksetRetentionJobParams{
		Logger: logg,
		Store:  mrpstore.NewWorkset(dbClient.DB()),
		TTL:    cfg.Planning.WorksetTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create workset retention job", err)
		os.Exit(1)
	}

	outboxRetentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		Repository: outboxRepo,
		Retention:  cfg.Outbox.RetentionDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox retention job", err)
		os.Exit(1)
	}

	cycleLock, err := cron.NewRedisLock(redisClient, lockKey(cycleLockKeyFormat, cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cycle lock", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(runJob, retentionJob, outboxRetentionJob)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     cycleLock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Planning.RunInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting mrp worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "mrp worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "mrp worker shutting down gracefully")
}

func lockKey(format, env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(format, env)
}
