package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/procureflow-backend/internal/cron"
	"github.com/angelmondragon/procureflow-backend/internal/materialrequests"
	"github.com/angelmondragon/procureflow-backend/internal/notifications"
	"github.com/angelmondragon/procureflow-backend/internal/procurement"
	"github.com/angelmondragon/procureflow-backend/pkg/config"
	"github.com/angelmondragon/procureflow-backend/pkg/db"
	"github.com/angelmondragon/procureflow-backend/pkg/logger"
	"github.com/angelmondragon/procureflow-backend/pkg/metrics"
	"github.com/angelmondragon/procureflow-backend/pkg/migrate"
	"github.com/angelmondragon/procureflow-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
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

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockName(cfg.App.Env)), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	notifier, err := procurement.NewNotifier(procurement.NotifierParams{
		DB:             dbClient.DB(),
		Store:          redisClient,
		IdempotencyTTL: cfg.Notifications.IdempotencyTTL,
		Metrics:        metrics.NewWorkflowMetrics(prometheus.DefaultRegisterer),
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notifier", err)
		os.Exit(1)
	}

	cleanupJob, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: notifications.NewRepository(dbClient.DB()),
		Retention:  cfg.Notifications.RetentionDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification cleanup job", err)
		os.Exit(1)
	}
	reminderJob, err := cron.NewReviewReminderJob(cron.ReviewReminderJobParams{
		Logger:    logg,
		Requests:  materialrequests.NewRepository(dbClient.DB()),
		Forwarder: notifier,
		After:     cfg.Cron.ReminderAfter,
		MaxBatch:  cfg.Cron.ReminderMaxBatch,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create review reminder job", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(cleanupJob)
	registry.Schedule(reminderJob, cfg.Cron.ReminderEvery)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.Interval,
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
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockName(env string) string {
	if env == "" {
		env = "local"
	}
	return "cron-worker:" + env
}
