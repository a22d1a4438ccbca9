package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/paperledger/internal/cron"
	"github.com/angelmondragon/paperledger/internal/operations"
	"github.com/angelmondragon/paperledger/pkg/config"
	"github.com/angelmondragon/paperledger/pkg/db"
	"github.com/angelmondragon/paperledger/pkg/itemlock"
	"github.com/angelmondragon/paperledger/pkg/logger"
	"github.com/angelmondragon/paperledger/pkg/metrics"
	"github.com/angelmondragon/paperledger/pkg/migrate"
	"github.com/angelmondragon/paperledger/pkg/redis"
)

const cronLockName = "cron-worker"

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
		Format:      cfg.App.LogFormat,
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

	var (
		cronLock   cron.Lock = &cron.LocalLock{}
		itemLocker itemlock.Locker
	)
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
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

		lock, err := cron.NewRedisLock(redisClient, redisClient.CronLockKey(cronLockName), 0)
		if err != nil {
			logg.Error(context.Background(), "failed to create cron lock", err)
			os.Exit(1)
		}
		cronLock = lock

		if cfg.FeatureFlags.DistributedLocks {
			locker, err := itemlock.NewRedisLocker(itemlock.RedisParams{
				Store:         redisClient,
				Logger:        logg,
				TTL:           cfg.Locks.TTL,
				RetryInterval: cfg.Locks.RetryInterval,
				WaitTimeout:   cfg.Locks.WaitTimeout,
			})
			if err != nil {
				logg.Error(context.Background(), "failed to create item locker", err)
				os.Exit(1)
			}
			itemLocker = locker
		}
	}

	ops, err := operations.New(operations.Params{
		DB:             dbClient.DB(),
		Locker:         itemLocker,
		Metrics:        metrics.NewWorkflowMetrics(prometheus.DefaultRegisterer),
		Logger:         logg,
		MaxParallelism: cfg.Ledger.MaxParallelism,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to wire ledger operations", err)
		os.Exit(1)
	}

	registry, err := cron.NewRegistry()
	if err != nil {
		logg.Error(context.Background(), "failed to create cron registry", err)
		os.Exit(1)
	}
	if cfg.Restock.Enabled {
		job, err := cron.NewRestockJob(cron.RestockJobParams{
			Logger:           logg,
			Restock:          ops.Restock(),
			BufferMultiplier: cfg.Restock.BufferMultiplier,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create restock job", err)
			os.Exit(1)
		}
		if err := registry.Register(job); err != nil {
			logg.Error(context.Background(), "failed to register restock job", err)
			os.Exit(1)
		}
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     cronLock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Restock.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":               cfg.App.Env,
		"serviceKind":       cfg.Service.Kind,
		"db_driver":         cfg.DB.Driver,
		"distributed_locks": itemLocker != nil,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
