package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/devicemove-backend/internal/coordinator"
	"github.com/angelmondragon/devicemove-backend/internal/cron"
	"github.com/angelmondragon/devicemove-backend/internal/locks"
	"github.com/angelmondragon/devicemove-backend/internal/store"
	"github.com/angelmondragon/devicemove-backend/pkg/config"
	"github.com/angelmondragon/devicemove-backend/pkg/db"
	"github.com/angelmondragon/devicemove-backend/pkg/env"
	"github.com/angelmondragon/devicemove-backend/pkg/logger"
	"github.com/angelmondragon/devicemove-backend/pkg/metrics"
	"github.com/angelmondragon/devicemove-backend/pkg/migrate"
	"github.com/angelmondragon/devicemove-backend/pkg/redis"
)

const serviceName = "rollup-worker"

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = serviceName

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
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

	var (
		workerLock cron.Lock    = &cron.LocalLock{}
		locker     locks.Locker = locks.NewKeyedMutex()
	)
	if cfg.Redis.Enabled() {
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

		workerLock, err = cron.NewRedisLock(redisClient, lockName(cfg.App.Env), 0)
		if err != nil {
			logg.Error(context.Background(), "failed to create worker lock", err)
			os.Exit(1)
		}
		locker, err = locks.NewRedisLocker(redisClient, logg, locks.RedisOptions{
			TTL:           cfg.Locks.TTL,
			RetryInterval: cfg.Locks.RetryInterval,
			WaitTimeout:   cfg.Locks.WaitTimeout,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create redis locker", err)
			os.Exit(1)
		}
	}

	st := store.NewFromClient(dbClient)
	svc, err := coordinator.NewService(coordinator.Params{
		Store:   st,
		Locker:  locker,
		Policy:  cfg.Policy,
		Logger:  logg,
		Metrics: metrics.NewOperationMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create coordinator", err)
		os.Exit(1)
	}

	rollupJob, err := cron.NewDailyRollupJob(cron.DailyRollupJobParams{
		Logger:     logg,
		Migrations: st,
		Summaries:  svc,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create rollup job", err)
		os.Exit(1)
	}

	registry, err := cron.NewRegistry(rollupJob)
	if err != nil {
		logg.Error(context.Background(), "failed to register jobs", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     workerLock,
		Metrics:  metrics.NewJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Rollup.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create worker service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"interval":    cfg.Rollup.Interval.String(),
		"instance":    env.InstanceID(),
	})
	logg.Info(ctx, "starting rollup worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "rollup worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "rollup worker shutting down gracefully")
}

func lockName(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("%s:%s", serviceName, env)
}
