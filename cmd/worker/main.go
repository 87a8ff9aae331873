// Package main is the entry point for the Kantina background worker.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"kantina/internal/config"
	"kantina/internal/domain/reports"
	"kantina/internal/infrastructure/cache"
	"kantina/internal/infrastructure/storage/postgres"
	"kantina/internal/infrastructure/storage/postgres/snapshot_repo"
	"kantina/internal/jobs"
	"kantina/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting kantina worker")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	snapshots := snapshot_repo.NewStore(pool, cfg.SnapshotTTL, log)

	// The cache must live in Redis here: warmed reports are read back
	// by the API server process.
	redisClient, err := cache.NewRedisClient(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	reportCache, err := cache.NewRedisCache(redisClient, cfg.ReportCacheTTL)
	if err != nil {
		log.Fatalw("failed to initialize report cache", "error", err)
	}
	warmup := jobs.NewWarmupHandler(reports.NewService(log), snapshots, reportCache, log)

	warmupTask, err := jobs.NewReportWarmupTask(jobs.ReportWarmupPayload{})
	if err != nil {
		log.Fatalw("failed to build warmup task", "error", err)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    log,
		Warmup:    warmup,
		Cron: []jobs.CronRegistration{
			{Spec: cfg.WarmupCron, Task: warmupTask},
		},
	})
	if err != nil {
		log.Fatalw("failed to initialize worker", "error", err)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalw("worker failed", "error", err)
	}

	log.Info("worker stopped")
}
