// Package main is the entry point for the Kantina API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kantina/internal/config"
	"kantina/internal/domain/auth"
	"kantina/internal/domain/reports"
	"kantina/internal/infrastructure/cache"
	v1 "kantina/internal/infrastructure/http/v1"
	"kantina/internal/infrastructure/http/v1/handlers"
	"kantina/internal/infrastructure/storage/postgres"
	"kantina/internal/infrastructure/storage/postgres/auth_repo"
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

	ctx := context.Background()
	log.Info("starting kantina server")

	// --- Database ---
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	// --- Snapshot store ---
	snapshots := snapshot_repo.NewStore(pool, cfg.SnapshotTTL, log)

	// --- Report cache ---
	// Backed by Redis so entries warmed by the worker are served here.
	// Without Redis the server still runs, but with a process-local
	// cache the scheduled warmup cannot reach.
	var reportCache handlers.ReportCache
	redisClient, err := cache.NewRedisClient(ctx, cfg.RedisAddr)
	if err != nil {
		log.Warnw("redis unavailable, report cache is process-local", "error", err)
		reportCache, err = cache.NewReportCache(cfg.ReportCacheTTL)
		if err != nil {
			log.Fatalw("failed to initialize report cache", "error", err)
		}
	} else {
		defer redisClient.Close()
		reportCache, err = cache.NewRedisCache(redisClient, cfg.ReportCacheTTL)
		if err != nil {
			log.Fatalw("failed to initialize report cache", "error", err)
		}
	}

	// --- Services ---
	reportService := reports.NewService(log)

	jwtService := auth.NewJWTService(auth.JWTConfig{
		Secret:   cfg.JWTSecret,
		Issuer:   "kantina",
		TokenTTL: cfg.JWTTokenTTL,
	})
	authService := auth.NewService(auth_repo.NewUserRepo(pool), jwtService, log)

	// --- Startup report warmup ---
	// Runs in the background through the report runner; a repeated
	// submit for the same key would supersede this one.
	warmup := jobs.NewWarmupHandler(reportService, snapshots, reportCache, log)
	runner := reports.NewRunner(log)
	defer runner.Close()
	runner.Submit(ctx, "report-warmup", func(ctx context.Context) error {
		return warmup.Warm(ctx, time.Now().UTC())
	})

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:         pool,
		Logger:       log,
		JWTValidator: jwtService,
		AuthService:  authService,
		Reports:      reportService,
		Snapshots:    snapshots,
		Cache:        reportCache,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		log.Infow("server starting", "port", cfg.AppPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
