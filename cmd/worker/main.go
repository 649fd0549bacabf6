package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ecopickup/ecopickup/internal/app"
	"github.com/ecopickup/ecopickup/internal/kv"
	"github.com/ecopickup/ecopickup/internal/observability"
	"github.com/ecopickup/ecopickup/internal/seed"
	"github.com/ecopickup/ecopickup/jobs"
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
	if cfg.StoreDriver == kv.DriverMemory {
		logger.Error("worker needs a shared store; set STORE_DRIVER to redis or postgres")
		os.Exit(1)
	}

	backends, err := app.OpenBackends(ctx, cfg, logger, false)
	if err != nil {
		logger.Error("open backends", slog.Any("error", err))
		os.Exit(1)
	}
	defer backends.Close()

	metrics := observability.NewMetrics()
	seeder := seed.NewSeeder(backends.Store, logger, metrics, seed.Config{AccountThreshold: seed.Threshold(cfg.SeedAccountThreshold)})
	resetJob := &jobs.DemoResetJob{Seeder: seeder, Logger: logger, Metrics: metrics}

	var cron []jobs.CronRegistration
	if cfg.DemoResetCron != "" {
		task, err := jobs.NewDemoResetTask("schedule")
		if err != nil {
			logger.Error("build demo reset task", slog.Any("error", err))
			os.Exit(1)
		}
		cron = append(cron, jobs.CronRegistration{Spec: cfg.DemoResetCron, Task: task})
		logger.Info("demo reset scheduled", slog.String("cron", cfg.DemoResetCron))
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: app.AsynqRedisOpts(cfg),
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDemoReset, Handler: resetJob.Handle},
		},
		Cron: cron,
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
