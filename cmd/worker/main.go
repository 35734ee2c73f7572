package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ali-plastic-pos/internal/cache"
	"ali-plastic-pos/internal/config"
	"ali-plastic-pos/internal/jobs"
	"ali-plastic-pos/internal/repository"
	"ali-plastic-pos/internal/service"
	"ali-plastic-pos/pkg/database"
	applog "ali-plastic-pos/pkg/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const dailyCloseSpec = "59 23 * * *"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", slog.Any("error", err))
		os.Exit(1)
	}
	log := applog.New(cfg.LogFormat)
	slog.SetDefault(log)

	if cfg.RedisAddr == "" {
		log.Error("REDIS_ADDR is required for the worker")
		os.Exit(1)
	}

	db, err := database.ConnectDB(cfg.Database())
	if err != nil {
		log.Error("database", slog.Any("error", err))
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	reports := service.NewReportService(
		repository.NewProductRepo(db),
		repository.NewSaleRepo(db),
		cache.New(rdb, cfg.CacheTTL),
		time.Now,
		log,
	)

	closeTask, err := jobs.NewDailyPnlCloseTask("")
	if err != nil {
		log.Error("daily close task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    log,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLowStockScan, Handler: jobs.NewLowStockJob(reports, log).Handle},
			{Type: jobs.TaskDailyPnlClose, Handler: jobs.NewDailyCloseJob(reports, log).Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: dailyCloseSpec, Task: closeTask},
		},
	})
	if err != nil {
		log.Error("worker", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
	log.Info("worker exited")
}
