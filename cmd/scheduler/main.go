package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/leozw/domainy/internal/app"
	"github.com/leozw/domainy/internal/scheduler"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Redis.URL == "" {
		logger.Fatal("The scheduler needs redis.url to share its queue with workers")
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialise application", zap.Error(err))
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())

	sched := scheduler.NewScheduler(a.Domains, a.Queue, a.Metrics, logger, cfg.Scheduler)
	go sched.Start(ctx)
	go a.Metrics.StartRemoteWrite(ctx, logger)

	logger.Info("Scheduler started")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down scheduler...")
	cancel()
	logger.Info("Scheduler stopped")
}
