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
	// Load configuration
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Setup logger
	logger, err := app.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Redis.URL == "" {
		logger.Fatal("The worker needs redis.url to consume the refresh queue")
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialise application", zap.Error(err))
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := scheduler.RunWorkers(ctx, cfg.Scheduler.WorkerCount, a.Queue, a.Domains, a.Metrics, logger); err != nil {
			logger.Error("Worker pool stopped", zap.Error(err))
		}
	}()

	// Start metrics exporter
	go a.Metrics.StartRemoteWrite(ctx, logger)

	logger.Info("Worker started", zap.Int("worker_count", cfg.Scheduler.WorkerCount))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()
	<-done
	logger.Info("Worker exited")
}
