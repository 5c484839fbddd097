package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/leozw/domainy/internal/api"
	"github.com/leozw/domainy/internal/api/handlers"
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

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialise application", zap.Error(err))
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go a.Metrics.StartRemoteWrite(ctx, logger)

	// Without redis there is no shared queue, so refreshes run in-process.
	if cfg.Redis.URL == "" {
		sched := scheduler.NewScheduler(a.Domains, a.Queue, a.Metrics, logger, cfg.Scheduler)
		go sched.Start(ctx)
		go func() {
			_ = scheduler.RunWorkers(ctx, cfg.Scheduler.WorkerCount, a.Queue, a.Domains, a.Metrics, logger)
		}()
	}

	h := handlers.NewHandler(a.Domains, a.Auth, a.Dependencies, logger)
	server := api.NewServer(cfg, h, a.Auth, a.Metrics.Handler(), logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           server.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("API server started", zap.String("port", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
