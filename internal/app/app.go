// Package app assembles the shared dependency graph for the binaries.
package app

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/leozw/domainy/internal/api/handlers"
	"github.com/leozw/domainy/internal/auth"
	"github.com/leozw/domainy/internal/checker"
	"github.com/leozw/domainy/internal/config"
	"github.com/leozw/domainy/internal/metrics"
	"github.com/leozw/domainy/internal/queue"
	"github.com/leozw/domainy/internal/reconciler"
	"github.com/leozw/domainy/internal/scheduler"
	"github.com/leozw/domainy/internal/service"
	"github.com/leozw/domainy/internal/storage/memory"
	"github.com/leozw/domainy/internal/storage/postgres"
	"github.com/leozw/domainy/internal/storage/redis"
)

type store interface {
	service.DomainStore
	service.UserStore
	Ping(ctx context.Context) error
}

type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Collector
	Domains *service.DomainService
	Auth    *service.AuthService
	Queue   scheduler.Queue

	// Dependencies are pinged by the readiness probe.
	Dependencies map[string]handlers.Pinger

	closers []func() error
}

// LoadConfig reads an optional .env file and then the viper configuration.
func LoadConfig() (*config.Config, error) {
	_ = godotenv.Load()
	return config.Load()
}

func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDebug() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{
		Config:       cfg,
		Logger:       logger,
		Metrics:      metrics.NewCollector(cfg.Metrics),
		Dependencies: map[string]handlers.Pinger{},
	}

	st, err := a.openStore()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Dependencies["database"] = st

	var cache *redis.Client
	if cfg.Redis.URL != "" {
		cache = redis.NewClient(cfg.Redis.URL)
		a.closers = append(a.closers, cache.Close)
		a.Dependencies["redis"] = cache
		a.Queue = queue.NewRedisQueue(cache.Client)
	} else {
		a.Queue = queue.NewMemoryQueue()
	}

	provider := newProvider(cfg.Whois, cache, logger)
	rec := reconciler.New(provider, cfg.Whois.Timeout, a.Metrics, logger)

	a.Domains = service.NewDomainService(st, rec, a.Metrics, logger)
	a.Auth = service.NewAuthService(st, auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), logger)

	logger.Info("Application initialised",
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("whois_provider", provider.Name()),
		zap.Bool("redis", cache != nil),
	)
	return a, nil
}

func (a *App) openStore() (store, error) {
	switch a.Config.Database.Driver {
	case "memory":
		a.Logger.Warn("Using in-memory storage; data is lost on restart")
		return memory.New(), nil
	default:
		db, err := postgres.NewConnection(a.Config.Database)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)

		if a.Config.Database.AutoMigrate {
			if err := db.Migrate(); err != nil {
				return nil, err
			}
			a.Logger.Info("Database migrations applied")
		}
		return db, nil
	}
}

func newProvider(cfg config.WhoisConfig, cache *redis.Client, logger *zap.Logger) checker.Provider {
	var provider checker.Provider
	switch cfg.Provider {
	case "live":
		provider = checker.NewWHOISChecker(cfg.Timeout)
	default:
		provider = checker.NewStubChecker()
	}

	if cache != nil && cfg.CacheTTL > 0 {
		provider = checker.NewCachedChecker(provider, cache, cfg.CacheTTL, logger)
	}
	return provider
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("Close failed", zap.Error(err))
		}
	}
	a.closers = nil
}
