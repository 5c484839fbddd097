package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Whois     WhoisConfig
	Scheduler SchedulerConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Driver         string
	URL            string
	MaxConnections int
	MaxIdleConns   int
	AutoMigrate    bool
}

type RedisConfig struct {
	URL string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type WhoisConfig struct {
	Provider string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type SchedulerConfig struct {
	WorkerCount  int
	PollInterval time.Duration
	RefreshAfter time.Duration
	BatchSize    int
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type MetricsConfig struct {
	RemoteWriteURL string
	BatchSize      int
	FlushInterval  time.Duration
	AuthToken      string
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("DOMAINY")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Override with environment variables
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if url := os.Getenv("REDIS_URL"); url != "" {
		cfg.Redis.URL = url
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if url := os.Getenv("METRICS_REMOTE_WRITE_URL"); url != "" {
		cfg.Metrics.RemoteWriteURL = url
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.maxconnections", 25)
	v.SetDefault("database.maxidleconns", 5)
	v.SetDefault("database.automigrate", true)
	v.SetDefault("auth.tokenttl", "24h")
	v.SetDefault("whois.provider", "stub")
	v.SetDefault("whois.timeout", "10s")
	v.SetDefault("whois.cachettl", "6h")
	v.SetDefault("scheduler.workercount", 4)
	v.SetDefault("scheduler.pollinterval", "1m")
	v.SetDefault("scheduler.refreshafter", "24h")
	v.SetDefault("scheduler.batchsize", 100)
	v.SetDefault("ratelimit.rps", 5)
	v.SetDefault("ratelimit.burst", 10)
	v.SetDefault("metrics.batchsize", 1000)
	v.SetDefault("metrics.flushinterval", "15s")
}

func (c *Config) Validate() error {
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown server mode %q", c.Server.Mode)
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("database.url is required for the postgres driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	switch c.Whois.Provider {
	case "stub", "live":
	default:
		return fmt.Errorf("unknown whois provider %q", c.Whois.Provider)
	}

	if c.Auth.JWTSecret == "" && !c.IsDebug() {
		return errors.New("auth.jwtsecret is required outside debug mode")
	}

	if c.Scheduler.WorkerCount <= 0 {
		return errors.New("scheduler.workercount must be positive")
	}

	return nil
}

func (c *Config) IsDebug() bool {
	return c.Server.Mode == "debug"
}
