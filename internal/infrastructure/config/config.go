package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// StoreDriver selects the entity store: "memory" or "mongo".
	StoreDriver string `env:"STORE_DRIVER, default=memory"`
	// SessionDriver selects the session store: "memory" or "redis".
	SessionDriver string `env:"SESSION_DRIVER, default=memory"`
	// Seed loads the development fixture into the store at startup.
	Seed bool `env:"SEED, default=true"`

	TokenTTL          time.Duration `env:"TOKEN_TTL, default=8h"`
	NotifyWorkers     int           `env:"NOTIFY_WORKERS, default=4"`
	SchedulerInterval time.Duration `env:"SCHEDULER_INTERVAL, default=1m"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=taskflow"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Env == "production" && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}
	return &cfg, nil
}
