// Package actionledger parses configuration for the actionledger command
// and runs the service under the shared telemetry entrypoint.
package actionledger

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/tracklane/actionledger/internal/action/app"
	platformcmd "github.com/tracklane/actionledger/internal/platform/cmd"
)

// Config is the environment-backed configuration for the actionledger
// command. Flags override environment values.
type Config struct {
	HTTPAddr        string        `env:"ACTIONLEDGER_HTTP_ADDR" envDefault:":8080"`
	SQLitePath      string        `env:"ACTIONLEDGER_SQLITE_PATH"`
	Registry        string        `env:"ACTIONLEDGER_REGISTRY" envDefault:"static"`
	Services        []string      `env:"ACTIONLEDGER_SERVICES" envSeparator:","`
	RedisAddr       string        `env:"ACTIONLEDGER_REDIS_ADDR"`
	RedisPassword   string        `env:"ACTIONLEDGER_REDIS_PASSWORD"`
	RedisDB         int           `env:"ACTIONLEDGER_REDIS_DB"`
	RedisKey        string        `env:"ACTIONLEDGER_REDIS_KEY"`
	ShutdownTimeout time.Duration `env:"ACTIONLEDGER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// ParseConfig loads environment defaults and applies flag overrides.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	var services string
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "SQLite database path (empty for in-memory)")
	fs.StringVar(&cfg.Registry, "registry", cfg.Registry, "service registry backend (static or redis)")
	fs.StringVar(&services, "services", "", "comma-separated service names for the static registry")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "redis registry address")
	fs.StringVar(&cfg.RedisKey, "redis-key", cfg.RedisKey, "redis registry set key")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "graceful shutdown timeout")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if services != "" {
		cfg.Services = strings.Split(services, ",")
	}
	return cfg, nil
}

// Run executes the actionledger service until ctx is canceled.
func Run(ctx context.Context, cfg Config) error {
	options := platformcmd.RunOptions{ShutdownTimeout: cfg.ShutdownTimeout}
	return platformcmd.RunWithTelemetryAndOptions(ctx, platformcmd.ServiceActionLedger, options, func(ctx context.Context) error {
		return app.Run(ctx, app.Config{
			HTTPAddr:        cfg.HTTPAddr,
			SQLitePath:      cfg.SQLitePath,
			Registry:        cfg.Registry,
			Services:        cfg.Services,
			RedisAddr:       cfg.RedisAddr,
			RedisPassword:   cfg.RedisPassword,
			RedisDB:         cfg.RedisDB,
			RedisKey:        cfg.RedisKey,
			ShutdownTimeout: cfg.ShutdownTimeout,
		})
	})
}
