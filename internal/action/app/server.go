// Package app wires the action service together: it selects a store and a
// registry gate from configuration, mounts the HTTP API, and owns the
// serve/shutdown lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/tracklane/actionledger/internal/action/domain"
	"github.com/tracklane/actionledger/internal/action/httpapi"
	"github.com/tracklane/actionledger/internal/action/registry"
	"github.com/tracklane/actionledger/internal/action/storage"
	"github.com/tracklane/actionledger/internal/action/storage/memory"
	"github.com/tracklane/actionledger/internal/action/storage/sqlite"
)

// Registry backends selectable via configuration.
const (
	RegistryStatic = "static"
	RegistryRedis  = "redis"
)

const (
	defaultShutdownTimeout   = 10 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
)

// Config holds the runtime settings for the action service.
type Config struct {
	// HTTPAddr is the listen address for the HTTP API.
	HTTPAddr string
	// SQLitePath locates the SQLite database file. Empty selects the
	// in-memory store.
	SQLitePath string
	// Registry selects the service registry backend: static or redis.
	Registry string
	// Services seeds the static registry with recognized service names.
	Services []string
	// RedisAddr, RedisPassword, RedisDB, and RedisKey configure the redis
	// registry backend.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string
	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration
}

// Run starts the action service and blocks until ctx is canceled or the
// HTTP server fails.
func Run(ctx context.Context, cfg Config) error {
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return fmt.Errorf("http listen address is required")
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	gate, closeGate, err := openGate(cfg)
	if err != nil {
		return err
	}
	defer closeGate()

	svc := domain.NewService(newStoreAdapter(store), gate, nil, nil)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewHandler(svc),
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("actionledger listening on %s", cfg.HTTPAddr)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	return nil
}

func openStore(cfg Config) (storage.Store, func(), error) {
	if strings.TrimSpace(cfg.SQLitePath) == "" {
		log.Printf("actionledger using in-memory store")
		return memory.New(), func() {}, nil
	}
	store, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open action store: %w", err)
	}
	return store, func() {
		if err := store.Close(); err != nil {
			log.Printf("close action store: %v", err)
		}
	}, nil
}

func openGate(cfg Config) (domain.Gate, func(), error) {
	backend := strings.TrimSpace(strings.ToLower(cfg.Registry))
	switch backend {
	case "", RegistryStatic:
		gate := registry.NewStatic(cfg.Services)
		return gate, func() {}, nil
	case RegistryRedis:
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return nil, nil, fmt.Errorf("redis registry requires an address")
		}
		var opts []registry.RedisOption
		if strings.TrimSpace(cfg.RedisKey) != "" {
			opts = append(opts, registry.WithKey(cfg.RedisKey))
		}
		gate := registry.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, opts...)
		return gate, func() {
			if err := gate.Close(); err != nil {
				log.Printf("close redis registry: %v", err)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown registry backend %q", cfg.Registry)
	}
}
