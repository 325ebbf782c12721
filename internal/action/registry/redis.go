package registry

import (
	"context"
	"fmt"
	"strings"

	backend "github.com/redis/go-redis/v9"
)

const defaultRedisKey = "actionledger:services"

// Redis looks services up in a shared Redis set.
type Redis struct {
	client *backend.Client
	key    string
}

// RedisOption configures a Redis registry.
type RedisOption func(*Redis)

// WithKey overrides the registry set key.
func WithKey(key string) RedisOption {
	return func(r *Redis) {
		r.key = key
	}
}

// NewRedis creates a Redis registry with its own client.
func NewRedis(address, password string, db int, opts ...RedisOption) *Redis {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewRedisFromClient(client, opts...)
}

// NewRedisFromClient creates a Redis registry from an existing client.
func NewRedisFromClient(client *backend.Client, opts ...RedisOption) *Redis {
	registry := &Redis{
		client: client,
		key:    defaultRedisKey,
	}
	for _, opt := range opts {
		opt(registry)
	}
	return registry
}

// Known reports whether the service name is a member of the registry set.
func (r *Redis) Known(ctx context.Context, service string) (bool, error) {
	if r == nil || r.client == nil {
		return false, fmt.Errorf("redis registry is not configured")
	}
	service = strings.TrimSpace(service)
	if service == "" {
		return false, nil
	}
	known, err := r.client.SIsMember(ctx, r.key, service).Result()
	if err != nil {
		return false, fmt.Errorf("lookup service %q: %w", service, err)
	}
	return known, nil
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}
