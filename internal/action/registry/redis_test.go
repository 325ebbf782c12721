package registry

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedis(t *testing.T, opts ...RedisOption) (*miniredis.Miniredis, *Redis) {
	t.Helper()
	server := miniredis.RunT(t)
	registry := NewRedis(server.Addr(), "", 0, opts...)
	t.Cleanup(func() {
		if err := registry.Close(); err != nil {
			t.Errorf("close registry: %v", err)
		}
	})
	return server, registry
}

func TestRedisKnown(t *testing.T) {
	server, registry := newTestRedis(t)
	if _, err := server.SAdd(defaultRedisKey, "billing", "shipping"); err != nil {
		t.Fatalf("seed registry set: %v", err)
	}

	tests := []struct {
		name    string
		service string
		want    bool
	}{
		{name: "member", service: "billing", want: true},
		{name: "trimmed", service: "  shipping  ", want: true},
		{name: "non-member", service: "payments", want: false},
		{name: "blank", service: "   ", want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			known, err := registry.Known(context.Background(), tc.service)
			if err != nil {
				t.Fatalf("Known(%q): %v", tc.service, err)
			}
			if known != tc.want {
				t.Fatalf("Known(%q) = %v, want %v", tc.service, known, tc.want)
			}
		})
	}
}

func TestRedisCustomKey(t *testing.T) {
	server, registry := newTestRedis(t, WithKey("custom:services"))
	if _, err := server.SAdd("custom:services", "billing"); err != nil {
		t.Fatalf("seed registry set: %v", err)
	}

	known, err := registry.Known(context.Background(), "billing")
	if err != nil {
		t.Fatalf("Known: %v", err)
	}
	if !known {
		t.Fatal("member of custom key not recognized")
	}

	known, err = registry.Known(context.Background(), "shipping")
	if err != nil {
		t.Fatalf("Known: %v", err)
	}
	if known {
		t.Fatal("non-member recognized under custom key")
	}
}

func TestRedisServerDown(t *testing.T) {
	server, registry := newTestRedis(t)
	server.Close()

	if _, err := registry.Known(context.Background(), "billing"); err == nil {
		t.Fatal("Known against a stopped server expected error")
	}
}
