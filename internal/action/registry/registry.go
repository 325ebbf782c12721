// Package registry answers whether a service name is recognized. It hosts
// the static allow-set used for single-process deployments and a
// Redis-backed lookup for shared registries.
package registry

import (
	"context"
	"strings"
)

// Static is a fixed allow-set of service names.
type Static struct {
	services map[string]struct{}
}

// NewStatic builds a static registry from the given service names. Blank
// entries are ignored.
func NewStatic(services []string) *Static {
	set := make(map[string]struct{}, len(services))
	for _, service := range services {
		service = strings.TrimSpace(service)
		if service == "" {
			continue
		}
		set[service] = struct{}{}
	}
	return &Static{services: set}
}

// Known reports whether the service name is in the allow-set.
func (s *Static) Known(_ context.Context, service string) (bool, error) {
	if s == nil {
		return false, nil
	}
	_, ok := s.services[strings.TrimSpace(service)]
	return ok, nil
}
