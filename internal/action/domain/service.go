// Package domain holds the action entity, its status state machine, and
// the service orchestrating creation, listing, and closing of actions.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Query filters and orders an action listing.
type Query struct {
	// Service restricts results to one owning service by exact match.
	// Empty means all services.
	Service string
	// Statuses restricts results by status set membership. Empty means
	// all statuses.
	Statuses []Status
	// Sort orders results by update time. Zero value sorts descending.
	Sort SortOrder
	// Limit caps the result count when positive. Zero or negative means
	// no cap; the request boundary rejects explicit non-positive limits
	// before they reach the domain.
	Limit int
}

// CreateInput describes one action creation request.
type CreateInput struct {
	Service  string
	State    int64
	Metadata Metadata
}

// UpdateInput describes a mutation of one active action. At least one of
// Status and Metadata must be set. A nil Metadata leaves the stored
// metadata untouched; a non-nil one replaces it wholesale.
type UpdateInput struct {
	Status   *Status
	Metadata Metadata
}

// Empty reports whether the update carries no mutation.
func (in UpdateInput) Empty() bool {
	return in.Status == nil && in.Metadata == nil
}

// Store is the domain persistence boundary for action lifecycle behavior.
// Implementations supply the atomicity of the close transition: Update must
// only succeed while the stored status is still active and must report
// ErrActionClosed otherwise, so a lost check-then-act race between two
// concurrent closers surfaces as a conflict instead of a silent overwrite.
type Store interface {
	Create(ctx context.Context, action Action) (Action, error)
	Find(ctx context.Context, query Query) ([]Action, error)
	FindByID(ctx context.Context, actionID string) (Action, error)
	Update(ctx context.Context, actionID string, input UpdateInput, now time.Time) (Action, error)
	Clear(ctx context.Context) error
}

// Gate answers whether a service name is recognized by the registry. It is
// a pure lookup with no side effects, consulted once per creation request
// before anything is persisted.
type Gate interface {
	Known(ctx context.Context, service string) (bool, error)
}

// Service orchestrates action lifecycle behavior.
type Service struct {
	store Store
	gate  Gate
	clock func() time.Time
	newID func() (string, error)
}

// NewService constructs the action service with explicit collaborators.
func NewService(store Store, gate Gate, clock func() time.Time, newID func() (string, error)) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = func() (string, error) {
			value, err := uuid.NewRandom()
			if err != nil {
				return "", err
			}
			return value.String(), nil
		}
	}
	return &Service{
		store: store,
		gate:  gate,
		clock: clock,
		newID: newID,
	}
}

// Create registers one action for a recognized service. The action starts
// active with CreatedAt == UpdatedAt and no close time.
func (s *Service) Create(ctx context.Context, input CreateInput) (Action, error) {
	if s == nil || s.store == nil {
		return Action{}, ErrStoreNotConfigured
	}
	if s.gate == nil {
		return Action{}, ErrGateNotConfigured
	}
	if s.newID == nil {
		return Action{}, ErrIDGeneratorNotConfigured
	}
	service := strings.TrimSpace(input.Service)
	if service == "" {
		return Action{}, ErrServiceRequired
	}

	known, err := s.gate.Known(ctx, service)
	if err != nil {
		return Action{}, fmt.Errorf("check service registry: %w", err)
	}
	if !known {
		return Action{}, UnknownServiceError{Service: service}
	}

	actionID, err := s.newID()
	if err != nil {
		return Action{}, fmt.Errorf("generate action id: %w", err)
	}
	now := s.nowUTC()
	action := Action{
		ID:        actionID,
		Service:   service,
		State:     input.State,
		Status:    StatusActive,
		Metadata:  input.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := s.store.Create(ctx, action)
	if err != nil {
		return Action{}, fmt.Errorf("persist action %s: %w", actionID, err)
	}
	return created, nil
}

// List returns actions matching the query. It is a pass-through to the
// store's filter, order, and limit semantics.
func (s *Service) List(ctx context.Context, query Query) ([]Action, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	return s.store.Find(ctx, query)
}

// Update mutates one active action: a terminal status closes it exactly
// once, StatusActive refreshes it without closing, and a non-nil metadata
// replaces the stored metadata wholesale. Updating a closed action fails
// with AlreadyClosedError naming the status it closed with.
func (s *Service) Update(ctx context.Context, actionID string, input UpdateInput) (Action, error) {
	if s == nil || s.store == nil {
		return Action{}, ErrStoreNotConfigured
	}
	actionID = strings.TrimSpace(actionID)
	if actionID == "" {
		return Action{}, ErrActionIDRequired
	}
	if input.Empty() {
		return Action{}, ErrEmptyUpdate
	}
	if input.Status != nil && !input.Status.Valid() {
		return Action{}, fmt.Errorf("unknown action status %q", *input.Status)
	}

	current, err := s.store.FindByID(ctx, actionID)
	if err != nil {
		return Action{}, err
	}
	// A metadata-only update requests the current status, so the
	// transition check doubles as the still-active check.
	requested := current.Status
	if input.Status != nil {
		requested = *input.Status
	}
	if !current.Status.CanTransition(requested) {
		return Action{}, AlreadyClosedError{ActionID: actionID, Status: current.Status}
	}

	updated, err := s.store.Update(ctx, actionID, input, s.nowUTC())
	if err != nil {
		if errors.Is(err, ErrActionClosed) {
			// A concurrent update closed the action between the read
			// above and the conditional write. Report the status it
			// actually closed with.
			raced, lookupErr := s.store.FindByID(ctx, actionID)
			if lookupErr != nil {
				return Action{}, lookupErr
			}
			return Action{}, AlreadyClosedError{ActionID: actionID, Status: raced.Status}
		}
		return Action{}, err
	}
	return updated, nil
}

// Clear removes every stored action. Administrative reset only; it is not
// part of the lifecycle contract.
func (s *Service) Clear(ctx context.Context) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	return s.store.Clear(ctx)
}

func (s *Service) nowUTC() time.Time {
	if s.clock == nil {
		return time.Now().UTC().Truncate(time.Millisecond)
	}
	return s.clock().UTC().Truncate(time.Millisecond)
}
