package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of an action.
type Status string

const (
	// StatusActive is the only status an action can be created with.
	StatusActive Status = "active"
	// StatusCompleted marks an action that finished successfully.
	StatusCompleted Status = "completed"
	// StatusFailed marks an action that finished unsuccessfully.
	StatusFailed Status = "failed"
	// StatusCanceled marks an action that was abandoned before completion.
	StatusCanceled Status = "canceled"
)

// Statuses lists every valid status value.
func Statuses() []Status {
	return []Status{StatusActive, StatusCompleted, StatusFailed, StatusCanceled}
}

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether the status closes an action. Terminal statuses
// are permanent: an action never leaves one.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// CanTransition reports whether an action currently in status s may accept
// an update requesting status requested. Only active actions accept
// updates; requesting StatusActive while active is allowed and does not
// close the action.
func (s Status) CanTransition(requested Status) bool {
	return s == StatusActive && requested.Valid()
}

// ParseStatus converts a wire value into a Status.
func ParseStatus(value string) (Status, error) {
	status := Status(strings.TrimSpace(value))
	if !status.Valid() {
		return "", fmt.Errorf("unknown action status %q", value)
	}
	return status, nil
}

// SortOrder directs listing order by update time.
type SortOrder string

const (
	// SortDesc lists most recently updated actions first. It is the
	// default order.
	SortDesc SortOrder = "desc"
	// SortAsc lists least recently updated actions first.
	SortAsc SortOrder = "asc"
)

// ParseSortOrder converts a wire value into a SortOrder. Empty input
// selects the default descending order.
func ParseSortOrder(value string) (SortOrder, error) {
	switch SortOrder(strings.TrimSpace(value)) {
	case "":
		return SortDesc, nil
	case SortAsc:
		return SortAsc, nil
	case SortDesc:
		return SortDesc, nil
	}
	return "", fmt.Errorf("unknown sort order %q", value)
}

// Metadata is an open key/value mapping attached to an action. The core
// never interprets it beyond pass-through storage; updates replace it
// wholesale, never merge.
type Metadata map[string]any

// Action is one trackable unit of work performed by an external service.
type Action struct {
	// ID is the UUID assigned at creation. Immutable.
	ID string

	// Service names the owning external service. Immutable.
	Service string

	// State is a caller-supplied integer opaque to the core. Immutable.
	State int64

	// Status is the lifecycle state. Active until closed exactly once.
	Status Status

	// Metadata is the optional caller payload.
	Metadata Metadata

	// ClosedAt is nil while the action is active and set to the closing
	// instant otherwise. It always equals the UpdatedAt recorded at close.
	ClosedAt *time.Time

	// CreatedAt is when the action was recorded. Immutable.
	CreatedAt time.Time

	// UpdatedAt is refreshed on every successful mutation.
	UpdatedAt time.Time
}

// Closed reports whether the action has left the active status.
func (a Action) Closed() bool {
	return a.Status != StatusActive
}
