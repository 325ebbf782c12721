// Package storage defines the persisted shape of actions and the store
// contract implemented by the sqlite and memory backends.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested action record is missing.
	ErrNotFound = errors.New("action record not found")
	// ErrConflict indicates a write conflicts with uniqueness constraints.
	ErrConflict = errors.New("action record conflict")
	// ErrAlreadyClosed indicates a conditional update was rejected because
	// the stored status was no longer active.
	ErrAlreadyClosed = errors.New("action record already closed")
)

// Status is the persisted lifecycle state of an action.
type Status string

const (
	// StatusActive marks an open action.
	StatusActive Status = "active"
	// StatusCompleted marks a successfully closed action.
	StatusCompleted Status = "completed"
	// StatusFailed marks an unsuccessfully closed action.
	StatusFailed Status = "failed"
	// StatusCanceled marks an abandoned action.
	StatusCanceled Status = "canceled"
)

// Terminal reports whether the status closes an action.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// SortOrder directs listing order by update time.
type SortOrder string

const (
	// SortDesc lists most recently updated records first (default).
	SortDesc SortOrder = "desc"
	// SortAsc lists least recently updated records first.
	SortAsc SortOrder = "asc"
)

// Record stores one action row. Metadata travels as raw JSON text; the
// store never inspects it.
type Record struct {
	ID           string
	Service      string
	State        int64
	Status       Status
	MetadataJSON string
	ClosedAt     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Filter selects and orders records for listing. The store trusts its
// caller to have validated shape: it performs matching, ordering, and
// capping only.
type Filter struct {
	// Service matches exactly when non-empty.
	Service string
	// Statuses matches by set membership when non-empty.
	Statuses []Status
	// Sort orders by updated_at; zero value sorts descending. Ties break
	// by insertion order in either direction.
	Sort SortOrder
	// Limit caps results when positive.
	Limit int
}

// Patch mutates one record. Nil fields leave the stored value untouched;
// a non-nil MetadataJSON replaces the stored metadata wholesale.
type Patch struct {
	Status       *Status
	MetadataJSON *string
}

// Store persists action records.
//
// Update applies only while the stored status is active and reports
// ErrAlreadyClosed otherwise, making the close transition safe under
// concurrent read-modify-write races.
type Store interface {
	Create(ctx context.Context, record Record) (Record, error)
	Find(ctx context.Context, filter Filter) ([]Record, error)
	FindByID(ctx context.Context, actionID string) (Record, error)
	Update(ctx context.Context, actionID string, patch Patch, now time.Time) (Record, error)
	Clear(ctx context.Context) error
}
