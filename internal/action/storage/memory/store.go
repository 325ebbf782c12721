// Package memory provides an in-process action store with the same
// semantics as the sqlite backend. It backs tests and ephemeral runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tracklane/actionledger/internal/action/storage"
)

type entry struct {
	record storage.Record
	seq    uint64
}

// Store keeps action records in memory behind a single mutex.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	nextSeq uint64
}

// New constructs an empty memory store.
func New() *Store {
	return &Store{entries: make(map[string]*entry)}
}

// Create persists one action record.
func (s *Store) Create(ctx context.Context, record storage.Record) (storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return storage.Record{}, err
	}
	normalized, err := normalizeRecord(record)
	if err != nil {
		return storage.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[normalized.ID]; exists {
		return storage.Record{}, storage.ErrConflict
	}
	s.nextSeq++
	s.entries[normalized.ID] = &entry{record: normalized, seq: s.nextSeq}
	return normalized, nil
}

// Find lists records matching the filter, ordered by update time with
// insertion-order tie-breaks.
func (s *Store) Find(ctx context.Context, filter storage.Filter) ([]storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	service := strings.TrimSpace(filter.Service)
	statuses := make(map[storage.Status]struct{}, len(filter.Statuses))
	for _, status := range filter.Statuses {
		statuses[status] = struct{}{}
	}

	// Copy matching entries while holding the lock; Update rewrites
	// entry records in place, so sorting must run over snapshots.
	s.mu.Lock()
	matches := make([]entry, 0, len(s.entries))
	for _, e := range s.entries {
		if service != "" && e.record.Service != service {
			continue
		}
		if len(statuses) > 0 {
			if _, ok := statuses[e.record.Status]; !ok {
				continue
			}
		}
		matches = append(matches, *e)
	}
	s.mu.Unlock()

	// Insertion order first, then a stable sort by update time so equal
	// timestamps keep insertion order in either direction.
	sort.Slice(matches, func(i, j int) bool { return matches[i].seq < matches[j].seq })
	if filter.Sort == storage.SortAsc {
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].record.UpdatedAt.Before(matches[j].record.UpdatedAt)
		})
	} else {
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].record.UpdatedAt.After(matches[j].record.UpdatedAt)
		})
	}
	if filter.Limit > 0 && len(matches) > filter.Limit {
		matches = matches[:filter.Limit]
	}

	records := make([]storage.Record, 0, len(matches))
	for _, e := range matches {
		records = append(records, e.record)
	}
	return records, nil
}

// FindByID loads one record by ID.
func (s *Store) FindByID(ctx context.Context, actionID string) (storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return storage.Record{}, err
	}
	actionID = strings.TrimSpace(actionID)
	if actionID == "" {
		return storage.Record{}, fmt.Errorf("action id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[actionID]
	if !ok {
		return storage.Record{}, storage.ErrNotFound
	}
	return e.record, nil
}

// Update applies a patch to one record while it is still active. A closed
// record reports ErrAlreadyClosed, an absent one ErrNotFound.
func (s *Store) Update(ctx context.Context, actionID string, patch storage.Patch, now time.Time) (storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return storage.Record{}, err
	}
	actionID = strings.TrimSpace(actionID)
	if actionID == "" {
		return storage.Record{}, fmt.Errorf("action id is required")
	}
	if now.IsZero() {
		return storage.Record{}, fmt.Errorf("now is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[actionID]
	if !ok {
		return storage.Record{}, storage.ErrNotFound
	}
	if e.record.Status != storage.StatusActive {
		return storage.Record{}, storage.ErrAlreadyClosed
	}

	updated := e.record
	updated.UpdatedAt = now.UTC()
	if patch.Status != nil {
		updated.Status = *patch.Status
		if patch.Status.Terminal() {
			closedAt := updated.UpdatedAt
			updated.ClosedAt = &closedAt
		}
	}
	if patch.MetadataJSON != nil {
		updated.MetadataJSON = *patch.MetadataJSON
	}
	e.record = updated
	return updated, nil
}

// Clear removes every record.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*entry)
	return nil
}

func normalizeRecord(record storage.Record) (storage.Record, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.Service = strings.TrimSpace(record.Service)
	record.MetadataJSON = strings.TrimSpace(record.MetadataJSON)
	if record.MetadataJSON == "" {
		record.MetadataJSON = "{}"
	}
	if record.ID == "" {
		return storage.Record{}, fmt.Errorf("action id is required")
	}
	if record.Service == "" {
		return storage.Record{}, fmt.Errorf("service is required")
	}
	if record.Status == "" {
		return storage.Record{}, fmt.Errorf("status is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.Record{}, fmt.Errorf("created_at is required")
	}
	if record.UpdatedAt.IsZero() {
		return storage.Record{}, fmt.Errorf("updated_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	if record.ClosedAt != nil {
		closedAt := record.ClosedAt.UTC()
		record.ClosedAt = &closedAt
	}
	return record, nil
}
