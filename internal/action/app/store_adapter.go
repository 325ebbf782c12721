package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tracklane/actionledger/internal/action/domain"
	"github.com/tracklane/actionledger/internal/action/storage"
)

// storeAdapter bridges the storage layer to the domain Store contract,
// translating metadata between the domain map and stored JSON text and
// storage sentinels into domain error kinds.
type storeAdapter struct {
	store storage.Store
}

func newStoreAdapter(store storage.Store) *storeAdapter {
	return &storeAdapter{store: store}
}

func (a *storeAdapter) Create(ctx context.Context, action domain.Action) (domain.Action, error) {
	if a == nil || a.store == nil {
		return domain.Action{}, domain.ErrStoreNotConfigured
	}
	record, err := toRecord(action)
	if err != nil {
		return domain.Action{}, err
	}
	created, err := a.store.Create(ctx, record)
	if err != nil {
		return domain.Action{}, err
	}
	return toAction(created)
}

func (a *storeAdapter) Find(ctx context.Context, query domain.Query) ([]domain.Action, error) {
	if a == nil || a.store == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	filter := storage.Filter{
		Service: query.Service,
		Sort:    storage.SortOrder(query.Sort),
		Limit:   query.Limit,
	}
	for _, status := range query.Statuses {
		filter.Statuses = append(filter.Statuses, storage.Status(status))
	}
	records, err := a.store.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	actions := make([]domain.Action, 0, len(records))
	for _, record := range records {
		action, convertErr := toAction(record)
		if convertErr != nil {
			return nil, convertErr
		}
		actions = append(actions, action)
	}
	return actions, nil
}

func (a *storeAdapter) FindByID(ctx context.Context, actionID string) (domain.Action, error) {
	if a == nil || a.store == nil {
		return domain.Action{}, domain.ErrStoreNotConfigured
	}
	record, err := a.store.FindByID(ctx, actionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Action{}, domain.NotFoundError{ActionID: actionID}
		}
		return domain.Action{}, err
	}
	return toAction(record)
}

func (a *storeAdapter) Update(ctx context.Context, actionID string, input domain.UpdateInput, now time.Time) (domain.Action, error) {
	if a == nil || a.store == nil {
		return domain.Action{}, domain.ErrStoreNotConfigured
	}
	var patch storage.Patch
	if input.Status != nil {
		status := storage.Status(*input.Status)
		patch.Status = &status
	}
	if input.Metadata != nil {
		metadataJSON, err := encodeMetadata(input.Metadata)
		if err != nil {
			return domain.Action{}, err
		}
		patch.MetadataJSON = &metadataJSON
	}
	record, err := a.store.Update(ctx, actionID, patch, now)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return domain.Action{}, domain.NotFoundError{ActionID: actionID}
		case errors.Is(err, storage.ErrAlreadyClosed):
			return domain.Action{}, domain.ErrActionClosed
		}
		return domain.Action{}, err
	}
	return toAction(record)
}

func (a *storeAdapter) Clear(ctx context.Context) error {
	if a == nil || a.store == nil {
		return domain.ErrStoreNotConfigured
	}
	return a.store.Clear(ctx)
}

func toRecord(action domain.Action) (storage.Record, error) {
	metadataJSON, err := encodeMetadata(action.Metadata)
	if err != nil {
		return storage.Record{}, err
	}
	return storage.Record{
		ID:           action.ID,
		Service:      action.Service,
		State:        action.State,
		Status:       storage.Status(action.Status),
		MetadataJSON: metadataJSON,
		ClosedAt:     action.ClosedAt,
		CreatedAt:    action.CreatedAt,
		UpdatedAt:    action.UpdatedAt,
	}, nil
}

func toAction(record storage.Record) (domain.Action, error) {
	metadata, err := decodeMetadata(record.MetadataJSON)
	if err != nil {
		return domain.Action{}, fmt.Errorf("decode metadata for action %s: %w", record.ID, err)
	}
	return domain.Action{
		ID:        record.ID,
		Service:   record.Service,
		State:     record.State,
		Status:    domain.Status(record.Status),
		Metadata:  metadata,
		ClosedAt:  record.ClosedAt,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}, nil
}

func encodeMetadata(metadata domain.Metadata) (string, error) {
	if metadata == nil {
		return "{}", nil
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	return string(encoded), nil
}

func decodeMetadata(metadataJSON string) (domain.Metadata, error) {
	metadata := domain.Metadata{}
	if metadataJSON == "" {
		return metadata, nil
	}
	if err := json.Unmarshal([]byte(metadataJSON), &metadata); err != nil {
		return nil, err
	}
	return metadata, nil
}
