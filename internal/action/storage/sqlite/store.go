// Package sqlite provides SQLite-backed persistence for action records.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/tracklane/actionledger/internal/action/storage"
	"github.com/tracklane/actionledger/internal/action/storage/sqlite/migrations"
	sqlitemigrate "github.com/tracklane/actionledger/internal/platform/storage/sqlitemigrate"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for action records.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens an action SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := store.runMigrations(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) runMigrations() error {
	return sqlitemigrate.ApplyMigrations(s.sqlDB, migrations.FS)
}

// Create persists one action row.
func (s *Store) Create(ctx context.Context, record storage.Record) (storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return storage.Record{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Record{}, fmt.Errorf("storage is not configured")
	}
	normalized, err := normalizeRecord(record)
	if err != nil {
		return storage.Record{}, err
	}

	var closedAt sql.NullInt64
	if normalized.ClosedAt != nil {
		closedAt = sql.NullInt64{Int64: toMillis(*normalized.ClosedAt), Valid: true}
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO actions (id, service, state, status, metadata_json, closed_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
		normalized.ID,
		normalized.Service,
		normalized.State,
		normalized.Status,
		normalized.MetadataJSON,
		closedAt,
		toMillis(normalized.CreatedAt),
		toMillis(normalized.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.Record{}, storage.ErrConflict
		}
		return storage.Record{}, fmt.Errorf("insert action: %w", err)
	}
	return normalized, nil
}

// Find lists action rows matching the filter, ordered by update time with
// insertion-order tie-breaks.
func (s *Store) Find(ctx context.Context, filter storage.Filter) ([]storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	query := `
SELECT id, service, state, status, metadata_json, closed_at, created_at, updated_at
FROM actions
`
	var conditions []string
	var args []any
	if service := strings.TrimSpace(filter.Service); service != "" {
		conditions = append(conditions, "service = ?")
		args = append(args, service)
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		conditions = append(conditions, "status IN ("+strings.Join(placeholders, ", ")+")")
	}
	if len(conditions) > 0 {
		query += "WHERE " + strings.Join(conditions, " AND ") + "\n"
	}
	if filter.Sort == storage.SortAsc {
		query += "ORDER BY updated_at ASC, rowid ASC"
	} else {
		query += "ORDER BY updated_at DESC, rowid ASC"
	}
	if filter.Limit > 0 {
		query += "\nLIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	var records []storage.Record
	for rows.Next() {
		record, scanErr := scanRecord(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan action row: %w", scanErr)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate action rows: %w", err)
	}
	return records, nil
}

// FindByID loads one action row by ID.
func (s *Store) FindByID(ctx context.Context, actionID string) (storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return storage.Record{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Record{}, fmt.Errorf("storage is not configured")
	}
	actionID = strings.TrimSpace(actionID)
	if actionID == "" {
		return storage.Record{}, fmt.Errorf("action id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, service, state, status, metadata_json, closed_at, created_at, updated_at
FROM actions
WHERE id = ?
`, actionID)
	record, err := scanRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Record{}, storage.ErrNotFound
		}
		return storage.Record{}, fmt.Errorf("get action by id: %w", err)
	}
	return record, nil
}

// Update applies a status and/or metadata patch to one action row. The
// write is conditional on the stored status still being active: a closed
// row reports ErrAlreadyClosed, an absent row ErrNotFound. A terminal
// status in the patch also records closed_at at the same instant as
// updated_at.
func (s *Store) Update(ctx context.Context, actionID string, patch storage.Patch, now time.Time) (storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return storage.Record{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Record{}, fmt.Errorf("storage is not configured")
	}
	actionID = strings.TrimSpace(actionID)
	if actionID == "" {
		return storage.Record{}, fmt.Errorf("action id is required")
	}
	if now.IsZero() {
		return storage.Record{}, fmt.Errorf("now is required")
	}

	nowMillis := toMillis(now)
	sets := []string{"updated_at = ?"}
	args := []any{nowMillis}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
		if patch.Status.Terminal() {
			sets = append(sets, "closed_at = ?")
			args = append(args, nowMillis)
		}
	}
	if patch.MetadataJSON != nil {
		sets = append(sets, "metadata_json = ?")
		args = append(args, *patch.MetadataJSON)
	}
	args = append(args, actionID, storage.StatusActive)

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE actions
SET `+strings.Join(sets, ", ")+`
WHERE id = ? AND status = ?
`, args...)
	if err != nil {
		return storage.Record{}, fmt.Errorf("update action: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storage.Record{}, fmt.Errorf("update action rows affected: %w", err)
	}
	if affected == 0 {
		// Either the row is gone or it closed under us.
		if _, lookupErr := s.FindByID(ctx, actionID); lookupErr != nil {
			if errors.Is(lookupErr, storage.ErrNotFound) {
				return storage.Record{}, storage.ErrNotFound
			}
			return storage.Record{}, lookupErr
		}
		return storage.Record{}, storage.ErrAlreadyClosed
	}
	return s.FindByID(ctx, actionID)
}

// Clear removes every action row. Administrative reset only.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if _, err := s.sqlDB.ExecContext(ctx, "DELETE FROM actions"); err != nil {
		return fmt.Errorf("clear actions: %w", err)
	}
	return nil
}

type scanner func(dest ...any) error

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

func scanRecord(scan scanner) (storage.Record, error) {
	var record storage.Record
	var closedAt sql.NullInt64
	var createdAt int64
	var updatedAt int64
	if err := scan(
		&record.ID,
		&record.Service,
		&record.State,
		&record.Status,
		&record.MetadataJSON,
		&closedAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.Record{}, err
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	if closedAt.Valid {
		value := fromMillis(closedAt.Int64)
		record.ClosedAt = &value
	}
	return record, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "unique constraint failed")
}
