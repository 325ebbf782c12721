package sqlitemigrate

import (
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "migrate.db")
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB
}

func TestApplyMigrationsRunsOnce(t *testing.T) {
	sqlDB := openTestDB(t)
	migrationFS := fstest.MapFS{
		"0001_create.sql": &fstest.MapFile{Data: []byte(`
-- +migrate Up
CREATE TABLE widgets (id TEXT PRIMARY KEY);
-- +migrate Down
DROP TABLE widgets;
`)},
	}

	if err := ApplyMigrations(sqlDB, migrationFS); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	// Second run must be a no-op.
	if err := ApplyMigrations(sqlDB, migrationFS); err != nil {
		t.Fatalf("re-apply migrations: %v", err)
	}

	var count int
	if err := sqlDB.QueryRow("SELECT COUNT(1) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count applied migrations: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 applied migration, got %d", count)
	}
	if _, err := sqlDB.Exec("INSERT INTO widgets (id) VALUES ('w-1')"); err != nil {
		t.Fatalf("expected widgets table to exist: %v", err)
	}
}

func TestApplyMigrationsLexicalOrder(t *testing.T) {
	sqlDB := openTestDB(t)
	migrationFS := fstest.MapFS{
		"0002_add_column.sql": &fstest.MapFile{Data: []byte(`
-- +migrate Up
ALTER TABLE widgets ADD COLUMN label TEXT NOT NULL DEFAULT '';
`)},
		"0001_create.sql": &fstest.MapFile{Data: []byte(`
-- +migrate Up
CREATE TABLE widgets (id TEXT PRIMARY KEY);
`)},
	}

	if err := ApplyMigrations(sqlDB, migrationFS); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := sqlDB.Exec("INSERT INTO widgets (id, label) VALUES ('w-1', 'one')"); err != nil {
		t.Fatalf("expected migrated schema: %v", err)
	}
}

func TestApplyMigrationsRequiresDB(t *testing.T) {
	if err := ApplyMigrations(nil, fstest.MapFS{}); err == nil {
		t.Fatal("expected nil db error")
	}
}

func TestExtractUpMigration(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE t (id TEXT);\n-- +migrate Down\nDROP TABLE t;\n"
	up := ExtractUpMigration(content)
	if up != "\nCREATE TABLE t (id TEXT);\n" {
		t.Fatalf("unexpected up section %q", up)
	}

	plain := "CREATE TABLE t (id TEXT);"
	if ExtractUpMigration(plain) != plain {
		t.Fatal("expected unmarked content to pass through")
	}
}
