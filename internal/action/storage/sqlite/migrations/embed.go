package migrations

import "embed"

// FS contains embedded SQLite migrations for action storage.
//
//go:embed *.sql
var FS embed.FS
