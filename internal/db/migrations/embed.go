// Package migrations holds the relay schema as goose migrations.
package migrations

import "embed"

// FS is passed to pg.Migrate.
//
//go:embed *.sql
var FS embed.FS
