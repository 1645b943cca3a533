// Package migrations embeds the SQL schema migrations into the binary.
//
// Files follow YYYYMMDD_HHMMSS_name.up.sql / .down.sql and are applied in
// version order by database.DB.Migrate.
package migrations

import "embed"

// FS holds every migration file at its root.
//
//go:embed *.sql
var FS embed.FS
