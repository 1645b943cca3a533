// Package database provides the SQLite connection used as the planner's
// local cache of colo, rack and reservation data.
//
// This package manages:
//   - the connection, with WAL mode and a busy timeout
//   - schema migrations read from an fs.FS (see the migrations package)
//   - transaction and health-check helpers
//
// The remote facility API stays the system of record; deleting the
// database file only costs a re-push of the latest snapshots.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if _, err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with an
// optional matching .down.sql, and each is applied in its own transaction.
package database
