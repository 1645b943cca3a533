package database

import (
	"context"
	"testing"
	"testing/fstest"
)

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"20260101_000000_widgets.up.sql":   {Data: []byte("CREATE TABLE widgets (id INTEGER PRIMARY KEY);")},
		"20260101_000000_widgets.down.sql": {Data: []byte("DROP TABLE widgets;")},
		"20260102_000000_gadgets.up.sql":   {Data: []byte("CREATE TABLE gadgets (id INTEGER PRIMARY KEY);")},
		"README.md":                        {Data: []byte("not a migration")},
	}
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	if err != nil {
		t.Fatalf("checking table %s: %v", name, err)
	}
	return n == 1
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		file    string
		version string
		name    string
		up      bool
		ok      bool
	}{
		{"20261016_090000_colo_cache.up.sql", "20261016_090000", "colo_cache", true, true},
		{"20261016_090000_colo_cache.down.sql", "20261016_090000", "colo_cache", false, true},
		{"20261016_090000.up.sql", "20261016_090000", "", true, true},
		{"colo_cache.up.sql", "", "", false, false},
		{"20261016_090000_x.sql", "", "", false, false},
		{"embed.go", "", "", false, false},
	}

	for _, tt := range tests {
		version, name, up, ok := parseMigrationFilename(tt.file)
		if version != tt.version || name != tt.name || up != tt.up || ok != tt.ok {
			t.Errorf("parseMigrationFilename(%q) = %q, %q, %v, %v, want %q, %q, %v, %v",
				tt.file, version, name, up, ok, tt.version, tt.name, tt.up, tt.ok)
		}
	}
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := LoadMigrations(testMigrations())
	if err != nil {
		t.Fatalf("LoadMigrations() error = %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("len(migrations) = %d, want 2", len(migrations))
	}
	if migrations[0].Name != "widgets" || migrations[1].Name != "gadgets" {
		t.Errorf("order = %s, %s, want widgets, gadgets", migrations[0].Name, migrations[1].Name)
	}
	if migrations[0].DownSQL == "" {
		t.Error("widgets DownSQL is empty")
	}
}

func TestLoadMigrations_MissingUp(t *testing.T) {
	fsys := fstest.MapFS{
		"20260101_000000_orphan.down.sql": {Data: []byte("SELECT 1;")},
	}
	if _, err := LoadMigrations(fsys); err == nil {
		t.Error("LoadMigrations() error = nil, want error for missing up file")
	}
}

func TestMigrate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	fsys := testMigrations()

	n, err := db.Migrate(ctx, fsys)
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Migrate() applied %d, want 2", n)
	}
	if !tableExists(t, db, "widgets") || !tableExists(t, db, "gadgets") {
		t.Error("migrated tables missing")
	}

	n, err = db.Migrate(ctx, fsys)
	if err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
	if n != 0 {
		t.Errorf("second Migrate() applied %d, want 0", n)
	}

	applied, pending, err := db.MigrationStatus(ctx, fsys)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 2 || len(pending) != 0 {
		t.Errorf("status = %d applied, %d pending, want 2 and 0", len(applied), len(pending))
	}
}

func TestMigrate_FailureKeepsEarlier(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	fsys := fstest.MapFS{
		"20260101_000000_good.up.sql": {Data: []byte("CREATE TABLE good (id INTEGER);")},
		"20260102_000000_bad.up.sql":  {Data: []byte("CREATE TABLE;")},
	}

	n, err := db.Migrate(ctx, fsys)
	if err == nil {
		t.Fatal("Migrate() error = nil, want error")
	}
	if n != 1 {
		t.Errorf("Migrate() applied %d before failing, want 1", n)
	}
	if !tableExists(t, db, "good") {
		t.Error("table good was rolled back")
	}
}

func TestRollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	fsys := fstest.MapFS{
		"20260101_000000_widgets.up.sql":   {Data: []byte("CREATE TABLE widgets (id INTEGER PRIMARY KEY);")},
		"20260101_000000_widgets.down.sql": {Data: []byte("DROP TABLE widgets;")},
	}

	if version, err := db.Rollback(ctx, fsys); err != nil || version != "" {
		t.Fatalf("Rollback() on empty = %q, %v, want empty, nil", version, err)
	}

	if _, err := db.Migrate(ctx, fsys); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	version, err := db.Rollback(ctx, fsys)
	if err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}
	if version != "20260101_000000" {
		t.Errorf("Rollback() = %q, want 20260101_000000", version)
	}
	if tableExists(t, db, "widgets") {
		t.Error("widgets still exists after rollback")
	}
}
