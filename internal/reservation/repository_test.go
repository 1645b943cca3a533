package reservation

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/nerrad567/colo-planner-core/internal/infrastructure/database"
	"github.com/nerrad567/colo-planner-core/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{Path: database.MemoryPath})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if _, err := db.Migrate(ctx, migrations.FS); err != nil {
		db.Close() //nolint:errcheck // test cleanup
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close() //nolint:errcheck // test cleanup
	})
	return db.DB
}

func TestSQLiteRepository_ReplaceLoad(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	if _, err := repo.Load(ctx, "dc1"); !errors.Is(err, ErrDataCenterNotFound) {
		t.Errorf("Load() before Replace error = %v, want ErrDataCenterNotFound", err)
	}

	groups := loadTestGroups(t)
	if err := repo.Replace(ctx, "dc1", groups); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	got, err := repo.Load(ctx, "dc1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 2 || got[0].Orders[0].RackReservations[1].TileID != 1004 {
		t.Errorf("Load() = %+v", got)
	}

	if err := repo.Replace(ctx, "dc1", nil); err != nil {
		t.Fatalf("Replace(nil) error = %v", err)
	}
	got, err = repo.Load(ctx, "dc1")
	if err != nil || len(got) != 0 {
		t.Errorf("Load() after clearing = %v, %v, want empty", got, err)
	}
}
