package colo

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/nerrad567/colo-planner-core/internal/infrastructure/database"
	"github.com/nerrad567/colo-planner-core/migrations"
)

// setupTestDB opens an in-memory database with the full schema applied.
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

func TestSQLiteRepository_Snapshots(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()
	snap := loadTestSnapshot(t)

	fp, changed, err := repo.SaveSnapshot(ctx, snap)
	if err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	if !changed || fp != snap.Fingerprint() {
		t.Errorf("SaveSnapshot() = %q, %v, want %q, true", fp, changed, snap.Fingerprint())
	}

	if _, changed, err = repo.SaveSnapshot(ctx, snap); err != nil || changed {
		t.Errorf("second SaveSnapshot() changed = %v, err = %v, want false, nil", changed, err)
	}

	got, gotFP, err := repo.GetSnapshot(ctx, "201")
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if gotFP != fp || len(got.Tiles) != len(snap.Tiles) {
		t.Errorf("GetSnapshot() = %d tiles, fp %q, want %d tiles, fp %q", len(got.Tiles), gotFP, len(snap.Tiles), fp)
	}

	infos, err := repo.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	if len(infos) != 1 || infos[0].TileCount != 10 {
		t.Errorf("ListSnapshots() = %+v", infos)
	}

	if err := repo.DeleteSnapshot(ctx, "201"); err != nil {
		t.Fatalf("DeleteSnapshot() error = %v", err)
	}
	if _, _, err := repo.GetSnapshot(ctx, "201"); !errors.Is(err, ErrColoNotFound) {
		t.Errorf("GetSnapshot() after delete error = %v, want ErrColoNotFound", err)
	}
	if err := repo.DeleteSnapshot(ctx, "201"); !errors.Is(err, ErrColoNotFound) {
		t.Errorf("second DeleteSnapshot() error = %v, want ErrColoNotFound", err)
	}
}

func TestSQLiteRepository_SaveInvalid(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	_, _, err := repo.SaveSnapshot(context.Background(), &Snapshot{StartX: "AA", StartY: "0"})
	if !errors.Is(err, ErrInvalidSnapshot) {
		t.Errorf("SaveSnapshot() error = %v, want ErrInvalidSnapshot", err)
	}
}

func TestSQLiteRepository_Racks(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	racks := []Rack{
		{Name: "r1", RackID: 1, RackSize: 52, Tile: "AA01", ColocationID: 201, DatacenterID: 7, PowerConsumed: 4200},
		{Name: "r2", RackID: 2, RackSize: 52, Tile: "AA02", ColocationID: 201, DatacenterID: 7, PowerConsumed: 3900.5},
	}
	if err := repo.ReplaceRacks(ctx, "dc-1", racks); err != nil {
		t.Fatalf("ReplaceRacks() error = %v", err)
	}
	if err := repo.ReplaceRacks(ctx, "dc-1", racks[1:]); err != nil {
		t.Fatalf("second ReplaceRacks() error = %v", err)
	}

	got, err := repo.ListRacks(ctx, "dc-1")
	if err != nil {
		t.Fatalf("ListRacks() error = %v", err)
	}
	if len(got) != 1 || got[0] != racks[1] {
		t.Errorf("ListRacks() = %+v, want [%+v]", got, racks[1])
	}

	err = repo.ReplaceRacks(ctx, "dc-1", []Rack{{RackID: 9}})
	if !errors.Is(err, ErrInvalidRack) {
		t.Errorf("ReplaceRacks() without tile error = %v, want ErrInvalidRack", err)
	}
	if got, _ := repo.ListRacks(ctx, "dc-1"); len(got) != 1 {
		t.Errorf("failed replace changed racks: %+v", got)
	}
}

func TestSQLiteRepository_SKUs(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.ReplaceSKUs(ctx, []SKU{{MsfID: 2, SkuPowerAt100pctLoadW: 8000}, {MsfID: 1, SkuPowerAt100pctLoadW: 5000}}); err != nil {
		t.Fatalf("ReplaceSKUs() error = %v", err)
	}
	if err := repo.ReplaceSKUs(ctx, []SKU{{MsfID: 2, SkuPowerAt100pctLoadW: 9000}}); err != nil {
		t.Fatalf("ReplaceSKUs() update error = %v", err)
	}

	skus, err := repo.ListSKUs(ctx)
	if err != nil {
		t.Fatalf("ListSKUs() error = %v", err)
	}
	want := []SKU{{MsfID: 1, SkuPowerAt100pctLoadW: 5000}, {MsfID: 2, SkuPowerAt100pctLoadW: 9000}}
	if len(skus) != 2 || skus[0] != want[0] || skus[1] != want[1] {
		t.Errorf("ListSKUs() = %+v, want %+v", skus, want)
	}
}

func TestSQLiteRepository_Catalog(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	want := testCatalog()
	if err := repo.ReplaceCatalog(ctx, want.DataCenters); err != nil {
		t.Fatalf("ReplaceCatalog() error = %v", err)
	}

	got, err := repo.LoadCatalog(ctx)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if len(got.DataCenters) != 2 {
		t.Fatalf("len(DataCenters) = %d, want 2", len(got.DataCenters))
	}
	if got.DataCenters[0].ID != "dc-1" || len(got.DataCenters[0].Colocations) != 2 {
		t.Errorf("DataCenters[0] = %+v", got.DataCenters[0])
	}
	if dc, ok := got.DataCenterForColo("305"); !ok || dc.Name != "Dublin" {
		t.Errorf("DataCenterForColo(305) = %+v, %v", dc, ok)
	}

	if err := repo.ReplaceCatalog(ctx, nil); err != nil {
		t.Fatalf("ReplaceCatalog(nil) error = %v", err)
	}
	got, err = repo.LoadCatalog(ctx)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if len(got.DataCenters) != 0 {
		t.Errorf("catalog not cleared: %+v", got.DataCenters)
	}
}
