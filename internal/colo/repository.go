package colo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SnapshotInfo describes a stored snapshot without its tiles.
type SnapshotInfo struct {
	ColoID      string    `json:"coloId"`
	Fingerprint string    `json:"fingerprint"`
	TileCount   int       `json:"tileCount"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Repository persists the local copy of colo data.
type Repository interface {
	SaveSnapshot(ctx context.Context, snap *Snapshot) (fingerprint string, changed bool, err error)
	GetSnapshot(ctx context.Context, coloID string) (*Snapshot, string, error)
	ListSnapshots(ctx context.Context) ([]SnapshotInfo, error)
	DeleteSnapshot(ctx context.Context, coloID string) error

	ReplaceRacks(ctx context.Context, dataCenterID string, racks []Rack) error
	ListRacks(ctx context.Context, dataCenterID string) ([]Rack, error)

	ReplaceSKUs(ctx context.Context, skus []SKU) error
	ListSKUs(ctx context.Context) ([]SKU, error)

	ReplaceCatalog(ctx context.Context, dcs []DataCenter) error
	LoadCatalog(ctx context.Context) (*Catalog, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed colo repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// SaveSnapshot stores snap, replacing any previous snapshot of the same
// colo. changed is false when the stored fingerprint already matched.
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, snap *Snapshot) (string, bool, error) {
	if err := snap.Validate(); err != nil {
		return "", false, err
	}
	fp := snap.Fingerprint()

	var existing string
	err := r.db.QueryRowContext(ctx,
		`SELECT fingerprint FROM colo_snapshots WHERE colo_id = ?`, snap.ColoID).Scan(&existing)
	switch {
	case err == nil && existing == fp:
		return fp, false, nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return "", false, fmt.Errorf("reading snapshot %s: %w", snap.ColoID, err)
	}

	body, err := snap.Encode()
	if err != nil {
		return "", false, fmt.Errorf("encoding snapshot %s: %w", snap.ColoID, err)
	}

	const query = `INSERT INTO colo_snapshots (colo_id, fingerprint, tile_count, body, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (colo_id) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			tile_count = excluded.tile_count,
			body = excluded.body,
			updated_at = excluded.updated_at`
	_, err = r.db.ExecContext(ctx, query,
		snap.ColoID, fp, len(snap.Tiles), string(body), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", false, fmt.Errorf("storing snapshot %s: %w", snap.ColoID, err)
	}
	return fp, true, nil
}

// GetSnapshot returns the stored snapshot and its fingerprint.
func (r *SQLiteRepository) GetSnapshot(ctx context.Context, coloID string) (*Snapshot, string, error) {
	var fp, body string
	err := r.db.QueryRowContext(ctx,
		`SELECT fingerprint, body FROM colo_snapshots WHERE colo_id = ?`, coloID).Scan(&fp, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("%w: %s", ErrColoNotFound, coloID)
	}
	if err != nil {
		return nil, "", fmt.Errorf("reading snapshot %s: %w", coloID, err)
	}

	var snap Snapshot
	if err := json.UnmarshalFromString(body, &snap); err != nil {
		return nil, "", fmt.Errorf("decoding snapshot %s: %w", coloID, err)
	}
	return &snap, fp, nil
}

// ListSnapshots returns every stored snapshot header ordered by colo ID.
func (r *SQLiteRepository) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT colo_id, fingerprint, tile_count, updated_at FROM colo_snapshots ORDER BY colo_id`)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var infos []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		var updated string
		if err := rows.Scan(&info.ColoID, &info.Fingerprint, &info.TileCount, &updated); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		info.UpdatedAt, _ = time.Parse(time.RFC3339, updated) //nolint:errcheck // written by SaveSnapshot
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}
	return infos, nil
}

// DeleteSnapshot removes a stored snapshot.
func (r *SQLiteRepository) DeleteSnapshot(ctx context.Context, coloID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM colo_snapshots WHERE colo_id = ?`, coloID)
	if err != nil {
		return fmt.Errorf("deleting snapshot %s: %w", coloID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 { //nolint:errcheck // sqlite always reports rows affected
		return fmt.Errorf("%w: %s", ErrColoNotFound, coloID)
	}
	return nil
}

// ReplaceRacks swaps the racks stored for a data center in one transaction.
func (r *SQLiteRepository) ReplaceRacks(ctx context.Context, dataCenterID string, racks []Rack) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting rack transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM racks WHERE datacenter_key = ?`, dataCenterID); err != nil {
		return fmt.Errorf("clearing racks for %s: %w", dataCenterID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO racks
		(datacenter_key, rack_id, name, rack_size, tile, colocation_id, datacenter_id, power_consumed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing rack insert: %w", err)
	}
	defer stmt.Close()

	for _, rk := range racks {
		if rk.Tile == "" {
			return fmt.Errorf("%w: rack %d has no tile", ErrInvalidRack, rk.RackID)
		}
		if _, err := stmt.ExecContext(ctx, dataCenterID, rk.RackID, rk.Name, rk.RackSize,
			rk.Tile, rk.ColocationID, rk.DatacenterID, rk.PowerConsumed); err != nil {
			return fmt.Errorf("inserting rack %d: %w", rk.RackID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing racks: %w", err)
	}
	return nil
}

// ListRacks returns the racks stored for a data center.
func (r *SQLiteRepository) ListRacks(ctx context.Context, dataCenterID string) ([]Rack, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT rack_id, name, rack_size, tile, colocation_id,
		datacenter_id, power_consumed FROM racks WHERE datacenter_key = ? ORDER BY rack_id`, dataCenterID)
	if err != nil {
		return nil, fmt.Errorf("listing racks: %w", err)
	}
	defer rows.Close()

	var racks []Rack
	for rows.Next() {
		var rk Rack
		if err := rows.Scan(&rk.RackID, &rk.Name, &rk.RackSize, &rk.Tile,
			&rk.ColocationID, &rk.DatacenterID, &rk.PowerConsumed); err != nil {
			return nil, fmt.Errorf("scanning rack row: %w", err)
		}
		racks = append(racks, rk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating racks: %w", err)
	}
	return racks, nil
}

// ReplaceSKUs upserts SKU power ratings.
func (r *SQLiteRepository) ReplaceSKUs(ctx context.Context, skus []SKU) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting sku transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, s := range skus {
		if _, err := tx.ExecContext(ctx, `INSERT INTO skus (msf_id, power_w) VALUES (?, ?)
			ON CONFLICT (msf_id) DO UPDATE SET power_w = excluded.power_w`,
			s.MsfID, s.SkuPowerAt100pctLoadW); err != nil {
			return fmt.Errorf("storing sku %d: %w", s.MsfID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing skus: %w", err)
	}
	return nil
}

// ListSKUs returns every stored SKU.
func (r *SQLiteRepository) ListSKUs(ctx context.Context) ([]SKU, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT msf_id, power_w FROM skus ORDER BY msf_id`)
	if err != nil {
		return nil, fmt.Errorf("listing skus: %w", err)
	}
	defer rows.Close()

	var skus []SKU
	for rows.Next() {
		var s SKU
		if err := rows.Scan(&s.MsfID, &s.SkuPowerAt100pctLoadW); err != nil {
			return nil, fmt.Errorf("scanning sku row: %w", err)
		}
		skus = append(skus, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating skus: %w", err)
	}
	return skus, nil
}

// ReplaceCatalog swaps the whole data-center directory.
func (r *SQLiteRepository) ReplaceCatalog(ctx context.Context, dcs []DataCenter) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting catalog transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM colocations`); err != nil {
		return fmt.Errorf("clearing colocations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM datacenters`); err != nil {
		return fmt.Errorf("clearing data centers: %w", err)
	}

	for i, dc := range dcs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO datacenters (id, name, sort_order) VALUES (?, ?, ?)`, dc.ID, dc.Name, i); err != nil {
			return fmt.Errorf("inserting data center %s: %w", dc.ID, err)
		}
		for j, c := range dc.Colocations {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO colocations (id, datacenter_id, name, sort_order) VALUES (?, ?, ?, ?)`,
				c.ID, dc.ID, c.Name, j); err != nil {
				return fmt.Errorf("inserting colocation %s: %w", c.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing catalog: %w", err)
	}
	return nil
}

// LoadCatalog reads the data-center directory in stored order.
func (r *SQLiteRepository) LoadCatalog(ctx context.Context) (*Catalog, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT d.id, d.name, c.id, c.name
		FROM datacenters d LEFT JOIN colocations c ON c.datacenter_id = d.id
		ORDER BY d.sort_order, c.sort_order`)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	defer rows.Close()

	var dcs []DataCenter
	for rows.Next() {
		var dcID, dcName string
		var coloID, coloName sql.NullString
		if err := rows.Scan(&dcID, &dcName, &coloID, &coloName); err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		if len(dcs) == 0 || dcs[len(dcs)-1].ID != dcID {
			dcs = append(dcs, DataCenter{ID: dcID, Name: dcName})
		}
		if coloID.Valid {
			last := &dcs[len(dcs)-1]
			last.Colocations = append(last.Colocations, Colocation{ID: coloID.String, Name: coloName.String})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating catalog: %w", err)
	}
	return NewCatalog(dcs), nil
}
