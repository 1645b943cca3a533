package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository persists group reservations per data center.
type Repository interface {
	Replace(ctx context.Context, dataCenterID string, groups []GroupReservation) error
	Load(ctx context.Context, dataCenterID string) ([]GroupReservation, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed reservation repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Replace stores groups as the full reservation set of a data center.
func (r *SQLiteRepository) Replace(ctx context.Context, dataCenterID string, groups []GroupReservation) error {
	if groups == nil {
		groups = []GroupReservation{}
	}
	body, err := json.MarshalToString(groups)
	if err != nil {
		return fmt.Errorf("encoding reservations for %s: %w", dataCenterID, err)
	}

	const query = `INSERT INTO group_reservations (datacenter_id, body, group_count, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (datacenter_id) DO UPDATE SET
			body = excluded.body,
			group_count = excluded.group_count,
			updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, dataCenterID, body, len(groups),
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("storing reservations for %s: %w", dataCenterID, err)
	}
	return nil
}

// Load returns the stored reservation set of a data center.
func (r *SQLiteRepository) Load(ctx context.Context, dataCenterID string) ([]GroupReservation, error) {
	var body string
	err := r.db.QueryRowContext(ctx,
		`SELECT body FROM group_reservations WHERE datacenter_id = ?`, dataCenterID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrDataCenterNotFound, dataCenterID)
	}
	if err != nil {
		return nil, fmt.Errorf("reading reservations for %s: %w", dataCenterID, err)
	}

	var groups []GroupReservation
	if err := json.UnmarshalFromString(body, &groups); err != nil {
		return nil, fmt.Errorf("decoding reservations for %s: %w", dataCenterID, err)
	}
	return groups, nil
}
