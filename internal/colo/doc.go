// Package colo holds the colocation data the planner renders: the tile
// snapshot of one colocation room, the racks deployed on its tiles, the
// SKU power catalog and the data-center catalog.
//
// The facility API owns all of this data. The planner keeps the last copy it
// received in SQLite (see SQLiteRepository) so a restart can serve layouts
// before the next push arrives.
//
// Data wraps a Snapshot and computes filtered tile views on first use.
// The views are computed once and are safe to read from many goroutines.
package colo
