package colo

import (
	"sync"

	"github.com/nerrad567/colo-planner-core/internal/tilespace"
)

// Data wraps a snapshot with lazily computed tile views.
// The snapshot must not be modified after it is wrapped.
type Data struct {
	snap *Snapshot

	once     sync.Once
	byID     map[int64]tilespace.Tile
	rack     []tilespace.Tile
	network  []tilespace.Tile
	server   []tilespace.Tile
	deployed []tilespace.Tile
	reserved []tilespace.Tile
}

// NewData wraps snap.
func NewData(snap *Snapshot) *Data {
	return &Data{snap: snap}
}

// Snapshot returns the wrapped snapshot.
func (d *Data) Snapshot() *Snapshot {
	return d.snap
}

// ColoID returns the colo identifier.
func (d *Data) ColoID() string {
	return d.snap.ColoID
}

// Tiles returns every tile of the colo in snapshot order.
func (d *Data) Tiles() []tilespace.Tile {
	return d.snap.Tiles
}

func (d *Data) build() {
	d.once.Do(func() {
		d.byID = make(map[int64]tilespace.Tile)
		for _, t := range d.snap.Tiles {
			if t.Class.IsRack() {
				d.byID[t.ID] = t
				d.rack = append(d.rack, t)
			}
			switch t.Class {
			case tilespace.ClassNetwork:
				d.network = append(d.network, t)
			case tilespace.ClassServer:
				d.server = append(d.server, t)
				switch t.Status {
				case tilespace.StatusUsed:
					d.deployed = append(d.deployed, t)
				case tilespace.StatusReserved:
					d.reserved = append(d.reserved, t)
				}
			}
		}
	})
}

// Tile looks up a Server or Network tile by ID.
func (d *Data) Tile(id int64) (tilespace.Tile, bool) {
	d.build()
	t, ok := d.byID[id]
	return t, ok
}

// RackTiles returns the Server and Network tiles.
func (d *Data) RackTiles() []tilespace.Tile {
	d.build()
	return d.rack
}

// NetworkDeviceTiles returns the Network tiles.
func (d *Data) NetworkDeviceTiles() []tilespace.Tile {
	d.build()
	return d.network
}

// ServerTiles returns the Server tiles.
func (d *Data) ServerTiles() []tilespace.Tile {
	d.build()
	return d.server
}

// DeployedTiles returns the Server tiles in use.
func (d *Data) DeployedTiles() []tilespace.Tile {
	d.build()
	return d.deployed
}

// ReservedTiles returns the Server tiles held by a reservation.
func (d *Data) ReservedTiles() []tilespace.Tile {
	d.build()
	return d.reserved
}

// Frame returns base with its origin and grid size taken from the snapshot.
// Tile sizes, margins, header and footer come from base.
func (d *Data) Frame(base tilespace.GridFrame) tilespace.GridFrame {
	base.OriginColumn = d.snap.StartX
	base.OriginRow = d.snap.OriginRow()
	base.Columns = d.snap.ColoXSize
	base.Rows = d.snap.ColoYSize
	return base
}

// Stats counts tiles by class and by status.
type Stats struct {
	Tiles    int                      `json:"tiles"`
	ByClass  map[tilespace.Class]int  `json:"byClass"`
	ByStatus map[tilespace.Status]int `json:"byStatus"`
	Brands   map[string]int           `json:"brands"`
}

// Stats summarises the colo's tiles.
func (d *Data) Stats() Stats {
	s := Stats{
		Tiles:    len(d.snap.Tiles),
		ByClass:  make(map[tilespace.Class]int),
		ByStatus: make(map[tilespace.Status]int),
		Brands:   make(map[string]int),
	}
	for _, t := range d.snap.Tiles {
		s.ByClass[t.Class]++
		s.ByStatus[t.Status]++
		if t.PermittedBrand != "" {
			s.Brands[t.PermittedBrand]++
		}
	}
	return s
}
