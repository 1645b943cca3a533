package tilespace

import (
	"cmp"
	"slices"
)

// Axis selects the direction along which GroupAdjacent joins tiles.
type Axis int

const (
	// AxisRow joins tiles that share a row and have consecutive columns.
	// It is used for vertically associated tiles, which line up in
	// horizontal rows.
	AxisRow Axis = iota

	// AxisColumn joins tiles that share a column and have consecutive rows.
	// It is used for horizontally associated tiles, which line up in
	// vertical rows.
	AxisColumn
)

// String returns "row" or "column".
func (a Axis) String() string {
	if a == AxisColumn {
		return "column"
	}
	return "row"
}

// ParseAxis is the inverse of Axis.String. Unknown names yield AxisRow
// and false.
func ParseAxis(s string) (Axis, bool) {
	switch s {
	case "row":
		return AxisRow, true
	case "column":
		return AxisColumn, true
	}
	return AxisRow, false
}

// IsHorizontal reports whether a tile's footprint spans columns.
// Right and Left span columns and Up and Down span rows. A tile without a
// recognised direction counts as horizontal.
func IsHorizontal(d Direction) bool {
	switch d {
	case DirectionUp, DirectionDown:
		return false
	default:
		return true
	}
}

// AxisFor returns the grouping axis for a tile's direction.
func AxisFor(d Direction) Axis {
	if IsHorizontal(d) {
		return AxisColumn
	}
	return AxisRow
}

// GroupAdjacent partitions tiles into maximal runs of adjacent tiles
// along axis. A new run starts whenever the shared coordinate changes or
// the running coordinate is not exactly one more than the previous tile's.
// Output depends only on the set of tiles, never on input order. The input
// slice is not modified.
func GroupAdjacent(tiles []Tile, axis Axis) []Span {
	if len(tiles) == 0 {
		return nil
	}

	type keyed struct {
		shared, running int
		tile            Tile
	}
	sorted := make([]keyed, len(tiles))
	for i, t := range tiles {
		if axis == AxisRow {
			sorted[i] = keyed{shared: t.Row(), running: t.Column(), tile: t}
		} else {
			sorted[i] = keyed{shared: t.Column(), running: t.Row(), tile: t}
		}
	}
	slices.SortFunc(sorted, func(a, b keyed) int {
		return cmp.Or(
			cmp.Compare(a.shared, b.shared),
			cmp.Compare(a.running, b.running),
			cmp.Compare(a.tile.ID, b.tile.ID),
		)
	})

	spans := make([]Span, 0, len(sorted))
	start, prev := sorted[0], sorted[0]
	for _, k := range sorted[1:] {
		if k.shared != prev.shared || k.running != prev.running+1 {
			spans = append(spans, Span{Start: start.tile, End: prev.tile})
			start = k
		}
		prev = k
	}
	return append(spans, Span{Start: start.tile, End: prev.tile})
}

// RowSets splits a tile set by association direction so each part can be
// grouped along its own axis.
type RowSets struct {
	// InHorizontalRows holds vertically associated tiles.
	InHorizontalRows []Tile
	// InVerticalRows holds horizontally associated tiles.
	InVerticalRows []Tile
}

// Add files t under the row set matching its direction.
func (s *RowSets) Add(t Tile) {
	if IsHorizontal(t.AssocDirection) {
		s.InVerticalRows = append(s.InVerticalRows, t)
		return
	}
	s.InHorizontalRows = append(s.InHorizontalRows, t)
}

// Len returns the number of tiles in both sets.
func (s *RowSets) Len() int {
	return len(s.InHorizontalRows) + len(s.InVerticalRows)
}

// Spans groups both sets: horizontal-row spans first, then vertical-row spans.
func (s *RowSets) Spans() []Span {
	spans := GroupAdjacent(s.InHorizontalRows, AxisRow)
	return append(spans, GroupAdjacent(s.InVerticalRows, AxisColumn)...)
}

// GroupConnected classifies tiles by direction and groups each class along
// its axis.
func GroupConnected(tiles []Tile) []Span {
	var sets RowSets
	for _, t := range tiles {
		sets.Add(t)
	}
	return sets.Spans()
}
