// Package tilespace converts colocation tile coordinates into pixel geometry.
//
// A colocation floor is a grid of tiles addressed by a two-letter column
// label ("AA", "AB", ... "ZZ") and an integer row. The package provides:
//
//   - the column codec (LabelToIndex, IndexToLabel)
//   - tile and span rectangles for a GridFrame (TileToRect, SpanToRect)
//   - adjacency grouping of tiles into contiguous runs (GroupAdjacent)
//   - background guideline geometry (Guidelines)
//
// Everything here is a pure function over values. Malformed tile data
// degrades to a safe default rather than failing a render; the Strict
// variants exist for callers that prefer to reject bad input.
//
// # Association Direction
//
// A tile whose AssocDirection is Right, Left, Up or Down forms one rack
// footprint together with its neighbour. The Up/Down mapping matches the
// facility API's current data, where "Down" spans into the row above and
// "Up" spans into the row below. Do not flip it here; the data is what is
// swapped.
package tilespace
