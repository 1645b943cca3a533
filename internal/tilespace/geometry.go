package tilespace

import (
	"fmt"
	"strconv"
	"strings"
)

// footprint is a tile's direction-adjusted grid cell and size in cells.
type footprint struct {
	col, row   int
	cols, rows int
	align      Alignment
}

// footprintOf resolves the starting cell and extent of a tile's rack
// footprint relative to the frame origin. Errors report malformed labels;
// the returned footprint is still usable with the bad axis at zero.
func footprintOf(t Tile, f GridFrame) (footprint, error) {
	var firstErr error
	col, err := LabelToIndex(f.OriginColumn, t.X)
	if err != nil {
		col, firstErr = 0, err
	}
	row, err := t.Y.Int()
	if err != nil {
		if firstErr == nil {
			firstErr = err
		}
		row = f.OriginRow
	}
	row -= f.OriginRow

	fp := footprint{col: col, row: row, cols: 1, rows: 1, align: AlignNone}
	switch t.AssocDirection {
	case DirectionRight:
		fp.cols, fp.align = 2, AlignNext
	case DirectionLeft:
		fp.col = shiftColumn(f.OriginColumn, col, -1)
		fp.cols, fp.align = 2, AlignPrevious
	case DirectionDown:
		// Down spans into the row above.
		fp.row--
		fp.rows, fp.align = 2, AlignNext
	case DirectionUp:
		fp.rows, fp.align = 2, AlignPrevious
	}
	return fp, firstErr
}

// shiftColumn moves an origin-relative column index by delta through the
// label codec, so a shift off the AA..ZZ range keeps plain arithmetic.
func shiftColumn(origin string, col, delta int) int {
	label, err := IndexToLabel(origin, col+delta)
	if err != nil {
		return col + delta
	}
	idx, err := LabelToIndex(origin, label)
	if err != nil {
		return col + delta
	}
	return idx
}

func (fp footprint) rect(f GridFrame) Rect {
	return Rect{
		X:      float64(fp.col)*f.XDelta + f.XMargin,
		Y:      float64(fp.row)*f.YDelta + f.Top(),
		Width:  float64(fp.cols) * f.XDelta,
		Height: float64(fp.rows) * f.YDelta,
	}
}

// TileToRect returns the pixel rectangle of a tile's footprint.
// A malformed label places the tile at the frame origin on that axis.
func TileToRect(t Tile, f GridFrame) TileRect {
	fp, _ := footprintOf(t, f)
	return TileRect{Rect: fp.rect(f), Tile: t, Alignment: fp.align}
}

// TileToRectStrict is TileToRect but reports malformed labels.
func TileToRectStrict(t Tile, f GridFrame) (TileRect, error) {
	fp, err := footprintOf(t, f)
	if err != nil {
		return TileRect{}, fmt.Errorf("tile %d: %w", t.ID, err)
	}
	return TileRect{Rect: fp.rect(f), Tile: t, Alignment: fp.align}, nil
}

// TileRects maps TileToRect over tiles, preserving order.
func TileRects(tiles []Tile, f GridFrame) []TileRect {
	rects := make([]TileRect, 0, len(tiles))
	for _, t := range tiles {
		rects = append(rects, TileToRect(t, f))
	}
	return rects
}

// SpanToRect returns one rectangle covering every tile of a span.
//
// The rectangle starts at the start tile's footprint. A span running down
// one column is (endRow - startRow + 1) cells tall; a span running along
// one row is (endCol - startCol + 1) cells wide. The other dimension keeps
// the start tile's footprint size.
func SpanToRect(s Span, f GridFrame) Rect {
	r, _ := spanRect(s, f)
	return r
}

// SpanToRectStrict is SpanToRect but reports diagonal spans and malformed labels.
func SpanToRectStrict(s Span, f GridFrame) (Rect, error) {
	return spanRect(s, f)
}

func spanRect(s Span, f GridFrame) (Rect, error) {
	fp, err := footprintOf(s.Start, f)
	r := fp.rect(f)
	switch {
	case strings.EqualFold(s.Start.X, s.End.X):
		r.Height = float64(s.End.Row()-s.Start.Row()+1) * f.YDelta
	case s.Start.Row() == s.End.Row():
		r.Width = float64(s.End.Column()-s.Start.Column()+1) * f.XDelta
	default:
		if err == nil {
			err = fmt.Errorf("%w: tiles %d and %d", ErrDiagonalSpan, s.Start.ID, s.End.ID)
		}
	}
	return r, err
}

// SpanRects maps SpanToRect over spans, preserving order.
func SpanRects(spans []Span, f GridFrame) []Rect {
	rects := make([]Rect, 0, len(spans))
	for _, s := range spans {
		rects = append(rects, SpanToRect(s, f))
	}
	return rects
}

// PathData renders rectangles as one SVG path string, one closed
// subpath per rectangle.
func PathData[R interface{ Bounds() Rect }](rects []R) string {
	var b strings.Builder
	for _, r := range rects {
		writeRectPath(&b, r.Bounds())
	}
	return b.String()
}

// Bounds returns r itself.
func (r Rect) Bounds() Rect { return r }

func writeRectPath(b *strings.Builder, r Rect) {
	x2, y2 := r.X+r.Width, r.Y+r.Height
	fmt.Fprintf(b, "M %s %s L %s %s L %s %s L %s %s Z ",
		FormatNumber(r.X), FormatNumber(r.Y),
		FormatNumber(x2), FormatNumber(r.Y),
		FormatNumber(x2), FormatNumber(y2),
		FormatNumber(r.X), FormatNumber(y2))
}

// FormatNumber formats a pixel value with the shortest representation,
// so 70 renders as "70" and 12.5 as "12.5".
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CellRect returns the single cell a tile sits in, ignoring its direction.
func CellRect(t Tile, f GridFrame) Rect {
	t.AssocDirection = DirectionNone
	fp, _ := footprintOf(t, f)
	return fp.rect(f)
}
