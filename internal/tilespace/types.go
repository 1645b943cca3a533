package tilespace

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Class is the equipment class of a tile.
type Class string

// Tile classes reported by the facility API.
const (
	ClassServer  Class = "Server"
	ClassNetwork Class = "Network"
	ClassCold    Class = "Cold"
)

// IsRack reports whether tiles of this class hold rack equipment.
func (c Class) IsRack() bool {
	return c == ClassServer || c == ClassNetwork
}

// Status is the occupancy status of a tile.
type Status string

// Tile statuses.
const (
	StatusAvailable Status = "Available"
	StatusReserved  Status = "Reserved"
	StatusUsed      Status = "Used"
	StatusError     Status = "Error"
)

// Direction names the neighbour a tile spans into.
type Direction string

// Association directions. Any other value is treated as DirectionNone.
const (
	DirectionNone  Direction = "None"
	DirectionRight Direction = "Right"
	DirectionLeft  Direction = "Left"
	DirectionUp    Direction = "Up"
	DirectionDown  Direction = "Down"
)

// Alignment records which neighbour a spanning rectangle consumed.
type Alignment string

// Alignments.
const (
	AlignNone     Alignment = "None"
	AlignNext     Alignment = "Next"
	AlignPrevious Alignment = "Previous"
)

// RowLabel is a tile row as sent by the facility API. The API sends it as
// a string, older snapshots as a number; both decode.
type RowLabel string

// UnmarshalJSON accepts a JSON string or number.
func (r *RowLabel) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RowLabel(strings.TrimSpace(s))
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRow, data)
	}
	*r = RowLabel(data)
	return nil
}

// Int parses the row number.
func (r RowLabel) Int() (int, error) {
	n, err := strconv.Atoi(string(r))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRow, string(r))
	}
	return n, nil
}

// Tile is one floor cell of a colocation.
type Tile struct {
	Name           string    `json:"Name"`
	X              string    `json:"X"`
	Y              RowLabel  `json:"Y"`
	ID             int64     `json:"Id"`
	PermittedBrand string    `json:"PermittedBrand,omitempty"`
	Class          Class     `json:"Class"`
	AssocDirection Direction `json:"AssocDirection"`
	Status         Status    `json:"Status"`
}

// Row returns the tile's row number, or 0 when the label is malformed.
func (t Tile) Row() int {
	n, err := t.Y.Int()
	if err != nil {
		return 0
	}
	return n
}

// Column returns the tile's column ordinal from "AA", or -1 when malformed.
func (t Tile) Column() int {
	return ColumnIndex(t.X)
}

// GridFrame holds the rendering parameters of one view.
type GridFrame struct {
	OriginColumn string  `json:"originColumn"`
	OriginRow    int     `json:"originRow"`
	Columns      int     `json:"columns"`
	Rows         int     `json:"rows"`
	XDelta       float64 `json:"xDelta"`
	YDelta       float64 `json:"yDelta"`
	HeaderHeight float64 `json:"headerHeight"`
	FooterHeight float64 `json:"footerHeight"`
	XMargin      float64 `json:"xMargin"`
	YMargin      float64 `json:"yMargin"`
}

// Default frame parameters used when a view supplies none.
const (
	DefaultXDelta = 30
	DefaultYDelta = 20
	DefaultMargin = 40
)

// DefaultFrame returns a frame for the given origin and grid size using the
// default tile size and margins.
func DefaultFrame(originColumn string, originRow, columns, rows int) GridFrame {
	return GridFrame{
		OriginColumn: originColumn,
		OriginRow:    originRow,
		Columns:      columns,
		Rows:         rows,
		XDelta:       DefaultXDelta,
		YDelta:       DefaultYDelta,
		XMargin:      DefaultMargin,
		YMargin:      DefaultMargin,
	}
}

// Top is the y coordinate of the first grid row.
func (f GridFrame) Top() float64 {
	return f.HeaderHeight + f.YMargin
}

// ViewWidth is the unzoomed pixel width of the whole view.
func (f GridFrame) ViewWidth() float64 {
	return 2*f.XMargin + float64(f.Columns)*f.XDelta
}

// ViewHeight is the unzoomed pixel height of the whole view.
func (f GridFrame) ViewHeight() float64 {
	return f.HeaderHeight + f.FooterHeight + 2*f.YMargin + float64(f.Rows)*f.YDelta
}

// Validate checks the frame for values that make geometry meaningless.
func (f GridFrame) Validate() error {
	var errs []string
	if _, err := parseLabel(f.OriginColumn); err != nil {
		errs = append(errs, "originColumn must be two letters")
	}
	if f.Columns < 0 || f.Rows < 0 {
		errs = append(errs, "columns and rows must not be negative")
	}
	if f.XDelta <= 0 || f.YDelta <= 0 {
		errs = append(errs, "xDelta and yDelta must be positive")
	}
	if f.XMargin < 0 || f.YMargin < 0 || f.HeaderHeight < 0 || f.FooterHeight < 0 {
		errs = append(errs, "margins, header and footer must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidFrame, strings.Join(errs, "; "))
	}
	return nil
}

// Point is a position in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle in pixels. Width and Height may be
// negative for a rectangle dragged up or left; Normalize fixes that.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Normalize returns r with its origin at the top-left corner and a
// non-negative size.
func (r Rect) Normalize() Rect {
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

// Overlaps reports whether r and o share any point, edges included.
func (r Rect) Overlaps(o Rect) bool {
	a, b := r.Normalize(), o.Normalize()
	return !(a.X > b.X+b.Width ||
		a.X+a.Width < b.X ||
		a.Y > b.Y+b.Height ||
		a.Y+a.Height < b.Y)
}

// Contains reports whether p lies in [X, X+Width) × [Y, Y+Height).
func (r Rect) Contains(p Point) bool {
	n := r.Normalize()
	return n.X <= p.X && p.X < n.X+n.Width &&
		n.Y <= p.Y && p.Y < n.Y+n.Height
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Scale returns r with every component divided by factor.
func (r Rect) Scale(factor float64) Rect {
	if factor == 0 {
		return r
	}
	return Rect{X: r.X / factor, Y: r.Y / factor, Width: r.Width / factor, Height: r.Height / factor}
}

// TileRect is the pixel rectangle of one tile footprint.
type TileRect struct {
	Rect
	Tile      Tile      `json:"tile"`
	Alignment Alignment `json:"alignment"`
}

// Span is a maximal run of adjacent tiles along one axis.
type Span struct {
	Start Tile `json:"start"`
	End   Tile `json:"end"`
}

// Len returns the number of tiles the span covers, or 0 for a diagonal span.
func (s Span) Len() int {
	switch {
	case strings.EqualFold(s.Start.X, s.End.X):
		return abs(s.End.Row()-s.Start.Row()) + 1
	case s.Start.Row() == s.End.Row():
		return abs(s.End.Column()-s.Start.Column()) + 1
	default:
		return 0
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
