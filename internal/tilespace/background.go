package tilespace

import (
	"fmt"
	"strconv"
	"strings"
)

// AxisLabel is one grid axis caption. Pos is the x coordinate for column
// labels and the y coordinate for row labels.
type AxisLabel struct {
	Pos  float64 `json:"pos"`
	Text string  `json:"text"`
}

// Guidelines is the background grid of a frame: one line per cell
// boundary plus axis captions and the band positions they are drawn at.
type Guidelines struct {
	Path         string      `json:"path"`
	ColumnLabels []AxisLabel `json:"columnLabels"`
	RowLabels    []AxisLabel `json:"rowLabels"`
	TopBand      float64     `json:"topBand"`
	BottomBand   float64     `json:"bottomBand"`
	LeftBand     float64     `json:"leftBand"`
	RightBand    float64     `json:"rightBand"`
}

// Guidelines computes the background grid for f. Columns that run past
// "ZZ" are captioned with their numeric offset.
func (f GridFrame) Guidelines() Guidelines {
	top := f.Top()
	bottom := top + float64(f.Rows)*f.YDelta
	left := f.XMargin
	right := left + float64(f.Columns)*f.XDelta

	var path strings.Builder
	g := Guidelines{
		ColumnLabels: make([]AxisLabel, 0, f.Columns),
		RowLabels:    make([]AxisLabel, 0, f.Rows),
		TopBand:      0,
		BottomBand:   bottom,
		LeftBand:     0,
		RightBand:    right,
	}

	for i := 0; i <= f.Columns; i++ {
		x := FormatNumber(f.XDelta*float64(i) + left)
		fmt.Fprintf(&path, "M %s %s L %s %s", x, FormatNumber(top), x, FormatNumber(bottom))
		if i == f.Columns {
			break
		}
		text, err := IndexToLabel(f.OriginColumn, i)
		if err != nil {
			text = strconv.Itoa(i)
		}
		g.ColumnLabels = append(g.ColumnLabels, AxisLabel{Pos: f.XDelta*(float64(i)+0.5) + left, Text: text})
	}

	for i := 0; i <= f.Rows; i++ {
		y := FormatNumber(f.YDelta*float64(i) + top)
		fmt.Fprintf(&path, "M %s %s L %s %s", FormatNumber(left), y, FormatNumber(right), y)
		if i == f.Rows {
			break
		}
		g.RowLabels = append(g.RowLabels, AxisLabel{
			Pos:  f.YDelta*(float64(i)+0.7) + top,
			Text: strconv.Itoa(f.OriginRow + i),
		})
	}

	g.Path = path.String()
	return g
}
