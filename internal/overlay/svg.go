package overlay

import (
	"fmt"
	"html"
	"io"
	"strings"

	humanize "github.com/dustin/go-humanize"

	"github.com/nerrad567/colo-planner-core/internal/tilespace"
)

const svgStyle = `.guidelines{fill:none;stroke:#d0d0d0;stroke-width:1}
.axis-label{font:10px sans-serif;fill:#606060}
.tile-available{fill:#e8f5e9;stroke:#66bb6a}
.tile-reserved{fill:#fff8e1;stroke:#ffa000}
.tile-used{fill:#e3f2fd;stroke:#1e88e5}
.tile-error{fill:#ffebee;stroke:#e53935}
.cold-aisle{fill:#b3e5fc;opacity:.6}
.device-tile{fill:none;stroke:#6a1b9a;stroke-width:2}
.property-group{fill-opacity:.25;stroke-width:2}
.demand-preliminary{fill:none;stroke:#ff6f00;stroke-dasharray:4 2;stroke-width:2}
.demand-final{fill:none;stroke:#2e7d32;stroke-width:2}
.power{font:9px sans-serif;fill:#212121}
.power-unknown{font:9px sans-serif;fill:#9e9e9e}`

// WriteSVG writes the current view as an SVG document sized to the zoomed
// view with a viewBox covering the unzoomed one.
func (l *Layout) WriteSVG(w io.Writer) error {
	v := l.View()
	n := tilespace.FormatNumber

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		n(v.Width), n(v.Height), n(l.frame.ViewWidth()), n(l.frame.ViewHeight()))
	fmt.Fprintf(&b, "  <style>%s</style>\n", svgStyle)

	writePath(&b, "guidelines", v.Guidelines.Path)
	l.writeAxisLabels(&b, v.Guidelines)

	writePath(&b, "tile-available", v.Tiles.Available)
	writePath(&b, "tile-reserved", v.Tiles.Reserved)
	writePath(&b, "tile-used", v.Tiles.Used)
	writePath(&b, "tile-error", v.Tiles.Error)

	writePath(&b, "cold-aisle", v.ColdAisle)
	for _, r := range v.DeviceTiles {
		writeRect(&b, "device-tile", r.Rect, "")
	}
	for _, g := range v.PropertyGroups {
		writeRect(&b, "property-group "+g.CSSClass, g.Rect, g.Label)
	}
	if v.Demands != nil {
		for _, d := range v.Demands.Preliminary {
			for _, r := range d.Rects {
				writeRect(&b, "demand-preliminary", r, d.OrderID)
			}
		}
		for _, d := range v.Demands.Final {
			for _, r := range d.Rects {
				writeRect(&b, "demand-final", r, d.OrderID)
			}
		}
	}
	if v.Power != nil {
		writePower(&b, v.Power.Deployed)
		writePower(&b, v.Power.Reserved)
	}

	b.WriteString("</svg>\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func (l *Layout) writeAxisLabels(b *strings.Builder, g tilespace.Guidelines) {
	n := tilespace.FormatNumber
	top := l.frame.Top() - 3
	bottom := g.BottomBand + 12
	for _, lbl := range g.ColumnLabels {
		fmt.Fprintf(b, `  <text class="axis-label" x="%s" y="%s" text-anchor="middle">%s</text>`+"\n",
			n(lbl.Pos), n(top), html.EscapeString(lbl.Text))
		fmt.Fprintf(b, `  <text class="axis-label" x="%s" y="%s" text-anchor="middle">%s</text>`+"\n",
			n(lbl.Pos), n(bottom), html.EscapeString(lbl.Text))
	}
	left := l.frame.XMargin - 3
	right := g.RightBand + 3
	for _, lbl := range g.RowLabels {
		fmt.Fprintf(b, `  <text class="axis-label" x="%s" y="%s" text-anchor="end">%s</text>`+"\n",
			n(left), n(lbl.Pos), html.EscapeString(lbl.Text))
		fmt.Fprintf(b, `  <text class="axis-label" x="%s" y="%s" text-anchor="start">%s</text>`+"\n",
			n(right), n(lbl.Pos), html.EscapeString(lbl.Text))
	}
}

func writePath(b *strings.Builder, class, d string) {
	if d == "" {
		return
	}
	fmt.Fprintf(b, `  <path class="%s" d="%s"/>`+"\n", class, strings.TrimSpace(d))
}

func writeRect(b *strings.Builder, class string, r tilespace.Rect, title string) {
	n := tilespace.FormatNumber
	if title == "" {
		fmt.Fprintf(b, `  <rect class="%s" x="%s" y="%s" width="%s" height="%s"/>`+"\n",
			class, n(r.X), n(r.Y), n(r.Width), n(r.Height))
		return
	}
	fmt.Fprintf(b, `  <rect class="%s" x="%s" y="%s" width="%s" height="%s"><title>%s</title></rect>`+"\n",
		class, n(r.X), n(r.Y), n(r.Width), n(r.Height), html.EscapeString(title))
}

func writePower(b *strings.Builder, rects []PowerRect) {
	n := tilespace.FormatNumber
	for _, r := range rects {
		class, text := "power-unknown", "n/a"
		if r.Known {
			class, text = "power", FormatWatts(r.Watts)
		}
		fmt.Fprintf(b, `  <text class="%s" x="%s" y="%s" text-anchor="middle">%s</text>`+"\n",
			class, n(r.X+r.Width/2), n(r.Y+r.Height/2+3), text)
	}
}

// FormatWatts renders a power draw with an SI prefix, e.g. "4.2 kW".
func FormatWatts(w float64) string {
	return humanize.SIWithDigits(w, 1, "W")
}
