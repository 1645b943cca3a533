package overlay

import (
	"math"

	"github.com/nerrad567/colo-planner-core/internal/colo"
	"github.com/nerrad567/colo-planner-core/internal/reservation"
	"github.com/nerrad567/colo-planner-core/internal/tilespace"
)

// Sources are the data sets overlays draw from besides the colo itself.
type Sources struct {
	Reservations *reservation.Index
	Racks        *colo.RackIndex
	SKUs         colo.SKUCatalog
	// Families is shared between layouts so brand lookups are memoized
	// once. A nil classifier is replaced with a private one.
	Families *FamilyClassifier
}

// Layout renders one colo. It is not safe for concurrent use.
type Layout struct {
	data    *colo.Data
	frame   tilespace.GridFrame
	src     Sources
	zoom    float64
	visible Flags

	guidelines tilespace.Guidelines
	status     StatusPaths

	coldAisle string
	devices   []tilespace.TileRect
	groups    []PropertyGroup
	demands   *Demands
	power     *PowerOverlay
}

// New renders the background and rack tiles of data. The frame's origin
// and size come from the colo; base supplies tile size and margins.
func New(data *colo.Data, base tilespace.GridFrame, src Sources) *Layout {
	if src.Families == nil {
		src.Families = NewFamilyClassifier()
	}
	frame := data.Frame(base)
	return &Layout{
		data:       data,
		frame:      frame,
		src:        src,
		zoom:       1,
		guidelines: frame.Guidelines(),
		status:     RackStatusPaths(data.Tiles(), frame),
	}
}

// Data returns the colo the layout draws.
func (l *Layout) Data() *colo.Data { return l.data }

// Frame returns the grid frame in use.
func (l *Layout) Frame() tilespace.GridFrame { return l.frame }

// Visible returns the overlays currently shown.
func (l *Layout) Visible() Flags { return l.visible }

// SetOverlays renders overlays that next turns on and drops the ones it
// turns off. Overlays already shown are left as they are.
func (l *Layout) SetOverlays(next Flags) (shown, hidden Flags) {
	next &= All
	shown, hidden = l.visible.Diff(next)
	for _, o := range overlays {
		switch {
		case shown.Has(o):
			l.render(o)
		case hidden.Has(o):
			l.clear(o)
		}
	}
	l.visible = next
	return shown, hidden
}

// SetSources swaps the reservation, rack and SKU data and re-renders the
// visible overlays that depend on it.
func (l *Layout) SetSources(src Sources) {
	if src.Families == nil {
		src.Families = l.src.Families
	}
	l.src = src
	for _, o := range []Flags{PropertyGroups, ReservationDemands, Power} {
		if l.visible.Has(o) {
			l.render(o)
		}
	}
}

// Reservations returns the reservation index in use, which may be nil.
func (l *Layout) Reservations() *reservation.Index { return l.src.Reservations }

func (l *Layout) render(o Flags) {
	switch o {
	case ColdAisle:
		l.coldAisle = ColdAislePath(l.data.Tiles(), l.frame)
	case DeviceTiles:
		l.devices = tilespace.TileRects(l.data.NetworkDeviceTiles(), l.frame)
	case PropertyGroups:
		l.groups = PropertyGroupRects(l.data.Tiles(), l.frame, l.src.Families)
	case ReservationDemands:
		d := DemandRects(l.src.Reservations, l.data, l.frame)
		l.demands = &d
	case Power:
		p := RackPower(l.data, l.frame, PowerSources{
			Racks:        l.src.Racks,
			Reservations: l.src.Reservations,
			SKUs:         l.src.SKUs,
		})
		l.power = &p
	}
}

func (l *Layout) clear(o Flags) {
	switch o {
	case ColdAisle:
		l.coldAisle = ""
	case DeviceTiles:
		l.devices = nil
	case PropertyGroups:
		l.groups = nil
	case ReservationDemands:
		l.demands = nil
	case Power:
		l.power = nil
	}
}

// Power returns the rendered power overlay, if visible.
func (l *Layout) Power() (PowerOverlay, bool) {
	if l.power == nil {
		return PowerOverlay{}, false
	}
	return *l.power, true
}

// Zoom returns the zoom level.
func (l *Layout) Zoom() float64 { return l.zoom }

// SetZoom sets the zoom level. Non-positive values are ignored.
func (l *Layout) SetZoom(z float64) {
	if z > 0 {
		l.zoom = z
	}
}

// ViewSize returns the zoomed view size rounded to two decimals.
func (l *Layout) ViewSize() (width, height float64) {
	return round2(l.frame.ViewWidth() * l.zoom), round2(l.frame.ViewHeight() * l.zoom)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// View is the full render of a layout.
type View struct {
	ColoID         string               `json:"coloId"`
	Frame          tilespace.GridFrame  `json:"frame"`
	Zoom           float64              `json:"zoom"`
	Width          float64              `json:"width"`
	Height         float64              `json:"height"`
	Overlays       Flags                `json:"overlays"`
	Guidelines     tilespace.Guidelines `json:"guidelines"`
	Tiles          StatusPaths          `json:"tiles"`
	ColdAisle      string               `json:"coldAisle,omitempty"`
	DeviceTiles    []tilespace.TileRect `json:"deviceTiles,omitempty"`
	PropertyGroups []PropertyGroup      `json:"propertyGroups,omitempty"`
	Demands        *Demands             `json:"demands,omitempty"`
	Power          *PowerOverlay        `json:"power,omitempty"`
}

// View returns the current render.
func (l *Layout) View() View {
	w, h := l.ViewSize()
	return View{
		ColoID:         l.data.ColoID(),
		Frame:          l.frame,
		Zoom:           l.zoom,
		Width:          w,
		Height:         h,
		Overlays:       l.visible,
		Guidelines:     l.guidelines,
		Tiles:          l.status,
		ColdAisle:      l.coldAisle,
		DeviceTiles:    l.devices,
		PropertyGroups: l.groups,
		Demands:        l.demands,
		Power:          l.power,
	}
}
