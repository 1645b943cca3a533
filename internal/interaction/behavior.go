package interaction

import (
	"math"

	"github.com/nerrad567/colo-planner-core/internal/tilespace"
)

// Behavior interprets the gesture a tracker delivers.
type Behavior interface {
	OnDown(p tilespace.Point)
	OnMove(p tilespace.Point)
	OnUp(p tilespace.Point)
	// ShouldAutoActivate reports whether a down event should start a
	// gesture even while the tracker is disabled.
	ShouldAutoActivate(ev DeviceEvent) bool
	// ShouldIgnoreDevice reports whether an enabled tracker should skip
	// a down event.
	ShouldIgnoreDevice(ev DeviceEvent) bool
	Dispose()
}

// zeroPoint is where a disposed tracker ends an unfinished gesture.
var zeroPoint tilespace.Point

// ScrollFunc receives the pointer movement since the previous event.
type ScrollFunc func(dx, dy float64)

// PanningBehavior turns a drag with the primary button into scroll deltas.
type PanningBehavior struct {
	scroll ScrollFunc
	last   tilespace.Point
}

// NewPanningBehavior creates a panning behavior. scroll may be nil.
func NewPanningBehavior(scroll ScrollFunc) *PanningBehavior {
	return &PanningBehavior{scroll: scroll}
}

// OnDown implements Behavior.
func (b *PanningBehavior) OnDown(p tilespace.Point) { b.last = p }

// OnUp implements Behavior.
func (b *PanningBehavior) OnUp(tilespace.Point) {}

// OnMove implements Behavior.
func (b *PanningBehavior) OnMove(p tilespace.Point) {
	dx, dy := p.X-b.last.X, p.Y-b.last.Y
	b.last = p
	if b.scroll != nil {
		b.scroll(dx, dy)
	}
}

// ShouldAutoActivate implements Behavior. Panning never starts itself.
func (b *PanningBehavior) ShouldAutoActivate(DeviceEvent) bool { return false }

// ShouldIgnoreDevice implements Behavior. Mouse and pen events count only
// with the primary button.
func (b *PanningBehavior) ShouldIgnoreDevice(ev DeviceEvent) bool {
	return ev.isMouseOrPen() && ev.Button != ButtonPrimary
}

// Dispose implements Behavior.
func (b *PanningBehavior) Dispose() {}

// SelectCallback is the host of a selection gesture.
type SelectCallback interface {
	// ShouldActivate reports whether a secondary-button press may start a
	// selection on its own.
	ShouldActivate() bool
	OnSelectStart(r tilespace.Rect, autoActivated bool)
	OnSelecting(r tilespace.Rect, autoActivated bool)
	OnSelectEnd(r tilespace.Rect, autoActivated bool)
}

// SelectionBehavior turns a drag into a normalized selection rectangle.
// It consumes context menu events on the surface while it lives.
type SelectionBehavior struct {
	cb            SelectCallback
	down          tilespace.Point
	dragging      bool
	autoActivated bool
	unbindMenu    func()
}

// NewSelectionBehavior creates a selection behavior bound to s.
func NewSelectionBehavior(s Surface, cb SelectCallback) *SelectionBehavior {
	b := &SelectionBehavior{cb: cb}
	b.unbindMenu = s.Bind(KindContextMenu, func(DeviceEvent) bool { return true })
	return b
}

// OnDown implements Behavior.
func (b *SelectionBehavior) OnDown(p tilespace.Point) {
	b.down = p
	b.dragging = false
	b.cb.OnSelectStart(tilespace.Rect{X: p.X, Y: p.Y}, b.autoActivated)
}

// OnMove implements Behavior.
func (b *SelectionBehavior) OnMove(p tilespace.Point) {
	b.dragging = true
	b.cb.OnSelecting(b.rectTo(p), b.autoActivated)
}

// OnUp implements Behavior. A press without movement ends with the empty
// rectangle at the down point.
func (b *SelectionBehavior) OnUp(p tilespace.Point) {
	r := tilespace.Rect{X: b.down.X, Y: b.down.Y}
	if b.dragging {
		r = b.rectTo(p)
	}
	b.cb.OnSelectEnd(r, b.autoActivated)
}

func (b *SelectionBehavior) rectTo(p tilespace.Point) tilespace.Rect {
	return tilespace.Rect{
		X:      math.Min(p.X, b.down.X),
		Y:      math.Min(p.Y, b.down.Y),
		Width:  math.Abs(p.X - b.down.X),
		Height: math.Abs(p.Y - b.down.Y),
	}
}

// ShouldAutoActivate implements Behavior. A secondary-button press from a
// mouse or pen activates selection when the host allows it. Every down
// event re-evaluates the flag.
func (b *SelectionBehavior) ShouldAutoActivate(ev DeviceEvent) bool {
	b.autoActivated = ev.isMouseOrPen() && ev.Button == ButtonSecondary && b.cb.ShouldActivate()
	return b.autoActivated
}

// ShouldIgnoreDevice implements Behavior. Selection accepts every device.
func (b *SelectionBehavior) ShouldIgnoreDevice(DeviceEvent) bool { return false }

// Dispose implements Behavior.
func (b *SelectionBehavior) Dispose() {
	if b.unbindMenu != nil {
		b.unbindMenu()
	}
}
