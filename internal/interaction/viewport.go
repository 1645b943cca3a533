package interaction

import (
	"fmt"
	"math"

	"github.com/nerrad567/colo-planner-core/internal/tilespace"
)

// DefaultZoomRate is the zoom factor of one zoom step.
const DefaultZoomRate = 1.1

// SelectionState is the phase of a selection gesture.
type SelectionState int

// Selection phases.
const (
	SelectionStarted SelectionState = iota
	SelectionDragging
	SelectionEnded
)

var selectionStateNames = [...]string{"started", "dragging", "ended"}

func (s SelectionState) String() string {
	if s < 0 || int(s) >= len(selectionStateNames) {
		return fmt.Sprintf("SelectionState(%d)", int(s))
	}
	return selectionStateNames[s]
}

// MarshalText encodes the state by name.
func (s SelectionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SelectionInfo is one step of a selection gesture in client space.
type SelectionInfo struct {
	State SelectionState `json:"state"`
	Rect  tilespace.Rect `json:"rect"`
}

// ViewportConfig configures a Viewport.
type ViewportConfig struct {
	// ZoomRate is the factor of one zoom step. Zero means DefaultZoomRate.
	ZoomRate float64
	// SelectionModeEnabled allows selection at all.
	SelectionModeEnabled bool
	// OnSelection receives every selection step.
	OnSelection func(SelectionInfo)
	// OnScroll receives the scroll offset after every panning move.
	OnScroll func(x, y float64)
}

// Viewport hosts the panning and selection trackers of one map view.
// Exactly one tracker is enabled: selection while the view is armed for
// selection and selection is allowed, panning otherwise. A secondary-button
// press can still start a selection while panning.
//
// A Viewport is not safe for concurrent use.
type Viewport struct {
	cfg       ViewportConfig
	panning   EventTracker
	selection EventTracker

	selectionModeEnabled bool
	inSelectionMode      bool
	storedInSelection    bool

	zoom   float64
	scroll tilespace.Point
}

// NewViewport binds both trackers to s using f.
func NewViewport(s Surface, f *TrackerFactory, cfg ViewportConfig) *Viewport {
	if cfg.ZoomRate <= 0 {
		cfg.ZoomRate = DefaultZoomRate
	}
	v := &Viewport{
		cfg:                  cfg,
		selectionModeEnabled: cfg.SelectionModeEnabled,
		zoom:                 1,
	}
	v.panning = f.Panning(s, v.onPan)
	v.selection = f.Selection(s, v)
	v.refresh()
	return v
}

func (v *Viewport) refresh() {
	if v.PanningMode() {
		v.selection.Disable()
		v.panning.Enable()
	} else {
		v.panning.Disable()
		v.selection.Enable()
	}
}

// PanningMode reports whether the panning tracker is the enabled one.
func (v *Viewport) PanningMode() bool {
	return !v.inSelectionMode || !v.selectionModeEnabled
}

// SelectionModeEnabled reports whether selection is allowed.
func (v *Viewport) SelectionModeEnabled() bool { return v.selectionModeEnabled }

// SetSelectionModeEnabled allows or forbids selection.
func (v *Viewport) SetSelectionModeEnabled(enabled bool) {
	v.selectionModeEnabled = enabled
	v.refresh()
}

// InSelectionMode reports whether the view is armed for selection.
func (v *Viewport) InSelectionMode() bool { return v.inSelectionMode }

// ToggleSelectionMode arms or disarms selection.
func (v *Viewport) ToggleSelectionMode() {
	v.inSelectionMode = !v.inSelectionMode
	v.refresh()
}

// ShouldActivate implements SelectCallback.
func (v *Viewport) ShouldActivate() bool {
	return v.selectionModeEnabled
}

// OnSelectStart implements SelectCallback. An auto-activated gesture arms
// selection until it ends.
func (v *Viewport) OnSelectStart(r tilespace.Rect, autoActivated bool) {
	if autoActivated {
		v.storedInSelection = v.inSelectionMode
		v.inSelectionMode = true
	}
	v.emit(SelectionInfo{State: SelectionStarted, Rect: r})
}

// OnSelecting implements SelectCallback.
func (v *Viewport) OnSelecting(r tilespace.Rect, _ bool) {
	v.emit(SelectionInfo{State: SelectionDragging, Rect: r})
}

// OnSelectEnd implements SelectCallback.
func (v *Viewport) OnSelectEnd(r tilespace.Rect, autoActivated bool) {
	if autoActivated {
		v.inSelectionMode = v.storedInSelection
	}
	v.emit(SelectionInfo{State: SelectionEnded, Rect: r})
}

func (v *Viewport) emit(info SelectionInfo) {
	if v.cfg.OnSelection != nil {
		v.cfg.OnSelection(info)
	}
}

func (v *Viewport) onPan(dx, dy float64) {
	v.scroll.X = math.Max(0, v.scroll.X-dx)
	v.scroll.Y = math.Max(0, v.scroll.Y-dy)
	if v.cfg.OnScroll != nil {
		v.cfg.OnScroll(v.scroll.X, v.scroll.Y)
	}
}

// Scroll returns the scroll offset. Offsets never go below zero.
func (v *Viewport) Scroll() tilespace.Point { return v.scroll }

// SetScroll moves the view, clamping at zero.
func (v *Viewport) SetScroll(p tilespace.Point) {
	v.scroll = tilespace.Point{X: math.Max(0, p.X), Y: math.Max(0, p.Y)}
}

// Zoom returns the zoom level.
func (v *Viewport) Zoom() float64 { return v.zoom }

// ZoomIn multiplies the zoom by the zoom rate, rounded to two decimals.
func (v *Viewport) ZoomIn() float64 {
	v.zoom = math.Round(v.zoom*v.cfg.ZoomRate*100) / 100
	return v.zoom
}

// ZoomOut divides the zoom by the zoom rate, rounded to two decimals.
func (v *Viewport) ZoomOut() float64 {
	v.zoom = math.Round(v.zoom/v.cfg.ZoomRate*100) / 100
	return v.zoom
}

// Close disposes both trackers. A gesture in flight ends at (0, 0).
func (v *Viewport) Close() {
	v.panning.Dispose()
	v.selection.Dispose()
}
