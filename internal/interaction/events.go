package interaction

import "github.com/nerrad567/colo-planner-core/internal/tilespace"

// EventKind names a device event.
type EventKind string

// Event kinds.
const (
	KindDown        EventKind = "down"
	KindMove        EventKind = "move"
	KindUp          EventKind = "up"
	KindContextMenu EventKind = "contextmenu"
)

// PointerType names the device behind an event.
type PointerType string

// Pointer types.
const (
	PointerMouse PointerType = "mouse"
	PointerPen   PointerType = "pen"
	PointerTouch PointerType = "touch"
)

// Mouse buttons. For a pen, ButtonSecondary is the tip with the barrel
// button held.
const (
	ButtonPrimary   = 0
	ButtonSecondary = 2
)

// DeviceEvent is one normalized pointer or mouse event in client space.
type DeviceEvent struct {
	Kind        EventKind   `json:"kind"`
	PointerID   int64       `json:"pointerId"`
	PointerType PointerType `json:"pointerType,omitempty"`
	Button      int         `json:"button"`
	ClientX     float64     `json:"clientX"`
	ClientY     float64     `json:"clientY"`
	// Outside marks an event that happened off the map element. Only
	// document listeners and captured pointers see it.
	Outside bool `json:"outside,omitempty"`
}

// Pointer returns the pointer type, treating an absent one as a mouse.
func (e DeviceEvent) Pointer() PointerType {
	if e.PointerType == "" {
		return PointerMouse
	}
	return e.PointerType
}

// Point returns the event position.
func (e DeviceEvent) Point() tilespace.Point {
	return tilespace.Point{X: e.ClientX, Y: e.ClientY}
}

// Valid reports whether the event kind is known.
func (e DeviceEvent) Valid() bool {
	switch e.Kind {
	case KindDown, KindMove, KindUp, KindContextMenu:
		return true
	}
	return false
}

// isMouseOrPen reports whether the event comes from a device with buttons.
func (e DeviceEvent) isMouseOrPen() bool {
	p := e.Pointer()
	return p == PointerMouse || p == PointerPen
}
