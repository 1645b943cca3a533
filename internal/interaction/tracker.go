package interaction

// EventTracker feeds a Behavior from a Surface.
type EventTracker interface {
	Enable()
	Disable()
	Enabled() bool
	// Dispose ends any gesture in flight with an up event at (0, 0),
	// unbinds every listener and disposes the behavior. It is idempotent.
	Dispose()
}

type trackerBase struct {
	behavior Behavior
	enabled  bool
	disposed bool
}

func (t *trackerBase) Enable()       { t.enabled = true }
func (t *trackerBase) Disable()      { t.enabled = false }
func (t *trackerBase) Enabled() bool { return t.enabled }

// shouldHandleDown lets an auto-activating down through even when the
// tracker is disabled.
func (t *trackerBase) shouldHandleDown(ev DeviceEvent) bool {
	if t.disposed {
		return false
	}
	if t.behavior.ShouldAutoActivate(ev) {
		return true
	}
	return t.enabled && !t.behavior.ShouldIgnoreDevice(ev)
}

// PointerTracker follows a single captured pointer.
type PointerTracker struct {
	trackerBase
	surface    Surface
	active     bool
	pointerID  int64
	unbindDown func()
	unbindMove func()
	unbindUp   func()
}

// NewPointerTracker binds b to pointer events on s. The tracker starts
// enabled.
func NewPointerTracker(s Surface, b Behavior) *PointerTracker {
	t := &PointerTracker{trackerBase: trackerBase{behavior: b, enabled: true}, surface: s}
	t.unbindDown = s.Bind(KindDown, t.onDown)
	return t
}

func (t *PointerTracker) onDown(ev DeviceEvent) bool {
	if t.active || !t.shouldHandleDown(ev) {
		return false
	}
	t.active = true
	t.pointerID = ev.PointerID
	t.unbindMove = t.surface.Bind(KindMove, t.onMove)
	t.unbindUp = t.surface.Bind(KindUp, t.onUp)
	t.surface.Capture(ev.PointerID)
	t.behavior.OnDown(ev.Point())
	return true
}

func (t *PointerTracker) onMove(ev DeviceEvent) bool {
	if !t.active || ev.PointerID != t.pointerID {
		return false
	}
	t.behavior.OnMove(ev.Point())
	return true
}

func (t *PointerTracker) onUp(ev DeviceEvent) bool {
	if !t.active || ev.PointerID != t.pointerID {
		return false
	}
	t.behavior.OnUp(ev.Point())
	t.release()
	return true
}

func (t *PointerTracker) release() {
	t.unbindMove()
	t.unbindUp()
	t.surface.Release(t.pointerID)
	t.active = false
}

// Dispose implements EventTracker.
func (t *PointerTracker) Dispose() {
	if t.disposed {
		return
	}
	if t.active {
		t.behavior.OnUp(zeroPoint)
		t.release()
	}
	t.unbindDown()
	t.behavior.Dispose()
	t.disposed = true
}

// MouseTracker follows the held mouse. Once a down lands on the element,
// moves and the release are taken from the whole document.
type MouseTracker struct {
	trackerBase
	surface    Surface
	held       bool
	unbindDown func()
	unbindMove func()
	unbindUp   func()
}

// NewMouseTracker binds b to mouse events on s. The tracker starts enabled.
func NewMouseTracker(s Surface, b Behavior) *MouseTracker {
	t := &MouseTracker{trackerBase: trackerBase{behavior: b, enabled: true}, surface: s}
	t.unbindDown = s.Bind(KindDown, t.onDown)
	return t
}

func (t *MouseTracker) onDown(ev DeviceEvent) bool {
	if t.held || !t.shouldHandleDown(ev) {
		return false
	}
	t.behavior.OnDown(ev.Point())
	t.unbindMove = t.surface.BindDocument(KindMove, t.onMove)
	t.unbindUp = t.surface.BindDocument(KindUp, t.onUp)
	t.held = true
	return true
}

func (t *MouseTracker) onMove(ev DeviceEvent) bool {
	if !t.held {
		return false
	}
	t.behavior.OnMove(ev.Point())
	return true
}

func (t *MouseTracker) onUp(ev DeviceEvent) bool {
	if !t.held {
		return false
	}
	t.behavior.OnUp(ev.Point())
	t.release()
	return true
}

func (t *MouseTracker) release() {
	t.unbindMove()
	t.unbindUp()
	t.held = false
}

// Dispose implements EventTracker.
func (t *MouseTracker) Dispose() {
	if t.disposed {
		return
	}
	if t.held {
		t.behavior.OnUp(zeroPoint)
		t.release()
	}
	t.unbindDown()
	t.behavior.Dispose()
	t.disposed = true
}

// Capabilities describes the client's input model. It is detected once
// by the caller.
type Capabilities struct {
	PointerEvents bool `json:"pointerEvents" yaml:"pointer_events"`
}

// TrackerFactory builds trackers suited to the client's capabilities.
type TrackerFactory struct {
	caps Capabilities
}

// NewTrackerFactory creates a factory for caps.
func NewTrackerFactory(caps Capabilities) *TrackerFactory {
	return &TrackerFactory{caps: caps}
}

// New binds b to s with a PointerTracker when pointer events are
// available and a MouseTracker otherwise.
func (f *TrackerFactory) New(s Surface, b Behavior) EventTracker {
	if f.caps.PointerEvents {
		return NewPointerTracker(s, b)
	}
	return NewMouseTracker(s, b)
}

// Panning builds a panning tracker.
func (f *TrackerFactory) Panning(s Surface, scroll ScrollFunc) EventTracker {
	return f.New(s, NewPanningBehavior(scroll))
}

// Selection builds a selection tracker.
func (f *TrackerFactory) Selection(s Surface, cb SelectCallback) EventTracker {
	return f.New(s, NewSelectionBehavior(s, cb))
}
