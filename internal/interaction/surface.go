package interaction

import "sync"

// Handler receives a device event and reports whether it consumed it,
// suppressing the client's default action.
type Handler func(DeviceEvent) bool

// Surface is the event source trackers bind to. Bind functions return an
// unbind function that is safe to call more than once.
type Surface interface {
	// Bind listens on the map element.
	Bind(kind EventKind, h Handler) (unbind func())
	// BindDocument listens on the whole document.
	BindDocument(kind EventKind, h Handler) (unbind func())
	// Capture routes every event of a pointer to the element until Release.
	Capture(pointerID int64)
	Release(pointerID int64)
}

type listener struct {
	id int
	h  Handler
}

// Dispatcher is an in-memory Surface. Events are fed with Dispatch.
// Handlers run on the dispatching goroutine and may bind or unbind
// listeners while they run.
type Dispatcher struct {
	mu       sync.Mutex
	nextID   int
	element  map[EventKind][]listener
	document map[EventKind][]listener
	captured map[int64]bool
}

// NewDispatcher creates a dispatcher with no listeners.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		element:  make(map[EventKind][]listener),
		document: make(map[EventKind][]listener),
		captured: make(map[int64]bool),
	}
}

// Bind implements Surface.
func (d *Dispatcher) Bind(kind EventKind, h Handler) func() {
	return d.add(d.element, kind, h)
}

// BindDocument implements Surface.
func (d *Dispatcher) BindDocument(kind EventKind, h Handler) func() {
	return d.add(d.document, kind, h)
}

func (d *Dispatcher) add(set map[EventKind][]listener, kind EventKind, h Handler) func() {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	set[kind] = append(set[kind], listener{id: id, h: h})
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			ls := set[kind]
			for i, l := range ls {
				if l.id == id {
					set[kind] = append(ls[:i:i], ls[i+1:]...)
					break
				}
			}
		})
	}
}

// Capture implements Surface.
func (d *Dispatcher) Capture(pointerID int64) {
	d.mu.Lock()
	d.captured[pointerID] = true
	d.mu.Unlock()
}

// Release implements Surface.
func (d *Dispatcher) Release(pointerID int64) {
	d.mu.Lock()
	delete(d.captured, pointerID)
	d.mu.Unlock()
}

// Captured reports whether a pointer is captured.
func (d *Dispatcher) Captured(pointerID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.captured[pointerID]
}

// Listeners returns the number of element and document listeners for kind.
func (d *Dispatcher) Listeners(kind EventKind) (element, document int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.element[kind]), len(d.document[kind])
}

// Dispatch delivers ev to element listeners, unless it happened outside
// the element on an uncaptured pointer, then to document listeners. It
// reports whether any handler consumed the event.
func (d *Dispatcher) Dispatch(ev DeviceEvent) bool {
	d.mu.Lock()
	toElement := !ev.Outside || d.captured[ev.PointerID]
	var targets []Handler
	if toElement {
		for _, l := range d.element[ev.Kind] {
			targets = append(targets, l.h)
		}
	}
	for _, l := range d.document[ev.Kind] {
		targets = append(targets, l.h)
	}
	d.mu.Unlock()

	consumed := false
	for _, h := range targets {
		if h(ev) {
			consumed = true
		}
	}
	return consumed
}
