package selection

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/nerrad567/colo-planner-core/internal/colo"
	"github.com/nerrad567/colo-planner-core/internal/interaction"
	"github.com/nerrad567/colo-planner-core/internal/reservation"
	"github.com/nerrad567/colo-planner-core/internal/tilespace"
)

// Logger is the logging interface used by the selector.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Host places the map on screen and receives committed selections.
type Host interface {
	// ClientOrigin is the client position of the map's top-left corner.
	ClientOrigin() tilespace.Point
	Zoom() float64
	SelectionCommitted(tiles []tilespace.TileRect)
}

// SelectableTile is a rack tile that a drag may select.
type SelectableTile struct {
	tilespace.TileRect
	Selectable bool `json:"selectable"`
	Selected   bool `json:"selected"`
}

// RenderedTile is a tile assigned to the active demand group.
type RenderedTile struct {
	tilespace.TileRect
	OrderID string `json:"orderId"`
	// Freed marks an originally assigned tile whose assignment was removed.
	Freed bool `json:"freed"`
}

// Selector is the selection state of one map view. It is not safe for
// concurrent use.
type Selector struct {
	data         *colo.Data
	frame        tilespace.GridFrame
	host         Host
	reservations *reservation.Index
	logger       Logger

	rackRects  []tilespace.TileRect
	selectable map[int64]*SelectableTile

	activeGroup string
	original    map[int64]bool
	rendered    []RenderedTile

	selRect   *tilespace.Rect
	inGesture bool
	ignore    bool
	pending   []func()
	disposed  bool
}

// New creates a selector over the rack tiles of data. reservations may be
// nil, in which case reserved tiles are never selectable.
func New(data *colo.Data, frame tilespace.GridFrame, reservations *reservation.Index, host Host) *Selector {
	s := &Selector{
		data:         data,
		frame:        frame,
		host:         host,
		reservations: reservations,
		logger:       noopLogger{},
		rackRects:    tilespace.TileRects(data.RackTiles(), frame),
		original:     make(map[int64]bool),
	}
	s.scan()
	return s
}

// SetLogger sets the logger.
func (s *Selector) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger{}
	}
	s.logger = l
}

// apply runs fn now, or after the gesture in progress ends.
func (s *Selector) apply(fn func()) {
	if s.disposed {
		return
	}
	if s.inGesture {
		s.pending = append(s.pending, fn)
		return
	}
	fn()
}

// Pending returns the number of context changes waiting for the gesture
// in progress to end.
func (s *Selector) Pending() int { return len(s.pending) }

// SetReservations replaces the reservation data and rescans.
func (s *Selector) SetReservations(idx *reservation.Index) {
	s.apply(func() {
		s.reservations = idx
		s.scan()
	})
}

// SetActiveDemandGroup renders the tiles assigned to a group reservation
// and rescans. Tiles in other colos are remembered as originally assigned
// but not rendered. An unknown group leaves nothing rendered.
func (s *Selector) SetActiveDemandGroup(groupID string) {
	s.apply(func() {
		s.resetRendering()
		s.activeGroup = groupID
		assignments, ok := s.reservations.Assignments(groupID)
		if !ok {
			s.logger.Debug("demand group not found", "group_id", groupID)
		}
		for _, a := range assignments {
			s.original[a.TileID] = true
			t, ok := s.data.Tile(a.TileID)
			if !ok {
				continue
			}
			s.rendered = append(s.rendered, RenderedTile{
				TileRect: tilespace.TileToRect(t, s.frame),
				OrderID:  a.OrderID,
			})
		}
		s.scan()
	})
}

// ResetActiveDemand clears the active group and rescans.
func (s *Selector) ResetActiveDemand() {
	s.apply(func() {
		s.resetRendering()
		s.scan()
	})
}

func (s *Selector) resetRendering() {
	s.activeGroup = ""
	clear(s.original)
	s.rendered = s.rendered[:0]
}

// SetTileAssignment assigns a tile to an order of the active group.
func (s *Selector) SetTileAssignment(a reservation.Assignment) {
	s.apply(func() {
		if i := s.renderedIndex(a.TileID); i >= 0 {
			s.rendered[i].Freed = false
			s.rendered[i].OrderID = a.OrderID
			if !s.original[a.TileID] {
				s.logger.Warn("re-assigned tile missing from original assignment", "tile_id", a.TileID)
			}
			return
		}
		t, ok := s.data.Tile(a.TileID)
		if !ok {
			s.logger.Warn("assigned tile not in colo", "tile_id", a.TileID, "colo_id", s.data.ColoID())
			return
		}
		s.rendered = append(s.rendered, RenderedTile{
			TileRect: tilespace.TileToRect(t, s.frame),
			OrderID:  a.OrderID,
		})
	})
}

// ResetTileAssignment removes a tile's assignment. An originally assigned
// tile stays rendered as freed; any other tile stops being rendered.
func (s *Selector) ResetTileAssignment(tileID int64) {
	s.apply(func() {
		i := s.renderedIndex(tileID)
		if i < 0 {
			return
		}
		if s.original[tileID] {
			s.rendered[i].Freed = true
			return
		}
		s.rendered = slices.Delete(s.rendered, i, i+1)
	})
}

// SelectionCleared rescans after the committed selection was emptied
// elsewhere.
func (s *Selector) SelectionCleared() {
	s.apply(s.scan)
}

func (s *Selector) renderedIndex(tileID int64) int {
	return slices.IndexFunc(s.rendered, func(r RenderedTile) bool { return r.Tile.ID == tileID })
}

// scan rebuilds the selectable set. A tile rendered for the active group
// is selectable only once freed; other tiles are selectable when available
// or held by a preliminary reservation.
func (s *Selector) scan() {
	s.selectable = make(map[int64]*SelectableTile)
	for _, tr := range s.rackRects {
		id := tr.Tile.ID
		selectable := false
		if i := s.renderedIndex(id); i >= 0 {
			if !s.rendered[i].Freed {
				continue
			}
			selectable = true
		} else {
			switch tr.Tile.Status {
			case tilespace.StatusAvailable:
				selectable = true
			case tilespace.StatusReserved:
				held, ok := s.reservations.ByTile(id)
				selectable = ok && held.Type == reservation.TypePreliminary
			}
		}
		if selectable {
			s.selectable[id] = &SelectableTile{TileRect: tr, Selectable: true}
		}
	}
}

// Update advances the gesture. Steps that arrive outside a gesture are
// ignored. A gesture that starts on a selected tile leaves the selection
// untouched.
func (s *Selector) Update(info interaction.SelectionInfo) {
	if s.disposed {
		return
	}
	switch info.State {
	case interaction.SelectionStarted:
		s.inGesture = true
	case interaction.SelectionDragging, interaction.SelectionEnded:
		if !s.inGesture {
			return
		}
	default:
		return
	}

	if !s.ignore {
		origin := s.host.ClientOrigin()
		r := info.Rect.Translate(-origin.X, -origin.Y)
		s.selRect = &r
		hit := r.Scale(s.host.Zoom())

		if info.State == interaction.SelectionStarted {
			if s.hitsSelected(tilespace.Point{X: hit.X, Y: hit.Y}) {
				s.ignore = true
				return
			}
			s.scan()
		}
		s.hitTest(hit)
	}

	if info.State == interaction.SelectionEnded {
		s.selRect = nil
		s.ignore = false
		s.inGesture = false
		s.host.SelectionCommitted(s.SelectedTiles())

		pending := s.pending
		s.pending = nil
		for _, fn := range pending {
			fn()
		}
	}
}

func (s *Selector) hitsSelected(p tilespace.Point) bool {
	for _, st := range s.selectable {
		if st.Selected && st.Rect.Contains(p) {
			return true
		}
	}
	return false
}

func (s *Selector) hitTest(r tilespace.Rect) {
	for _, st := range s.selectable {
		st.Selected = st.Rect.Overlaps(r)
	}
}

// Dispose drops any gesture in progress without committing it, along
// with queued context changes. Later calls do nothing.
func (s *Selector) Dispose() {
	s.disposed = true
	s.inGesture = false
	s.pending = nil
	s.selRect = nil
}

// InGesture reports whether a gesture is in progress.
func (s *Selector) InGesture() bool { return s.inGesture }

// Suppressed reports whether the gesture in progress started on a selected
// tile and so leaves the selection alone.
func (s *Selector) Suppressed() bool { return s.inGesture && s.ignore }

// ActiveGroup returns the active demand group, or "".
func (s *Selector) ActiveGroup() string { return s.activeGroup }

// SelectionRect returns the live drag rectangle relative to the map.
func (s *Selector) SelectionRect() (tilespace.Rect, bool) {
	if s.selRect == nil {
		return tilespace.Rect{}, false
	}
	return *s.selRect, true
}

// SelectedTiles returns the selected tiles ordered by tile ID.
func (s *Selector) SelectedTiles() []tilespace.TileRect {
	var out []tilespace.TileRect
	for _, st := range s.sortedSelectable() {
		if st.Selected {
			out = append(out, st.TileRect)
		}
	}
	return out
}

// SelectableTiles returns a copy of the selectable set ordered by tile ID.
func (s *Selector) SelectableTiles() []SelectableTile {
	return s.sortedSelectable()
}

func (s *Selector) sortedSelectable() []SelectableTile {
	out := make([]SelectableTile, 0, len(s.selectable))
	for _, st := range s.selectable {
		out = append(out, *st)
	}
	slices.SortFunc(out, func(a, b SelectableTile) int {
		return cmp.Compare(a.Tile.ID, b.Tile.ID)
	})
	return out
}

// RenderedTiles returns a copy of the tiles rendered for the active group.
func (s *Selector) RenderedTiles() []RenderedTile {
	return slices.Clone(s.rendered)
}

// Describe summarises a selection size for display.
func Describe(n int) string {
	switch n {
	case 0:
		return "No tile selected"
	case 1:
		return "1 tile selected"
	default:
		return fmt.Sprintf("%d tiles selected", n)
	}
}
