package workspace

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/nerrad567/colo-planner-core/internal/colo"
	"github.com/nerrad567/colo-planner-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/colo-planner-core/internal/interaction"
	"github.com/nerrad567/colo-planner-core/internal/overlay"
	"github.com/nerrad567/colo-planner-core/internal/reservation"
	"github.com/nerrad567/colo-planner-core/internal/selection"
	"github.com/nerrad567/colo-planner-core/internal/tilespace"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Logger is the logging interface used by sessions.
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

// MQTTClient publishes committed selections.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Metrics records gesture and commit counters.
type Metrics interface {
	WriteGesture(coloID, state string)
	WriteSelectionCommit(coloID string, tiles int)
}

// Hooks are the optional outbound integrations shared by all sessions.
type Hooks struct {
	MQTT    MQTTClient
	Metrics Metrics
}

// Mode commands accepted by SetMode.
const (
	ModeToggle  = "toggle"
	ModeEnable  = "enable"
	ModeDisable = "disable"
)

// Zoom commands accepted by Zoom.
const (
	ZoomIn  = "in"
	ZoomOut = "out"
)

// EventKind names an outbound session event.
type EventKind string

// Outbound event kinds.
const (
	EventSelection EventKind = "selection"
	EventScroll    EventKind = "scroll"
	EventCommitted EventKind = "committed"
)

// Event is sent to a session's Sink. Exactly one of the payload fields is
// set, matching Kind.
type Event struct {
	Kind      EventKind                  `json:"kind"`
	SessionID string                     `json:"sessionId"`
	Selection *interaction.SelectionInfo `json:"selection,omitempty"`
	Scroll    *tilespace.Point           `json:"scroll,omitempty"`
	Committed *Commit                    `json:"committed,omitempty"`
}

// Sink receives a session's outbound events. It is called with the session
// lock held and must not call back into the session.
type Sink func(Event)

// CommittedTile is one tile of a committed selection.
type CommittedTile struct {
	ID   int64          `json:"id"`
	Name string         `json:"name"`
	Rect tilespace.Rect `json:"rect"`
}

// Commit is a committed selection.
type Commit struct {
	SessionID string          `json:"sessionId"`
	ColoID    string          `json:"coloId"`
	Tiles     []CommittedTile `json:"tiles"`
	Summary   string          `json:"summary"`
	Timestamp time.Time       `json:"timestamp"`
}

// Config configures a new session.
type Config struct {
	// Capabilities selects pointer or mouse event tracking.
	Capabilities interaction.Capabilities
	// Frame supplies tile size and margins; origin and size come from the colo.
	Frame tilespace.GridFrame
	// ClientOrigin is the client position of the scroll container's corner.
	ClientOrigin tilespace.Point
	// ZoomRate is the factor of one zoom step. Zero means the default.
	ZoomRate float64
	// SelectionDisabled forbids selection entirely.
	SelectionDisabled bool
	Overlays          overlay.Flags
	Sources           overlay.Sources
}

// State summarises a session for clients.
type State struct {
	ID                   string          `json:"id"`
	ColoID               string          `json:"coloId"`
	Zoom                 float64         `json:"zoom"`
	Scroll               tilespace.Point `json:"scroll"`
	SelectionModeEnabled bool            `json:"selectionModeEnabled"`
	InSelectionMode      bool            `json:"inSelectionMode"`
	Panning              bool            `json:"panning"`
	InGesture            bool            `json:"inGesture"`
	ActiveGroup          string          `json:"activeGroup,omitempty"`
	Selected             int             `json:"selected"`
	Overlays             string          `json:"overlays"`
}

// Session is one client's planner view of one colo.
//
// Thread Safety: all methods are safe for concurrent use.
type Session struct {
	mu     sync.Mutex
	id     uuid.UUID
	data   *colo.Data
	logger Logger
	hooks  Hooks
	sink   Sink

	layout     *overlay.Layout
	dispatcher *interaction.Dispatcher
	viewport   *interaction.Viewport
	selector   *selection.Selector

	origin    tilespace.Point
	committed []tilespace.TileRect
	closed    bool
}

func newSession(data *colo.Data, cfg Config, hooks Hooks, sink Sink, logger Logger) *Session {
	if logger == nil {
		logger = noopLogger{}
	}
	s := &Session{
		id:         uuid.New(),
		data:       data,
		logger:     logger,
		hooks:      hooks,
		sink:       sink,
		dispatcher: interaction.NewDispatcher(),
		origin:     cfg.ClientOrigin,
	}
	s.layout = overlay.New(data, cfg.Frame, cfg.Sources)
	s.layout.SetOverlays(cfg.Overlays)
	s.selector = selection.New(data, s.layout.Frame(), cfg.Sources.Reservations, selectionHost{s})
	s.selector.SetLogger(logger)
	s.viewport = interaction.NewViewport(s.dispatcher, interaction.NewTrackerFactory(cfg.Capabilities), interaction.ViewportConfig{
		ZoomRate:             cfg.ZoomRate,
		SelectionModeEnabled: !cfg.SelectionDisabled,
		OnSelection:          s.onSelection,
		OnScroll:             s.onScroll,
	})
	return s
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id.String() }

// ColoID returns the colo the session shows.
func (s *Session) ColoID() string { return s.data.ColoID() }

// HandleDevice dispatches one device event. It reports whether any
// listener consumed the event.
func (s *Session) HandleDevice(ev interaction.DeviceEvent) (bool, error) {
	if !ev.Valid() {
		return false, fmt.Errorf("%w: kind %q", ErrInvalidEvent, ev.Kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrSessionClosed
	}
	return s.dispatcher.Dispatch(ev), nil
}

// SetClientOrigin records where the scroll container sits on the client.
func (s *Session) SetClientOrigin(p tilespace.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.origin = p
}

// SetMode toggles, enables or disables selection.
func (s *Session) SetMode(mode string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return State{}, ErrSessionClosed
	}
	switch mode {
	case ModeToggle:
		s.viewport.ToggleSelectionMode()
	case ModeEnable:
		s.viewport.SetSelectionModeEnabled(true)
	case ModeDisable:
		s.viewport.SetSelectionModeEnabled(false)
	default:
		return State{}, fmt.Errorf("%w: mode %q", ErrInvalidCommand, mode)
	}
	return s.stateLocked(), nil
}

// Zoom steps the zoom in or out and returns the new level.
func (s *Session) Zoom(direction string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrSessionClosed
	}
	var z float64
	switch direction {
	case ZoomIn:
		z = s.viewport.ZoomIn()
	case ZoomOut:
		z = s.viewport.ZoomOut()
	default:
		return 0, fmt.Errorf("%w: zoom %q", ErrInvalidCommand, direction)
	}
	s.layout.SetZoom(z)
	return z, nil
}

// SetActiveDemand makes groupID the demand group being edited. An empty
// groupID clears it. The change waits for a gesture in progress.
func (s *Session) SetActiveDemand(groupID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if groupID == "" {
		s.selector.ResetActiveDemand()
		return
	}
	s.selector.SetActiveDemandGroup(groupID)
}

// Assign records an assignment made elsewhere.
func (s *Session) Assign(a reservation.Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selector.SetTileAssignment(a)
}

// Unassign records that a tile's assignment was removed.
func (s *Session) Unassign(tileID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selector.ResetTileAssignment(tileID)
}

// ClearSelection drops the committed selection and rescans.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed = nil
	s.selector.SelectionCleared()
}

// SetSources replaces the reservation, rack and SKU data of the session.
func (s *Session) SetSources(src overlay.Sources) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout.SetSources(src)
	s.selector.SetReservations(src.Reservations)
}

// SetOverlays changes the visible overlays.
func (s *Session) SetOverlays(f overlay.Flags) (shown, hidden overlay.Flags) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout.SetOverlays(f)
}

// View returns the rendered layout.
func (s *Session) View() overlay.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout.View()
}

// Committed returns the last committed selection.
func (s *Session) Committed() []tilespace.TileRect {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]tilespace.TileRect, len(s.committed))
	copy(out, s.committed)
	return out
}

// State returns a summary of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	return State{
		ID:                   s.ID(),
		ColoID:               s.data.ColoID(),
		Zoom:                 s.viewport.Zoom(),
		Scroll:               s.viewport.Scroll(),
		SelectionModeEnabled: s.viewport.SelectionModeEnabled(),
		InSelectionMode:      s.viewport.InSelectionMode(),
		Panning:              s.viewport.PanningMode(),
		InGesture:            s.selector.InGesture(),
		ActiveGroup:          s.selector.ActiveGroup(),
		Selected:             len(s.committed),
		Overlays:             s.layout.Visible().String(),
	}
}

// Close disposes the selector and then the viewport. A gesture in flight
// is dropped without a commit. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.selector.Dispose()
	s.viewport.Close()
}

func (s *Session) emit(ev Event) {
	if s.sink == nil {
		return
	}
	ev.SessionID = s.ID()
	s.sink(ev)
}

// onSelection feeds a step to the selector and reports the rectangle the
// selector holds. A suppressed gesture keeps reporting its press point.
func (s *Session) onSelection(info interaction.SelectionInfo) {
	if s.closed {
		return
	}
	origin := selectionHost{s}.ClientOrigin()
	last, _ := s.selector.SelectionRect()
	suppressed := s.selector.Suppressed()
	s.selector.Update(info)
	switch r, ok := s.selector.SelectionRect(); {
	case ok:
		info.Rect = r
	case suppressed:
		info.Rect = last
	default:
		info.Rect = info.Rect.Translate(-origin.X, -origin.Y)
	}
	s.emit(Event{Kind: EventSelection, Selection: &info})
	if s.hooks.Metrics != nil {
		s.hooks.Metrics.WriteGesture(s.data.ColoID(), info.State.String())
	}
}

func (s *Session) onScroll(x, y float64) {
	s.emit(Event{Kind: EventScroll, Scroll: &tilespace.Point{X: x, Y: y}})
}

func (s *Session) commit(tiles []tilespace.TileRect) {
	s.committed = tiles
	c := Commit{
		SessionID: s.ID(),
		ColoID:    s.data.ColoID(),
		Tiles:     make([]CommittedTile, 0, len(tiles)),
		Summary:   selection.Describe(len(tiles)),
		Timestamp: time.Now().UTC(),
	}
	for _, t := range tiles {
		c.Tiles = append(c.Tiles, CommittedTile{ID: t.Tile.ID, Name: t.Tile.Name, Rect: t.Rect})
	}
	s.emit(Event{Kind: EventCommitted, Committed: &c})
	s.logger.Debug("selection committed", "session_id", c.SessionID, "colo_id", c.ColoID, "tiles", len(tiles))

	if s.hooks.Metrics != nil {
		s.hooks.Metrics.WriteSelectionCommit(c.ColoID, len(tiles))
	}
	if s.hooks.MQTT == nil {
		return
	}
	payload, err := json.Marshal(c)
	if err != nil {
		s.logger.Error("marshalling committed selection", "error", err)
		return
	}
	topic := mqtt.Topics{}.Selection(c.ColoID)
	if err := s.hooks.MQTT.Publish(topic, payload, 1, false); err != nil {
		s.logger.Warn("publishing committed selection failed", "topic", topic, "error", err)
	}
}

// selectionHost adapts a Session to selection.Host. Its methods run inside
// the session lock.
type selectionHost struct{ s *Session }

// ClientOrigin is where the map's corner sits on the client: the scroll
// container's origin moved back by the scroll offset.
func (h selectionHost) ClientOrigin() tilespace.Point {
	sc := h.s.viewport.Scroll()
	return tilespace.Point{X: h.s.origin.X - sc.X, Y: h.s.origin.Y - sc.Y}
}

func (h selectionHost) Zoom() float64 { return h.s.viewport.Zoom() }

func (h selectionHost) SelectionCommitted(tiles []tilespace.TileRect) { h.s.commit(tiles) }
