package workspace

import (
	"errors"
	"os"
	"testing"

	"github.com/nerrad567/colo-planner-core/internal/colo"
	"github.com/nerrad567/colo-planner-core/internal/interaction"
	"github.com/nerrad567/colo-planner-core/internal/overlay"
	"github.com/nerrad567/colo-planner-core/internal/reservation"
	"github.com/nerrad567/colo-planner-core/internal/tilespace"
)

type published struct {
	topic   string
	payload []byte
}

type fakeMQTT struct{ msgs []published }

func (f *fakeMQTT) Publish(topic string, payload []byte, _ byte, _ bool) error {
	f.msgs = append(f.msgs, published{topic, payload})
	return nil
}

type fakeMetrics struct {
	gestures []string
	commits  []int
}

func (f *fakeMetrics) WriteGesture(_, state string)             { f.gestures = append(f.gestures, state) }
func (f *fakeMetrics) WriteSelectionCommit(_ string, tiles int) { f.commits = append(f.commits, tiles) }

func loadData(t *testing.T) *colo.Data {
	t.Helper()
	f, err := os.Open("../colo/testdata/colo-201.json")
	if err != nil {
		t.Fatalf("opening fixture: %v", err)
	}
	defer f.Close()
	snap, err := colo.DecodeSnapshot(f, "")
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	return colo.NewData(snap)
}

func testConfig(pointerEvents bool) Config {
	return Config{
		Capabilities: interaction.Capabilities{PointerEvents: pointerEvents},
		Frame:        tilespace.DefaultFrame("", 0, 0, 0),
	}
}

type recorder struct{ events []Event }

func (r *recorder) sink(ev Event) { r.events = append(r.events, ev) }

func (r *recorder) kinds(k EventKind) []Event {
	var out []Event
	for _, ev := range r.events {
		if ev.Kind == k {
			out = append(out, ev)
		}
	}
	return out
}

func mouse(kind interaction.EventKind, button int, x, y float64) interaction.DeviceEvent {
	return interaction.DeviceEvent{Kind: kind, PointerType: interaction.PointerMouse, Button: button, ClientX: x, ClientY: y}
}

func mustHandle(t *testing.T, s *Session, ev interaction.DeviceEvent) {
	t.Helper()
	if _, err := s.HandleDevice(ev); err != nil {
		t.Fatalf("HandleDevice(%+v) error = %v", ev, err)
	}
}

func TestSession_SecondaryButtonSelects(t *testing.T) {
	for _, pointerEvents := range []bool{false, true} {
		t.Run(map[bool]string{false: "mouse", true: "pointer"}[pointerEvents], func(t *testing.T) {
			mq := &fakeMQTT{}
			met := &fakeMetrics{}
			rec := &recorder{}
			m := NewManager(Hooks{MQTT: mq, Metrics: met})
			s := m.Open(loadData(t), testConfig(pointerEvents), rec.sink)

			mustHandle(t, s, mouse(interaction.KindDown, interaction.ButtonSecondary, 165, 45))
			if !s.State().InSelectionMode {
				t.Error("secondary-button press did not arm selection")
			}
			mustHandle(t, s, mouse(interaction.KindMove, interaction.ButtonSecondary, 195, 45))
			mustHandle(t, s, mouse(interaction.KindUp, interaction.ButtonSecondary, 195, 45))

			st := s.State()
			if st.InSelectionMode || st.Selected != 2 {
				t.Errorf("State() = %+v, want disarmed with 2 selected", st)
			}

			committed := rec.kinds(EventCommitted)
			if len(committed) != 1 {
				t.Fatalf("committed events = %d, want 1", len(committed))
			}
			c := committed[0].Committed
			if len(c.Tiles) != 2 || c.Tiles[0].Name != "AE01" || c.Tiles[1].Name != "AF01" {
				t.Errorf("committed tiles = %+v, want AE01 and AF01", c.Tiles)
			}
			if c.Summary != "2 tiles selected" || c.ColoID != "201" {
				t.Errorf("commit = %+v", c)
			}

			steps := rec.kinds(EventSelection)
			if len(steps) != 3 || steps[2].Selection.State != interaction.SelectionEnded {
				t.Errorf("selection events = %d, want 3 ending with Ended", len(steps))
			}
			if len(met.gestures) != 3 || len(met.commits) != 1 || met.commits[0] != 2 {
				t.Errorf("metrics = %+v", met)
			}

			if len(mq.msgs) != 1 || mq.msgs[0].topic != "coloplanner/colo/201/selection" {
				t.Fatalf("published = %+v", mq.msgs)
			}
			var got Commit
			if err := json.Unmarshal(mq.msgs[0].payload, &got); err != nil {
				t.Fatalf("payload: %v", err)
			}
			if got.SessionID != s.ID() || len(got.Tiles) != 2 {
				t.Errorf("payload = %+v", got)
			}
		})
	}
}

func TestSession_PanningShiftsHitTesting(t *testing.T) {
	rec := &recorder{}
	s := NewManager(Hooks{}).Open(loadData(t), testConfig(false), rec.sink)

	mustHandle(t, s, mouse(interaction.KindDown, interaction.ButtonPrimary, 10, 10))
	mustHandle(t, s, mouse(interaction.KindMove, interaction.ButtonPrimary, 4, 6))
	mustHandle(t, s, mouse(interaction.KindUp, interaction.ButtonPrimary, 4, 6))

	if got := s.State().Scroll; got != (tilespace.Point{X: 6, Y: 4}) {
		t.Fatalf("Scroll = %+v, want {6 4}", got)
	}
	if scrolls := rec.kinds(EventScroll); len(scrolls) != 1 || *scrolls[0].Scroll != (tilespace.Point{X: 6, Y: 4}) {
		t.Errorf("scroll events = %+v", scrolls)
	}
	if len(rec.kinds(EventCommitted)) != 0 {
		t.Error("panning committed a selection")
	}

	// Client (159, 41) is map (165, 45) once scrolled by (6, 4).
	mustHandle(t, s, mouse(interaction.KindDown, interaction.ButtonSecondary, 159, 41))
	mustHandle(t, s, mouse(interaction.KindUp, interaction.ButtonSecondary, 159, 41))

	got := s.Committed()
	if len(got) != 1 || got[0].Tile.ID != 1006 {
		t.Errorf("Committed() = %+v, want tile 1006", got)
	}
	start := rec.kinds(EventSelection)[0].Selection.Rect
	if start.X != 165 || start.Y != 45 {
		t.Errorf("selection event rect = %+v, want map coordinates (165, 45)", start)
	}
}

func TestSession_ModeAndZoom(t *testing.T) {
	s := NewManager(Hooks{}).Open(loadData(t), testConfig(true), nil)

	st, err := s.SetMode(ModeToggle)
	if err != nil || !st.InSelectionMode || st.Panning {
		t.Errorf("SetMode(toggle) = %+v, %v", st, err)
	}
	st, _ = s.SetMode(ModeDisable)
	if st.SelectionModeEnabled || !st.Panning {
		t.Errorf("SetMode(disable) = %+v, want panning", st)
	}
	if _, err := s.SetMode("sideways"); !errors.Is(err, ErrInvalidCommand) {
		t.Errorf("SetMode(sideways) error = %v, want ErrInvalidCommand", err)
	}

	z, err := s.Zoom(ZoomIn)
	if err != nil || z != 1.1 {
		t.Errorf("Zoom(in) = %v, %v, want 1.1", z, err)
	}
	if v := s.View(); v.Zoom != 1.1 || v.Width != 286 {
		t.Errorf("View() zoom %v width %v, want 1.1 and 286", v.Zoom, v.Width)
	}
	if _, err := s.Zoom("sideways"); !errors.Is(err, ErrInvalidCommand) {
		t.Errorf("Zoom(sideways) error = %v, want ErrInvalidCommand", err)
	}
}

func TestSession_DemandAndAssignments(t *testing.T) {
	idx := reservation.NewIndex([]reservation.GroupReservation{
		{GroupID: "G1", Type: reservation.TypePreliminary, Orders: []reservation.Order{
			{OrderID: "O1", RackReservations: []reservation.RackReservation{{TileID: 1004}}},
		}},
	})
	cfg := testConfig(false)
	cfg.Sources = overlay.Sources{Reservations: idx}
	m := NewManager(Hooks{})
	s := m.Open(loadData(t), cfg, nil)

	s.SetActiveDemand("G1")
	if s.State().ActiveGroup != "G1" {
		t.Fatalf("ActiveGroup = %q, want G1", s.State().ActiveGroup)
	}

	// Tile 1004 is assigned, so a click on it selects nothing.
	mustHandle(t, s, mouse(interaction.KindDown, interaction.ButtonSecondary, 105, 65))
	mustHandle(t, s, mouse(interaction.KindUp, interaction.ButtonSecondary, 105, 65))
	if got := s.Committed(); len(got) != 0 {
		t.Errorf("Committed() = %+v, want none", got)
	}

	if n := m.Unassign("201", 1004); n != 1 {
		t.Errorf("Unassign() reached %d sessions, want 1", n)
	}
	s.ClearSelection()
	mustHandle(t, s, mouse(interaction.KindDown, interaction.ButtonSecondary, 105, 65))
	mustHandle(t, s, mouse(interaction.KindUp, interaction.ButtonSecondary, 105, 65))
	if got := s.Committed(); len(got) != 1 || got[0].Tile.ID != 1004 {
		t.Errorf("Committed() = %+v, want freed tile 1004", got)
	}

	if n := m.Assign("999", reservation.Assignment{TileID: 1004, OrderID: "O1"}); n != 0 {
		t.Errorf("Assign() for another colo reached %d sessions", n)
	}

	s.SetActiveDemand("")
	if s.State().ActiveGroup != "" {
		t.Error("empty group did not reset the active demand")
	}
}

func TestSession_StartOnSelectedTileIsSuppressed(t *testing.T) {
	rec := &recorder{}
	s := NewManager(Hooks{}).Open(loadData(t), testConfig(false), rec.sink)

	mustHandle(t, s, mouse(interaction.KindDown, interaction.ButtonSecondary, 165, 45))
	mustHandle(t, s, mouse(interaction.KindMove, interaction.ButtonSecondary, 195, 45))
	mustHandle(t, s, mouse(interaction.KindUp, interaction.ButtonSecondary, 195, 45))
	rec.events = nil

	// AE01 is already selected, so this drag leaves the selection alone.
	mustHandle(t, s, mouse(interaction.KindDown, interaction.ButtonSecondary, 165, 45))
	mustHandle(t, s, mouse(interaction.KindMove, interaction.ButtonSecondary, 400, 200))
	mustHandle(t, s, mouse(interaction.KindUp, interaction.ButtonSecondary, 400, 200))

	want := tilespace.Rect{X: 165, Y: 45}
	steps := rec.kinds(EventSelection)
	if len(steps) != 3 {
		t.Fatalf("selection events = %d, want 3", len(steps))
	}
	for _, ev := range steps {
		if ev.Selection.Rect != want {
			t.Errorf("%s rect = %+v, want %+v", ev.Selection.State, ev.Selection.Rect, want)
		}
	}
	if st := s.State(); st.Selected != 2 {
		t.Errorf("Selected = %d, want 2", st.Selected)
	}
	if c := rec.kinds(EventCommitted); len(c) != 1 || len(c[0].Committed.Tiles) != 2 {
		t.Errorf("committed = %+v, want the previous two tiles", c)
	}
}

func TestSession_CloseDropsGesture(t *testing.T) {
	rec := &recorder{}
	met := &fakeMetrics{}
	s := NewManager(Hooks{Metrics: met}).Open(loadData(t), testConfig(true), rec.sink)

	mustHandle(t, s, mouse(interaction.KindDown, interaction.ButtonSecondary, 165, 45))
	s.Close()
	s.Close()

	if len(rec.kinds(EventCommitted)) != 0 {
		t.Error("closing mid-gesture committed a selection")
	}
	if steps := rec.kinds(EventSelection); len(steps) != 1 {
		t.Errorf("selection events = %d, want only the start", len(steps))
	}
	if len(met.gestures) != 1 || met.gestures[0] != "started" {
		t.Errorf("gesture metrics = %v, want [started]", met.gestures)
	}
	if _, err := s.HandleDevice(mouse(interaction.KindUp, 0, 0, 0)); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("HandleDevice() after Close error = %v, want ErrSessionClosed", err)
	}
}

func TestSession_InvalidEvent(t *testing.T) {
	s := NewManager(Hooks{}).Open(loadData(t), testConfig(true), nil)
	if _, err := s.HandleDevice(interaction.DeviceEvent{Kind: "wheel"}); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("HandleDevice(wheel) error = %v, want ErrInvalidEvent", err)
	}
}

func TestManager(t *testing.T) {
	m := NewManager(Hooks{})
	data := loadData(t)
	a := m.Open(data, testConfig(true), nil)
	b := m.Open(data, testConfig(false), nil)

	if m.Len() != 2 || len(m.ForColo("201")) != 2 {
		t.Fatalf("Len() = %d, ForColo = %d, want 2", m.Len(), len(m.ForColo("201")))
	}
	if got, err := m.Get(a.ID()); err != nil || got != a {
		t.Errorf("Get() = %v, %v", got, err)
	}

	tests := []struct {
		name string
		id   string
	}{
		{"malformed", "not-a-uuid"},
		{"unknown", "00000000-0000-0000-0000-000000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Get(tt.id); !errors.Is(err, ErrSessionNotFound) {
				t.Errorf("Get() error = %v, want ErrSessionNotFound", err)
			}
			if err := m.Close(tt.id); !errors.Is(err, ErrSessionNotFound) {
				t.Errorf("Close() error = %v, want ErrSessionNotFound", err)
			}
		})
	}

	if err := m.Close(a.ID()); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := a.SetMode(ModeToggle); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("closed session SetMode() error = %v", err)
	}
	m.CloseAll()
	if m.Len() != 0 {
		t.Errorf("Len() after CloseAll = %d", m.Len())
	}
	if _, err := b.Zoom(ZoomIn); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("CloseAll did not close session: %v", err)
	}
}
