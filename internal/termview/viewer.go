// Package termview draws a colo map in a terminal and drives a gesture
// session from the terminal's mouse and keyboard.
//
// Each tile occupies two terminal columns and one row at its grid cell.
// Mouse positions are converted to the client coordinates the session
// expects, so a drag in the terminal selects the same tiles a drag in the
// browser would.
package termview

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/gdamore/tcell/v2"

	"github.com/nerrad567/colo-planner-core/internal/colo"
	"github.com/nerrad567/colo-planner-core/internal/interaction"
	"github.com/nerrad567/colo-planner-core/internal/overlay"
	"github.com/nerrad567/colo-planner-core/internal/tilespace"
	"github.com/nerrad567/colo-planner-core/internal/workspace"
)

// Grid placement on screen.
const (
	cellWidth = 2
	gridLeft  = 4
	gridTop   = 2
)

// Options configures a Viewer.
type Options struct {
	Sources  overlay.Sources
	Overlays overlay.Flags
	ZoomRate float64
	// Logger receives session diagnostics. Nil discards them.
	Logger workspace.Logger
}

// Viewer is a terminal colo map with one gesture session.
type Viewer struct {
	screen  tcell.Screen
	data    *colo.Data
	frame   tilespace.GridFrame
	manager *workspace.Manager
	session *workspace.Session

	buttons  tcell.ButtonMask
	selected map[int64]bool
	dragging bool
	status   string
}

// New opens a session on data and returns a viewer drawing to screen.
// The screen must already be initialised.
func New(screen tcell.Screen, data *colo.Data, base tilespace.GridFrame, opts Options) *Viewer {
	v := &Viewer{
		screen:   screen,
		data:     data,
		frame:    data.Frame(base),
		manager:  workspace.NewManager(workspace.Hooks{}),
		selected: make(map[int64]bool),
	}
	if opts.Logger != nil {
		v.manager.SetLogger(opts.Logger)
	}
	v.session = v.manager.Open(data, workspace.Config{
		Frame:    base,
		ZoomRate: opts.ZoomRate,
		Overlays: opts.Overlays,
		Sources:  opts.Sources,
	}, v.onEvent)
	return v
}

// Run draws the map and handles events until the user quits or ctx is
// cancelled. It finalises the screen on return.
func (v *Viewer) Run(ctx context.Context) error {
	v.screen.EnableMouse(tcell.MouseMotionEvents)
	defer v.screen.Fini()
	defer v.Close()

	stop := context.AfterFunc(ctx, func() {
		//nolint:errcheck // the event loop may already be gone
		v.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	v.Draw()
	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if _, ok := ev.(*tcell.EventInterrupt); ok {
			return ctx.Err()
		}
		if v.HandleEvent(ev) {
			return nil
		}
		v.Draw()
	}
}

// Close ends the gesture session.
func (v *Viewer) Close() {
	v.manager.CloseAll()
}

// Session returns the viewer's gesture session.
func (v *Viewer) Session() *workspace.Session { return v.session }

// Selected returns the IDs of the committed tiles in ascending order.
func (v *Viewer) Selected() []int64 {
	ids := make([]int64, 0, len(v.selected))
	for id := range v.selected {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Status returns the last status message.
func (v *Viewer) Status() string { return v.status }

// HandleEvent applies one terminal event and reports whether the viewer
// should quit.
func (v *Viewer) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return v.handleKey(ev)
	case *tcell.EventMouse:
		v.handleMouse(ev)
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return false
}

func (v *Viewer) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
	default:
		return false
	}

	var err error
	switch ev.Rune() {
	case 'q':
		return true
	case 's':
		var st workspace.State
		st, err = v.session.SetMode(workspace.ModeToggle)
		if err == nil {
			v.status = fmt.Sprintf("selection mode %s", onOff(st.InSelectionMode))
		}
	case '+', '=':
		err = v.zoom(workspace.ZoomIn)
	case '-':
		err = v.zoom(workspace.ZoomOut)
	case 'c':
		v.session.ClearSelection()
		clear(v.selected)
		v.status = "selection cleared"
	}
	if err != nil {
		v.status = err.Error()
	}
	return false
}

func (v *Viewer) zoom(direction string) error {
	z, err := v.session.Zoom(direction)
	if err != nil {
		return err
	}
	v.status = fmt.Sprintf("zoom %.2f", z)
	return nil
}

// handleMouse turns tcell's button state into down, move and up events.
// tcell reports the held buttons on every event rather than transitions.
func (v *Viewer) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	held := ev.Buttons() & (tcell.Button1 | tcell.Button2 | tcell.Button3)

	var wheel string
	switch {
	case ev.Buttons()&tcell.WheelUp != 0:
		wheel = workspace.ZoomIn
	case ev.Buttons()&tcell.WheelDown != 0:
		wheel = workspace.ZoomOut
	}
	if wheel != "" {
		if err := v.zoom(wheel); err != nil {
			v.status = err.Error()
		}
		return
	}

	prev := v.buttons
	v.buttons = held

	var kind interaction.EventKind
	button := deviceButton(held)
	switch {
	case prev == 0 && held != 0:
		kind = interaction.KindDown
	case prev != 0 && held == 0:
		kind = interaction.KindUp
		button = deviceButton(prev)
	default:
		kind = interaction.KindMove
	}

	p := v.ClientPoint(x, y)
	if _, err := v.session.HandleDevice(interaction.DeviceEvent{
		Kind:        kind,
		PointerType: interaction.PointerMouse,
		Button:      button,
		ClientX:     p.X,
		ClientY:     p.Y,
	}); err != nil {
		v.status = err.Error()
	}
}

// deviceButton maps tcell's buttons to DOM button numbers. tcell's
// Button2 is the right button and Button3 the middle one.
func deviceButton(b tcell.ButtonMask) int {
	switch {
	case b&tcell.Button1 != 0:
		return interaction.ButtonPrimary
	case b&tcell.Button2 != 0:
		return interaction.ButtonSecondary
	case b&tcell.Button3 != 0:
		return 1
	default:
		return interaction.ButtonPrimary
	}
}

// ClientPoint returns the client position of the centre of terminal cell
// (x, y) at the session's current zoom. The session adds its own scroll,
// which Draw renders as a whole-cell offset.
func (v *Viewer) ClientPoint(x, y int) tilespace.Point {
	col := math.Floor(float64(x-gridLeft) / cellWidth)
	row := float64(y - gridTop)
	mapX := (col+0.5)*v.frame.XDelta + v.frame.XMargin
	mapY := (row+0.5)*v.frame.YDelta + v.frame.Top()

	z := v.session.State().Zoom
	return tilespace.Point{X: mapX * z, Y: mapY * z}
}

// scrollCells converts the session scroll to whole grid cells.
func (v *Viewer) scrollCells(st workspace.State) (cols, rows int) {
	if v.frame.XDelta > 0 {
		cols = int(math.Round(st.Scroll.X / (v.frame.XDelta * st.Zoom)))
	}
	if v.frame.YDelta > 0 {
		rows = int(math.Round(st.Scroll.Y / (v.frame.YDelta * st.Zoom)))
	}
	return cols, rows
}

// onEvent runs inside HandleDevice on the event loop goroutine.
func (v *Viewer) onEvent(ev workspace.Event) {
	switch ev.Kind {
	case workspace.EventSelection:
		v.dragging = ev.Selection.State != interaction.SelectionEnded
	case workspace.EventCommitted:
		clear(v.selected)
		for _, t := range ev.Committed.Tiles {
			v.selected[t.ID] = true
		}
		v.status = ev.Committed.Summary
	}
}

// Draw renders the map and the status line.
func (v *Viewer) Draw() {
	v.screen.Clear()
	st := v.session.State()
	dc, dr := v.scrollCells(st)

	header := tcell.StyleDefault.Bold(true)
	for c := dc; c < v.frame.Columns; c++ {
		label, err := tilespace.IndexToLabel(v.frame.OriginColumn, c)
		if err != nil {
			break
		}
		drawText(v.screen, gridLeft+(c-dc)*cellWidth, gridTop-1, header, label)
	}
	for r := dr; r < v.frame.Rows; r++ {
		drawText(v.screen, 0, gridTop+r-dr, header, fmt.Sprintf("%3d", v.frame.OriginRow+r))
	}

	for _, t := range v.data.Tiles() {
		col, err := tilespace.LabelToIndex(v.frame.OriginColumn, t.X)
		if err != nil {
			continue
		}
		row := t.Row() - v.frame.OriginRow - dr
		col -= dc
		if row < 0 || col < 0 {
			continue
		}
		text := "  "
		style := tileStyle(t)
		if v.selected[t.ID] {
			text = "[]"
			style = style.Reverse(true).Bold(true)
		}
		drawText(v.screen, gridLeft+col*cellWidth, gridTop+row, style, text)
	}

	_, h := v.screen.Size()
	line := fmt.Sprintf("colo %s  zoom %.2f  select %s  %d selected",
		st.ColoID, st.Zoom, onOff(st.InSelectionMode), st.Selected)
	if v.dragging {
		line += "  dragging"
	}
	if v.status != "" {
		line += "  | " + v.status
	}
	drawText(v.screen, 0, h-2, tcell.StyleDefault, line)
	drawText(v.screen, 0, h-1, tcell.StyleDefault.Dim(true),
		"right-drag select  s toggle  +/- zoom  c clear  q quit")
	v.screen.Show()
}

func tileStyle(t tilespace.Tile) tcell.Style {
	s := tcell.StyleDefault
	if t.Class == tilespace.ClassCold {
		return s.Background(tcell.ColorBlue)
	}
	switch t.Status {
	case tilespace.StatusAvailable:
		return s.Background(tcell.ColorGreen)
	case tilespace.StatusReserved:
		return s.Background(tcell.ColorYellow)
	case tilespace.StatusError:
		return s.Background(tcell.ColorRed)
	default:
		return s.Background(tcell.ColorGray)
	}
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
