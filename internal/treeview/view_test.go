package treeview

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/treedrop/internal/dnd"
	"github.com/dshills/treedrop/internal/dnd/adorner"
	"github.com/dshills/treedrop/internal/geom"
	"github.com/dshills/treedrop/internal/host"
	"github.com/dshills/treedrop/internal/input/pointer"
	"github.com/dshills/treedrop/internal/renderer/backend"
	"github.com/dshills/treedrop/internal/tree"
)

// Screen is 40x20: header and gutter on cells 0-1, list on cells 2-16,
// hints gutter on 17-18, status on 19. Rows are 3 cells (12 units).
type fixture struct {
	sim    tcell.SimulationScreen
	view   *View
	forest *tree.Forest
	nodes  map[string]*tree.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sim := tcell.NewSimulationScreen("")
	term := backend.NewTerminalWithScreen(sim)
	require.NoError(t, term.Init())
	sim.SetSize(40, 20)
	t.Cleanup(term.Shutdown)

	nodes := map[string]*tree.Node{}
	for _, name := range []string{"A", "B", "B1", "B2", "C", "D"} {
		nodes[name] = tree.NewNode(name)
	}
	nodes["B"].Append(nodes["B1"])
	nodes["B"].Append(nodes["B2"])
	nodes["B"].Expanded = true
	forest := tree.NewForest(nodes["A"], nodes["B"], nodes["C"], nodes["D"])

	cfg := DefaultConfig()
	cfg.DragTick = 0
	clock := time.Unix(0, 0)
	v := New(term, forest, WithConfig(cfg), WithClock(func() time.Time {
		clock = clock.Add(10 * time.Millisecond)
		return clock
	}))
	return &fixture{sim: sim, view: v, forest: forest, nodes: nodes}
}

func (f *fixture) row(name string) *Row {
	return f.view.RowFor(f.nodes[name])
}

func (f *fixture) cell(x, y int) (rune, tcell.Style) {
	cells, w, _ := f.sim.GetContents()
	c := cells[y*w+x]
	if len(c.Runes) == 0 {
		return ' ', c.Style
	}
	return c.Runes[0], c.Style
}

func (f *fixture) text(x, y, n int) string {
	out := make([]rune, n)
	for i := range out {
		out[i], _ = f.cell(x+i, y)
	}
	return string(out)
}

func mouse(x, y int, buttons backend.MouseButton, mod backend.ModMask) backend.Event {
	return backend.Event{Type: backend.EventMouse, X: x, Y: y, Buttons: buttons, Mod: mod}
}

func key(k backend.Key, r rune) backend.Event {
	return backend.Event{Type: backend.EventKey, Key: k, Rune: r}
}

func names(nodes []*tree.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func TestRowsFlattenExpandedNodes(t *testing.T) {
	f := newFixture(t)

	var got []string
	for _, r := range f.view.Rows() {
		got = append(got, r.Node().Name)
	}
	assert.Equal(t, []string{"A", "B", "B1", "B2", "C", "D"}, got)

	b1 := f.row("B1")
	assert.Equal(t, 1, b1.Depth())
	assert.Equal(t, 2, b1.Position())
	assert.Same(t, f.row("B"), b1.Parent())
	assert.Nil(t, f.row("A").Parent())
	assert.Equal(t, 0, b1.Index())
	assert.Equal(t, 1, f.row("B2").Index())
	assert.True(t, f.row("B").HasExpandedChildren())
	assert.False(t, f.row("A").HasExpandedChildren())

	f.nodes["B"].Expanded = false
	f.view.Refresh()
	assert.Len(t, f.view.Rows(), 4)
	assert.Nil(t, f.row("B1"))
	assert.Equal(t, 2, f.row("C").Position())
}

func TestGeometry(t *testing.T) {
	f := newFixture(t)
	v := f.view

	assert.Equal(t, geom.R(0, 0, 160, 76), v.Bounds())
	assert.Equal(t, geom.R(0, 0, 156, 76), v.ViewportBounds())
	assert.Equal(t, geom.R(0, 8, 156, 12), f.row("A").Bounds())
	assert.Equal(t, geom.R(0, 20, 156, 12), f.row("B").Bounds())

	assert.Equal(t, geom.Pt(22, 14), v.PointAt(5, 3))
	assert.Same(t, f.row("A"), v.RowAt(v.PointAt(5, 3)))
	assert.Same(t, f.row("C"), v.RowAt(v.PointAt(5, 15)))
	assert.Nil(t, v.RowAt(v.PointAt(5, 1)), "header gutter has no rows")
	assert.Nil(t, v.RowAt(v.PointAt(39, 3)), "scrollbar has no rows")

	assert.True(t, v.OverScrollbar(v.PointAt(39, 3)))
	assert.False(t, v.OverScrollbar(v.PointAt(38, 3)))
	assert.False(t, v.OverScrollbar(v.PointAt(39, 19)), "status line is outside the widget")
}

func TestEmptySpaceBelowRows(t *testing.T) {
	f := newFixture(t)
	f.nodes["B"].Expanded = false
	f.view.Refresh()

	// Four rows end at cell 14.
	assert.Same(t, f.row("D"), f.view.RowAt(f.view.PointAt(5, 13)))
	assert.Nil(t, f.view.RowAt(f.view.PointAt(5, 14)))
}

func TestScrollBy(t *testing.T) {
	f := newFixture(t)
	v := f.view

	// Six rows of 12 units in a 60 unit list.
	v.ScrollBy(100)
	assert.Equal(t, 12.0, v.ScrollOffset())
	assert.Same(t, f.row("B"), v.RowAt(v.PointAt(5, 3)))
	assert.Equal(t, geom.R(0, -4, 156, 12), f.row("A").Bounds())

	v.ScrollBy(-5)
	assert.Equal(t, 8.0, v.ScrollOffset(), "offsets snap to whole cells")

	v.ScrollBy(-100)
	assert.Zero(t, v.ScrollOffset())

	v.Handle(mouse(5, 5, backend.MouseWheelDown, backend.ModNone))
	assert.Equal(t, 12.0, v.ScrollOffset())
	v.Handle(mouse(5, 5, backend.MouseWheelUp, backend.ModNone))
	assert.Zero(t, v.ScrollOffset())
}

func TestDrawRows(t *testing.T) {
	f := newFixture(t)
	f.nodes["D"].AllowDrag = false
	f.view.SetTitle("demo")
	f.view.SetStatus("ready")
	f.view.Select(f.nodes["C"])
	f.view.Draw()

	assert.Equal(t, "demo", f.text(0, 0, 4))
	assert.Equal(t, "• A", f.text(1, 3, 3))
	assert.Equal(t, "▾ B", f.text(1, 6, 3))
	assert.Equal(t, "• B1", f.text(3, 9, 4))
	assert.Equal(t, "› • C", f.text(0, 15, 5), "focus follows the selection")
	assert.Equal(t, "ready", f.text(1, 19, 5))

	_, st := f.cell(3, 15)
	_, bg, _ := st.Decompose()
	assert.Equal(t, tcell.PaletteColor(int(backend.ColorBlue)), bg, "selected row")

	r, _ := f.cell(39, 2)
	assert.Equal(t, glyphThumb, r)
	r, _ = f.cell(39, 16)
	assert.Equal(t, glyphTrack, r)
	r, _ = f.cell(19, 17)
	assert.Equal(t, glyphMoreDown, r, "more rows below")
}

func TestDrawMarkerAndHighlight(t *testing.T) {
	f := newFixture(t)
	v := f.view

	before := adorner.New(v, f.row("A"), true, 2)
	after := adorner.New(v, f.row("B"), false, 2)
	f.row("C").SetDropTarget(true)
	assert.Len(t, v.Adorners(), 2)
	v.Draw()

	assert.Equal(t, "───", f.text(1, 2, 3), "before A on its top cell")
	assert.Equal(t, "───", f.text(1, 7, 3), "after B on its bottom cell")

	_, st := f.cell(3, 15)
	_, bg, attrs := st.Decompose()
	assert.Equal(t, tcell.PaletteColor(int(backend.ColorYellow)), bg)
	assert.NotZero(t, attrs&tcell.AttrBold)

	before.Dispose()
	after.Dispose()
	assert.Empty(t, v.Adorners())
	v.Draw()
	assert.Equal(t, "   ", f.text(1, 2, 3))
}

type recordingPointer struct {
	events []pointer.Event
}

func (p *recordingPointer) PointerDown(ev pointer.Event) { p.events = append(p.events, ev) }
func (p *recordingPointer) PointerMove(ev pointer.Event) { p.events = append(p.events, ev) }
func (p *recordingPointer) PointerUp(ev pointer.Event)   { p.events = append(p.events, ev) }

func (p *recordingPointer) actions() []pointer.Action {
	out := make([]pointer.Action, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Action
	}
	return out
}

func TestMouseSelection(t *testing.T) {
	f := newFixture(t)
	v := f.view
	rec := &recordingPointer{}
	v.SetPointerHandler(rec)

	click := func(x, y int, mod backend.ModMask) {
		v.Handle(mouse(x, y, backend.MouseLeft, mod))
		v.Handle(mouse(x, y, backend.MouseNone, mod))
	}

	click(5, 3, backend.ModNone)
	assert.Equal(t, []string{"A"}, names(v.Selected()))
	assert.Equal(t, []pointer.Action{pointer.ActionPress, pointer.ActionRelease}, rec.actions())
	assert.Equal(t, v.PointAt(5, 3), rec.events[0].Position)
	assert.True(t, rec.events[0].Buttons.Has(pointer.ButtonLeft))

	click(5, 15, backend.ModCtrl)
	assert.Equal(t, []string{"A", "C"}, names(v.Selected()))
	assert.True(t, rec.events[2].Modifiers.Has(pointer.ModCtrl))

	// A press on a selected row keeps the selection until release.
	v.Handle(mouse(5, 3, backend.MouseLeft, backend.ModNone))
	assert.Equal(t, []string{"A", "C"}, names(v.Selected()))
	assert.Len(t, v.SelectedRows(), 2)
	v.Handle(mouse(5, 3, backend.MouseNone, backend.ModNone))
	assert.Equal(t, []string{"A"}, names(v.Selected()))

	click(5, 15, backend.ModCtrl)
	click(5, 15, backend.ModCtrl)
	assert.Equal(t, []string{"A"}, names(v.Selected()), "ctrl-click toggles")

	click(5, 1, backend.ModNone)
	assert.Empty(t, v.Selected(), "click outside rows clears")
}

func TestMouseMoveForwarded(t *testing.T) {
	f := newFixture(t)
	rec := &recordingPointer{}
	f.view.SetPointerHandler(rec)

	f.view.Handle(mouse(5, 3, backend.MouseLeft, backend.ModNone))
	f.view.Handle(mouse(6, 4, backend.MouseLeft, backend.ModNone))
	f.view.Handle(mouse(7, 4, backend.MouseNone, backend.ModNone))
	f.view.Handle(mouse(8, 4, backend.MouseNone, backend.ModNone))

	assert.Equal(t, []pointer.Action{
		pointer.ActionPress, pointer.ActionMove, pointer.ActionRelease, pointer.ActionMove,
	}, rec.actions())
}

func TestGlyphClickTogglesExpansion(t *testing.T) {
	f := newFixture(t)

	f.view.Handle(mouse(1, 6, backend.MouseLeft, backend.ModNone))
	assert.False(t, f.nodes["B"].Expanded)
	assert.Len(t, f.view.Rows(), 4)
	assert.Empty(t, f.view.Selected())
}

func TestScrollbarClick(t *testing.T) {
	f := newFixture(t)
	f.view.Handle(mouse(39, 16, backend.MouseLeft, backend.ModNone))
	assert.Equal(t, 12.0, f.view.ScrollOffset())
	f.view.Handle(mouse(39, 16, backend.MouseNone, backend.ModNone))
	f.view.Handle(mouse(39, 2, backend.MouseLeft, backend.ModNone))
	assert.Less(t, f.view.ScrollOffset(), 12.0)
	assert.Empty(t, f.view.Selected(), "scrollbar presses do not select")
}

func TestKeyboard(t *testing.T) {
	f := newFixture(t)
	v := f.view
	assert.Same(t, f.nodes["A"], v.Focus())

	assert.True(t, v.Handle(key(backend.KeyDown, 0)))
	assert.Same(t, f.nodes["B"], v.Focus())
	assert.Equal(t, []string{"B"}, names(v.Selected()))

	v.Handle(key(backend.KeyRune, ' '))
	assert.False(t, f.nodes["B"].Expanded)
	v.Handle(key(backend.KeyRight, 0))
	assert.True(t, f.nodes["B"].Expanded)

	v.Handle(key(backend.KeyDown, 0))
	assert.Same(t, f.nodes["B1"], v.Focus())
	v.Handle(key(backend.KeyLeft, 0))
	assert.Same(t, f.nodes["B"], v.Focus(), "left on a leaf goes to the parent")
	v.Handle(key(backend.KeyLeft, 0))
	assert.False(t, f.nodes["B"].Expanded)

	v.Handle(key(backend.KeyEnd, 0))
	assert.Same(t, f.nodes["D"], v.Focus())
	v.Handle(key(backend.KeyHome, 0))
	assert.Same(t, f.nodes["A"], v.Focus())

	v.Handle(key(backend.KeyEscape, 0))
	assert.Empty(t, v.Selected())

	assert.False(t, v.Handle(key(backend.KeyRune, 'q')))
}

func TestKeyboardScrollsFocusIntoView(t *testing.T) {
	f := newFixture(t)
	f.view.Handle(key(backend.KeyEnd, 0))
	assert.Same(t, f.nodes["D"], f.view.Focus())
	assert.Equal(t, 12.0, f.view.ScrollOffset())
}

type dropCall struct {
	kind string
	pos  geom.Point
}

type recordingTarget struct {
	calls  []dropCall
	effect dnd.Effect
}

func (r *recordingTarget) DragEnter(ev dnd.DragEvent) dnd.Effect {
	r.calls = append(r.calls, dropCall{"enter", ev.Position})
	return r.effect
}

func (r *recordingTarget) DragOver(ev dnd.DragEvent) dnd.Effect {
	r.calls = append(r.calls, dropCall{"over", ev.Position})
	return r.effect
}

func (r *recordingTarget) DragLeave(ev dnd.DragEvent) {
	r.calls = append(r.calls, dropCall{"leave", ev.Position})
}

func (r *recordingTarget) Drop(ev dnd.DragEvent) dnd.Effect {
	r.calls = append(r.calls, dropCall{"drop", ev.Position})
	return r.effect
}

func (r *recordingTarget) kinds() []string {
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.kind
	}
	return out
}

func TestDragLoopEnterLeaveDrop(t *testing.T) {
	f := newFixture(t)
	target := &recordingTarget{effect: dnd.EffectMove}

	f.sim.InjectMouse(5, 6, tcell.Button1, tcell.ModNone)
	f.sim.InjectMouse(5, 9, tcell.Button1, tcell.ModNone)
	f.sim.InjectMouse(5, 19, tcell.Button1, tcell.ModNone)
	f.sim.InjectMouse(5, 9, tcell.Button1, tcell.ModNone)
	f.sim.InjectMouse(5, 9, tcell.ButtonNone, tcell.ModNone)

	var ended []dnd.Effect
	f.view.SetDragEndHandler(func(e dnd.Effect) { ended = append(ended, e) })

	payload := dnd.NewPayload(dnd.ItemRef(f.nodes["A"]))
	effect := f.view.DoDragDrop(payload, dnd.EffectMove, target)

	assert.Equal(t, dnd.EffectMove, effect)
	assert.Equal(t, []dnd.Effect{dnd.EffectMove}, ended)
	assert.Equal(t, []string{"enter", "over", "leave", "enter", "drop"}, target.kinds())
	assert.Equal(t, f.view.PointAt(5, 9), target.calls[4].pos)
	assert.False(t, f.view.Dragging())
}

func TestDragLoopStartsAtPointer(t *testing.T) {
	f := newFixture(t)
	target := &recordingTarget{effect: dnd.EffectMove}

	f.view.Handle(mouse(5, 3, backend.MouseLeft, backend.ModNone))
	f.view.Handle(mouse(5, 15, backend.MouseLeft, backend.ModNone))
	f.sim.InjectMouse(5, 15, tcell.ButtonNone, tcell.ModNone)

	effect := f.view.DoDragDrop(dnd.NewPayload(dnd.ValueOf("x")), dnd.EffectMove, target)
	assert.Equal(t, dnd.EffectMove, effect)
	assert.Equal(t, []string{"enter", "drop"}, target.kinds())
	assert.Equal(t, f.view.PointAt(5, 15), target.calls[0].pos)
	assert.Equal(t, f.view.PointAt(5, 15), target.calls[1].pos)
}

func TestDragLoopRejectedDrop(t *testing.T) {
	f := newFixture(t)
	target := &recordingTarget{effect: dnd.EffectNone}

	f.sim.InjectMouse(5, 6, tcell.Button1, tcell.ModNone)
	f.sim.InjectMouse(5, 6, tcell.ButtonNone, tcell.ModNone)

	effect := f.view.DoDragDrop(dnd.NewPayload(dnd.ValueOf("x")), dnd.EffectMove, target)
	assert.Equal(t, dnd.EffectNone, effect)
	assert.Equal(t, []string{"enter", "drop"}, target.kinds())
}

func TestDragLoopReleaseOutside(t *testing.T) {
	f := newFixture(t)
	target := &recordingTarget{effect: dnd.EffectMove}

	f.sim.InjectMouse(5, 6, tcell.Button1, tcell.ModNone)
	f.sim.InjectMouse(5, 19, tcell.ButtonNone, tcell.ModNone)

	effect := f.view.DoDragDrop(dnd.NewPayload(dnd.ValueOf("x")), dnd.EffectMove, target)
	assert.Equal(t, dnd.EffectNone, effect)
	assert.Equal(t, []string{"enter", "leave"}, target.kinds())
}

func TestDragLoopEscapeCancels(t *testing.T) {
	f := newFixture(t)
	target := &recordingTarget{effect: dnd.EffectMove}
	var interrupts []any
	f.view.SetInterruptHandler(func(data any) { interrupts = append(interrupts, data) })

	f.sim.InjectMouse(5, 6, tcell.Button1, tcell.ModNone)
	require.NoError(t, f.sim.PostEvent(tcell.NewEventInterrupt("reload")))
	require.NoError(t, f.sim.PostEvent(tcell.NewEventInterrupt(dragTick{})))
	f.sim.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)

	effect := f.view.DoDragDrop(dnd.NewPayload(dnd.ValueOf("x")), dnd.EffectMove, target)
	assert.Equal(t, dnd.EffectNone, effect)
	assert.Equal(t, []string{"enter", "over", "leave"}, target.kinds())
	assert.Equal(t, outside, target.calls[2].pos)
	assert.Equal(t, []any{"reload"}, interrupts)
}

func TestDragStatusLine(t *testing.T) {
	assert.Equal(t, "dragging 2 item(s): drop allowed  (esc cancels)", describeDrag(2, true))
	assert.Equal(t, "dragging 1 item(s): no drop here  (esc cancels)", describeDrag(1, false))
}

func TestGutterFor(t *testing.T) {
	assert.Equal(t, 3, GutterFor(10, 4))
	assert.Equal(t, 1, GutterFor(0, 4))
	assert.Equal(t, 2, GutterFor(8, 4))
	assert.Equal(t, 1, GutterFor(10, 0))
}

func TestDragAndDropWithController(t *testing.T) {
	f := newFixture(t)
	h := host.New(f.forest)
	ctrl := dnd.New(f.view, dnd.WithDragHandler(h), dnd.WithDropHandler(h))
	f.view.SetPointerHandler(ctrl)

	// The drag loop reads these once the threshold is crossed.
	f.sim.InjectMouse(5, 15, tcell.Button1, tcell.ModNone)
	f.sim.InjectMouse(5, 15, tcell.ButtonNone, tcell.ModNone)

	f.view.Handle(mouse(5, 3, backend.MouseLeft, backend.ModNone))
	assert.Equal(t, dnd.StateArmed, ctrl.State())
	f.view.Handle(mouse(5, 5, backend.MouseLeft, backend.ModNone))

	assert.Equal(t, dnd.StateIdle, ctrl.State())
	assert.Equal(t, []*tree.Node{f.nodes["A"]}, f.nodes["C"].Children())
	assert.True(t, f.nodes["C"].Expanded)

	op, ok := h.LastOperation()
	require.True(t, ok)
	assert.Equal(t, "move [A] onto /C", op.String())
	assert.Empty(t, f.view.Adorners())

	f.view.Refresh()
	assert.Equal(t, 1, f.row("A").Depth())
	assert.Same(t, f.row("C"), f.row("A").Parent())
}

func TestReleaseAfterThresholdMoveDrops(t *testing.T) {
	f := newFixture(t)
	h := host.New(f.forest)
	ctrl := dnd.New(f.view, dnd.WithDragHandler(h), dnd.WithDropHandler(h))
	f.view.SetPointerHandler(ctrl)

	// The move that starts the drag is the last one before release.
	f.sim.InjectMouse(5, 15, tcell.ButtonNone, tcell.ModNone)

	f.view.Handle(mouse(5, 3, backend.MouseLeft, backend.ModNone))
	f.view.Handle(mouse(5, 15, backend.MouseLeft, backend.ModNone))

	assert.Equal(t, dnd.StateIdle, ctrl.State())
	assert.Equal(t, []*tree.Node{f.nodes["A"]}, f.nodes["C"].Children())
	assert.Equal(t, []string{"B", "C", "D"}, names(f.forest.Roots()))
	assert.Empty(t, f.view.Adorners())
}

func TestInsertWithController(t *testing.T) {
	f := newFixture(t)
	h := host.New(f.forest)
	ctrl := dnd.New(f.view, dnd.WithDragHandler(h), dnd.WithDropHandler(h))
	f.view.SetPointerHandler(ctrl)

	// Top cell of C inserts before it.
	f.sim.InjectMouse(5, 14, tcell.Button1, tcell.ModNone)
	f.sim.InjectMouse(5, 14, tcell.ButtonNone, tcell.ModNone)

	f.view.Handle(mouse(5, 3, backend.MouseLeft, backend.ModNone))
	f.view.Handle(mouse(5, 5, backend.MouseLeft, backend.ModNone))

	assert.Equal(t, []string{"B", "A", "C", "D"}, names(f.forest.Roots()))
	op, _ := h.LastOperation()
	assert.Equal(t, "move [A] into / at 2", op.String())
}
