// Package treeview is a terminal tree widget that hosts the drag-and-drop
// controller.
//
// The widget flattens the expanded part of a tree.Forest into rows of
// Config.RowHeight cells and maps every cell to Config.UnitsPerCell widget
// units, the coordinate space the dnd package works in. Its screen layout,
// top to bottom, is:
//
//	header      first of Config.Gutter cells
//	rows        scrollable list, scrollbar in the rightmost column
//	key hints   last of Config.Gutter cells
//	status      one line below the widget when Config.ShowStatus is set
//
// The gutters sit inside the autoscroll border so hovering over them scrolls
// the list without hiding a row's insertion band.
//
// View implements dnd.View. DoDragDrop runs the drag loop by polling the
// backend directly, so it must be called from the goroutine that owns the
// backend's event queue.
package treeview

import (
	"math"
	"time"

	"github.com/dshills/treedrop/internal/dnd"
	"github.com/dshills/treedrop/internal/dnd/adorner"
	"github.com/dshills/treedrop/internal/geom"
	"github.com/dshills/treedrop/internal/input/pointer"
	"github.com/dshills/treedrop/internal/logging"
	"github.com/dshills/treedrop/internal/renderer/backend"
	"github.com/dshills/treedrop/internal/tree"
)

// Config configures the widget geometry.
type Config struct {
	// UnitsPerCell is the number of widget units per terminal cell.
	UnitsPerCell int

	// RowHeight is the height of a row in cells.
	RowHeight int

	// Indent is the indentation per depth level in cells.
	Indent int

	// Gutter is the number of non-row cells above and below the list.
	Gutter int

	// ShowStatus shows the status line.
	ShowStatus bool

	// DragTick re-sends the last drag position at this interval while a
	// drag hovers without moving, so autoscroll keeps running. Zero
	// disables it.
	DragTick time.Duration
}

// DefaultConfig returns the default layout.
func DefaultConfig() Config {
	return Config{
		UnitsPerCell: 4,
		RowHeight:    3,
		Indent:       2,
		Gutter:       2,
		ShowStatus:   true,
		DragTick:     50 * time.Millisecond,
	}
}

// GutterFor returns the gutter in cells needed to cover an autoscroll
// border of the given size in units.
func GutterFor(border float64, unitsPerCell int) int {
	if unitsPerCell <= 0 {
		return 1
	}
	return max(1, int(math.Ceil(border/float64(unitsPerCell))))
}

// PointerHandler receives the widget's pointer events. dnd.Controller
// implements it.
type PointerHandler interface {
	PointerDown(ev pointer.Event)
	PointerMove(ev pointer.Event)
	PointerUp(ev pointer.Event)
}

// Option configures a View.
type Option func(*View)

// WithConfig sets the layout.
func WithConfig(cfg Config) Option {
	return func(v *View) {
		v.cfg = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(v *View) {
		if l != nil {
			v.log = l.WithComponent("treeview")
		}
	}
}

// WithClock sets the time source for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(v *View) {
		if now != nil {
			v.now = now
		}
	}
}

// View is the terminal tree widget.
type View struct {
	backend backend.Backend
	forest  *tree.Forest
	cfg     Config
	log     *logging.Logger
	now     func() time.Time

	rows     []*Row
	byNode   map[*tree.Node]*Row
	selected map[*tree.Node]bool
	focus    *tree.Node
	scroll   float64
	adorners []*adorner.Adorner

	title    string
	status   string
	dragInfo string

	pointer     PointerHandler
	onInterrupt func(data any)
	onDragEnd   func(effect dnd.Effect)

	buttons  backend.MouseButton
	collapse *tree.Node
	dragging bool

	// lastPointer is where the pointer was when a drag loop starts.
	lastPointer pointer.Event
}

var _ dnd.View = (*View)(nil)

// New creates a view of forest drawn on b.
func New(b backend.Backend, forest *tree.Forest, opts ...Option) *View {
	v := &View{
		backend:  b,
		forest:   forest,
		cfg:      DefaultConfig(),
		log:      logging.NullLogger,
		now:      time.Now,
		byNode:   make(map[*tree.Node]*Row),
		selected: make(map[*tree.Node]bool),
		title:    "treedrop",
	}
	for _, opt := range opts {
		opt(v)
	}
	v.Refresh()
	return v
}

// Configure replaces the layout.
func (v *View) Configure(cfg Config) {
	v.cfg = cfg
	v.Refresh()
}

// Config returns the layout.
func (v *View) Config() Config {
	return v.cfg
}

// SetPointerHandler sets the receiver of pointer events.
func (v *View) SetPointerHandler(h PointerHandler) {
	v.pointer = h
}

// SetInterruptHandler sets the function called for backend interrupts that
// arrive while the drag loop owns the event queue.
func (v *View) SetInterruptHandler(fn func(data any)) {
	v.onInterrupt = fn
}

// SetDragEndHandler sets the function called with the result of every
// drag loop.
func (v *View) SetDragEndHandler(fn func(effect dnd.Effect)) {
	v.onDragEnd = fn
}

// SetTitle sets the header text.
func (v *View) SetTitle(s string) {
	v.title = s
}

// SetStatus sets the status line text.
func (v *View) SetStatus(s string) {
	v.status = s
}

// Status returns the status line text.
func (v *View) Status() string {
	return v.status
}

// Dragging reports whether the drag loop is running.
func (v *View) Dragging() bool {
	return v.dragging
}

// Forest returns the displayed forest.
func (v *View) Forest() *tree.Forest {
	return v.forest
}

// SetForest replaces the displayed forest and clears the selection.
func (v *View) SetForest(f *tree.Forest) {
	v.forest = f
	v.byNode = make(map[*tree.Node]*Row)
	v.selected = make(map[*tree.Node]bool)
	v.focus = nil
	v.scroll = 0
	v.Refresh()
}

// Rows returns the visible rows in display order.
func (v *View) Rows() []*Row {
	return v.rows
}

// RowFor returns the row showing n, or nil when n is not visible.
func (v *View) RowFor(n *tree.Node) *Row {
	return v.byNode[n]
}

// Refresh re-flattens the forest. Row objects are kept for nodes that stay
// visible.
func (v *View) Refresh() {
	rows := make([]*Row, 0, len(v.rows))
	seen := make(map[*tree.Node]bool, len(v.byNode))

	var visit func(nodes []*tree.Node, parent *Row, depth int)
	visit = func(nodes []*tree.Node, parent *Row, depth int) {
		for _, n := range nodes {
			r := v.byNode[n]
			if r == nil {
				r = &Row{view: v, node: n}
				v.byNode[n] = r
			}
			r.parent = parent
			r.depth = depth
			r.pos = len(rows)
			rows = append(rows, r)
			seen[n] = true
			if n.Expanded {
				visit(n.Children(), r, depth+1)
			}
		}
	}
	if v.forest != nil {
		visit(v.forest.Roots(), nil, 0)
	}

	for n := range v.byNode {
		if !seen[n] {
			delete(v.byNode, n)
		}
	}
	for n := range v.selected {
		if v.forest == nil || !v.forest.Owns(n) {
			delete(v.selected, n)
		}
	}
	v.rows = rows

	if v.focus != nil && !seen[v.focus] {
		v.focus = nil
	}
	if v.focus == nil && len(rows) > 0 {
		v.focus = rows[0].node
	}
	v.clampScroll()
}

// Geometry

func (v *View) unit() float64 {
	return float64(max(v.cfg.UnitsPerCell, 1))
}

func (v *View) rowUnits() float64 {
	return float64(max(v.cfg.RowHeight, 1)) * v.unit()
}

// listWidth returns the screen width and the width left of the scrollbar.
func (v *View) listWidth() (screen, list int) {
	w, _ := v.backend.Size()
	return w, max(w-1, 0)
}

// widgetHeight returns the widget height in cells, excluding the status line.
func (v *View) widgetHeight() int {
	_, h := v.backend.Size()
	if v.cfg.ShowStatus {
		h--
	}
	return max(h, 0)
}

// listArea returns the first cell row of the list and its height in cells.
func (v *View) listArea() (top, height int) {
	top = v.cfg.Gutter
	return top, max(v.widgetHeight()-2*v.cfg.Gutter, 0)
}

func (v *View) scrollCells() int {
	return int(v.scroll / v.unit())
}

func (v *View) maxScroll() float64 {
	_, height := v.listArea()
	return math.Max(0, float64(len(v.rows))*v.rowUnits()-float64(height)*v.unit())
}

func (v *View) clampScroll() {
	u := v.unit()
	v.scroll = math.Round(v.scroll/u) * u
	v.scroll = math.Max(0, math.Min(v.scroll, v.maxScroll()))
}

// PointAt returns the widget point at the centre of cell (x, y).
func (v *View) PointAt(x, y int) geom.Point {
	u := v.unit()
	return geom.Pt((float64(x)+0.5)*u, (float64(y)+0.5)*u)
}

// Bounds implements dnd.Viewport.
func (v *View) Bounds() geom.Rect {
	w, _ := v.listWidth()
	u := v.unit()
	return geom.R(0, 0, float64(w)*u, float64(v.widgetHeight())*u)
}

// ViewportBounds implements dnd.Viewport.
func (v *View) ViewportBounds() geom.Rect {
	_, w := v.listWidth()
	u := v.unit()
	return geom.R(0, 0, float64(w)*u, float64(v.widgetHeight())*u)
}

func (v *View) listBounds() geom.Rect {
	_, w := v.listWidth()
	top, height := v.listArea()
	u := v.unit()
	return geom.R(0, float64(top)*u, float64(w)*u, float64(height)*u)
}

// RowAt implements dnd.HitTester. Only the list area holds rows.
func (v *View) RowAt(p geom.Point) dnd.Row {
	if r := v.rowAt(p); r != nil {
		return r
	}
	return nil
}

func (v *View) rowAt(p geom.Point) *Row {
	lb := v.listBounds()
	if !lb.Contains(p) {
		return nil
	}
	i := int(math.Floor((p.Y - lb.Y + v.scroll) / v.rowUnits()))
	if i < 0 || i >= len(v.rows) {
		return nil
	}
	return v.rows[i]
}

// OverScrollbar implements dnd.HitTester.
func (v *View) OverScrollbar(p geom.Point) bool {
	w, list := v.listWidth()
	u := v.unit()
	return w > 0 && p.X >= float64(list)*u && p.X < float64(w)*u &&
		p.Y >= 0 && p.Y < float64(v.widgetHeight())*u
}

// ScrollBy implements autoscroll.Target.
func (v *View) ScrollBy(delta float64) {
	before := v.scroll
	v.scroll += delta
	v.clampScroll()
	if v.scroll != before {
		v.log.Debug("scrolled to %g", v.scroll)
	}
}

// ScrollOffset returns the vertical scroll offset in units.
func (v *View) ScrollOffset() float64 {
	return v.scroll
}

// ensureVisible scrolls the minimum amount that shows r entirely.
func (v *View) ensureVisible(r *Row) {
	if r == nil {
		return
	}
	lb := v.listBounds()
	b := r.Bounds()
	switch {
	case b.Y < lb.Y:
		v.ScrollBy(b.Y - lb.Y)
	case b.Bottom() > lb.Bottom():
		v.ScrollBy(b.Bottom() - lb.Bottom())
	}
}

// Adorner layer

// AddAdorner implements adorner.Layer.
func (v *View) AddAdorner(a *adorner.Adorner) {
	v.adorners = append(v.adorners, a)
}

// RemoveAdorner implements adorner.Layer.
func (v *View) RemoveAdorner(a *adorner.Adorner) {
	for i, x := range v.adorners {
		if x == a {
			v.adorners = append(v.adorners[:i], v.adorners[i+1:]...)
			return
		}
	}
}

// Adorners returns the attached insertion markers.
func (v *View) Adorners() []*adorner.Adorner {
	return v.adorners
}

// Selection

// SelectedRows implements dnd.Selection.
func (v *View) SelectedRows() []dnd.Row {
	var out []dnd.Row
	for _, r := range v.rows {
		if v.selected[r.node] {
			out = append(out, r)
		}
	}
	return out
}

// Selected returns the selected nodes in display order. Selected nodes
// hidden under a collapsed parent are omitted.
func (v *View) Selected() []*tree.Node {
	var out []*tree.Node
	for _, r := range v.rows {
		if v.selected[r.node] {
			out = append(out, r.node)
		}
	}
	return out
}

// IsSelected reports whether n is selected.
func (v *View) IsSelected(n *tree.Node) bool {
	return v.selected[n]
}

// Select replaces the selection and focuses the first node.
func (v *View) Select(nodes ...*tree.Node) {
	clear(v.selected)
	for _, n := range nodes {
		if n != nil {
			v.selected[n] = true
		}
	}
	if len(nodes) > 0 && nodes[0] != nil {
		v.focus = nodes[0]
	}
}

// ToggleSelected adds n to or removes it from the selection.
func (v *View) ToggleSelected(n *tree.Node) {
	if v.selected[n] {
		delete(v.selected, n)
		return
	}
	v.selected[n] = true
}

// Focus returns the keyboard focus node.
func (v *View) Focus() *tree.Node {
	return v.focus
}
