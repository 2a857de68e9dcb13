package dnd

import (
	"fmt"

	"github.com/dshills/treedrop/internal/dnd/adorner"
	"github.com/dshills/treedrop/internal/geom"
)

const (
	rowHeight = 12.0
	rowWidth  = 100.0
	rowsTop   = 20.0
)

// fakeRow is a row in a flattened test tree.
type fakeRow struct {
	name       string
	bounds     geom.Rect
	parent     *fakeRow
	index      int
	expanded   bool
	children   []*fakeRow
	dropTarget bool
}

func (r *fakeRow) Bounds() geom.Rect { return r.bounds }
func (r *fakeRow) Item() Item        { return r.name }
func (r *fakeRow) Index() int        { return r.index }
func (r *fakeRow) String() string    { return r.name }

func (r *fakeRow) Parent() Row {
	if r.parent == nil {
		return nil
	}
	return r.parent
}

func (r *fakeRow) HasExpandedChildren() bool {
	return r.expanded && len(r.children) > 0
}

func (r *fakeRow) SetDropTarget(on bool) { r.dropTarget = on }
func (r *fakeRow) IsDropTarget() bool    { return r.dropTarget }

// fakeView lays rows out top to bottom starting at rowsTop.
type fakeView struct {
	rows     []*fakeRow
	selected []*fakeRow
	bounds   geom.Rect

	live        map[*adorner.Adorner]bool
	added       int
	removed     int
	maxLive     int
	scrolled    []float64
	loopCalls   int
	loopPayload Payload
	loop        func(p Payload, target DropTarget) Effect
}

func newFakeView() *fakeView {
	return &fakeView{
		bounds: geom.R(0, 0, rowWidth+10, 200),
		live:   make(map[*adorner.Adorner]bool),
	}
}

// add appends a row under parent (nil for top level) and relayouts.
func (v *fakeView) add(name string, parent *fakeRow) *fakeRow {
	r := &fakeRow{name: name, parent: parent}
	if parent != nil {
		r.index = len(parent.children)
		parent.children = append(parent.children, r)
		parent.expanded = true
	} else {
		for _, existing := range v.rows {
			if existing.parent == nil {
				r.index++
			}
		}
	}
	v.rows = append(v.rows, r)
	v.layout()
	return r
}

// layout assigns bounds in depth-first order.
func (v *fakeView) layout() {
	var ordered []*fakeRow
	var walk func(r *fakeRow)
	walk = func(r *fakeRow) {
		ordered = append(ordered, r)
		if r.expanded {
			for _, c := range r.children {
				walk(c)
			}
		}
	}
	for _, r := range v.rows {
		if r.parent == nil {
			walk(r)
		}
	}
	for i, r := range ordered {
		r.bounds = geom.R(0, rowsTop+float64(i)*rowHeight, rowWidth, rowHeight)
	}
}

func (v *fakeView) RowAt(p geom.Point) Row {
	for _, r := range v.rows {
		if r.bounds.H > 0 && r.bounds.Contains(p) {
			return r
		}
	}
	return nil
}

func (v *fakeView) OverScrollbar(p geom.Point) bool {
	return p.X >= rowWidth && v.bounds.Contains(p)
}

func (v *fakeView) SelectedRows() []Row {
	out := make([]Row, len(v.selected))
	for i, r := range v.selected {
		out[i] = r
	}
	return out
}

func (v *fakeView) Bounds() geom.Rect { return v.bounds }

func (v *fakeView) ViewportBounds() geom.Rect {
	return geom.R(0, 0, rowWidth, v.bounds.H)
}

func (v *fakeView) DoDragDrop(p Payload, _ Effect, target DropTarget) Effect {
	v.loopCalls++
	v.loopPayload = p
	if v.loop == nil {
		return EffectNone
	}
	return v.loop(p, target)
}

func (v *fakeView) AddAdorner(a *adorner.Adorner) {
	v.added++
	v.live[a] = true
	if len(v.live) > v.maxLive {
		v.maxLive = len(v.live)
	}
}

func (v *fakeView) RemoveAdorner(a *adorner.Adorner) {
	v.removed++
	delete(v.live, a)
}

func (v *fakeView) ScrollBy(delta float64) {
	v.scrolled = append(v.scrolled, delta)
}

func (v *fakeView) anyDropTarget() bool {
	for _, r := range v.rows {
		if r.dropTarget {
			return true
		}
	}
	return false
}

// commitCall records one CommitDrop invocation.
type commitCall struct {
	target  Item
	payload Payload
	index   int
}

func (c commitCall) String() string {
	return fmt.Sprintf("%v %s %d", c.target, c.payload, c.index)
}

// recordingHost is a permissive host with per-item overrides.
type recordingHost struct {
	noDrag   map[string]bool
	noDrop   map[string]bool
	noInsert bool
	accepts  int
	commits  []commitCall
	started  []Item
}

func newRecordingHost() *recordingHost {
	return &recordingHost{
		noDrag: make(map[string]bool),
		noDrop: make(map[string]bool),
	}
}

func (h *recordingHost) CanDrag(item Item) bool {
	return !h.noDrag[item.(string)]
}

func (h *recordingHost) DragStarted(item Item) DraggedItem {
	h.started = append(h.started, item)
	return ItemRef(item)
}

func (h *recordingHost) CanAcceptDrop(target Item, _ Payload, index int) bool {
	h.accepts++
	if index != NoIndex {
		return !h.noInsert
	}
	if target == nil {
		return true
	}
	return !h.noDrop[target.(string)]
}

func (h *recordingHost) CommitDrop(target Item, payload Payload, index int) error {
	h.commits = append(h.commits, commitCall{target: target, payload: payload, index: index})
	return nil
}
