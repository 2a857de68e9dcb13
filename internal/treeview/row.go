package treeview

import (
	"github.com/dshills/treedrop/internal/dnd"
	"github.com/dshills/treedrop/internal/geom"
	"github.com/dshills/treedrop/internal/tree"
)

// Row is one visible node. Rows are reused across refreshes so the drop
// target highlight survives redraws.
type Row struct {
	view   *View
	node   *tree.Node
	parent *Row
	depth  int
	pos    int
	target bool
}

var _ dnd.Row = (*Row)(nil)

// Node returns the node shown by the row.
func (r *Row) Node() *tree.Node {
	return r.node
}

// Depth returns the nesting level, 0 for roots.
func (r *Row) Depth() int {
	return r.depth
}

// Position returns the row's index in the flattened list.
func (r *Row) Position() int {
	return r.pos
}

// Bounds returns the row rectangle in widget units at the current scroll
// offset. Rows span the width left of the scrollbar.
func (r *Row) Bounds() geom.Rect {
	v := r.view
	u := v.unit()
	_, width := v.listWidth()
	top := float64(v.cfg.Gutter)*u + float64(r.pos)*v.rowUnits() - v.scroll
	return geom.R(0, top, float64(width)*u, v.rowUnits())
}

func (r *Row) Item() dnd.Item {
	return r.node
}

func (r *Row) Parent() dnd.Row {
	if r.parent == nil {
		return nil
	}
	return r.parent
}

func (r *Row) Index() int {
	return r.node.Index()
}

func (r *Row) HasExpandedChildren() bool {
	return r.node.Expanded && r.node.HasChildren()
}

func (r *Row) SetDropTarget(on bool) {
	r.target = on
}

func (r *Row) IsDropTarget() bool {
	return r.target
}

func (r *Row) String() string {
	return r.node.Path()
}
