package tree

import "github.com/google/uuid"

// Forest is the root collection of a tree.
type Forest struct {
	roots []*Node
}

// NewForest creates a forest holding roots in order.
func NewForest(roots ...*Node) *Forest {
	f := &Forest{}
	for _, r := range roots {
		f.Append(r)
	}
	return f
}

// Roots returns the root slice. Callers must not modify it.
func (f *Forest) Roots() []*Node {
	return f.roots
}

// Len returns the number of roots.
func (f *Forest) Len() int {
	return len(f.roots)
}

// Append adds n as the last root.
func (f *Forest) Append(n *Node) {
	f.Insert(len(f.roots), n)
}

// Insert places n at index among the roots, clamped after n is detached.
func (f *Forest) Insert(index int, n *Node) {
	if n == nil {
		return
	}
	n.Detach()
	f.roots = insertNode(f.roots, index, n)
	n.forest = f
}

// Remove detaches a root. It returns false if n is not a root of f.
func (f *Forest) Remove(n *Node) bool {
	if n == nil || n.forest != f {
		return false
	}
	n.Detach()
	return true
}

// ChildrenOf returns the children of parent, or the roots when parent is nil.
func (f *Forest) ChildrenOf(parent *Node) []*Node {
	if parent == nil {
		return f.roots
	}
	return parent.children
}

// InsertUnder inserts n at index under parent, or among the roots when
// parent is nil.
func (f *Forest) InsertUnder(parent *Node, index int, n *Node) {
	if parent == nil {
		f.Insert(index, n)
		return
	}
	parent.InsertAt(index, n)
}

// Walk visits every node in pre-order, stopping when fn returns false.
func (f *Forest) Walk(fn func(node *Node, depth int) bool) {
	for _, r := range f.roots {
		if !r.Walk(fn) {
			return
		}
	}
}

// Find returns the node with the given ID, or nil.
func (f *Forest) Find(id uuid.UUID) *Node {
	for _, r := range f.roots {
		if n := r.Find(id); n != nil {
			return n
		}
	}
	return nil
}

// Owns reports whether n is reachable from f's roots.
func (f *Forest) Owns(n *Node) bool {
	if n == nil {
		return false
	}
	top := n
	for top.parent != nil {
		top = top.parent
	}
	return top.forest == f
}

// Count returns the total number of nodes.
func (f *Forest) Count() int {
	count := 0
	f.Walk(func(*Node, int) bool {
		count++
		return true
	})
	return count
}
