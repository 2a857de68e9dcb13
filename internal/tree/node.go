// Package tree provides the host-side node model shown by the tree view.
//
// A Node belongs to at most one container: either a parent node or the
// Forest's root collection. Moving a node (Append, InsertAt) detaches it
// from its current container first.
//
// The package is not safe for concurrent use; all mutation happens on the
// UI goroutine.
package tree

import (
	"strings"

	"github.com/google/uuid"
)

// Node is one item in the tree.
type Node struct {
	ID   uuid.UUID
	Name string

	// Permission flags consulted by the host.
	AllowDrag   bool
	AllowDrop   bool
	AllowInsert bool

	// Expanded controls whether children are shown.
	Expanded bool

	parent   *Node
	forest   *Forest // set for root nodes only
	children []*Node
}

// NewNode creates a detached node with all permissions granted.
func NewNode(name string) *Node {
	return &Node{
		ID:          uuid.New(),
		Name:        name,
		AllowDrag:   true,
		AllowDrop:   true,
		AllowInsert: true,
	}
}

// Parent returns the parent node, or nil for root and detached nodes.
func (n *Node) Parent() *Node {
	return n.parent
}

// IsRoot returns true if n sits in a forest's root collection.
func (n *Node) IsRoot() bool {
	return n.forest != nil
}

// Attached returns true if n belongs to a parent or a forest.
func (n *Node) Attached() bool {
	return n.parent != nil || n.forest != nil
}

// Children returns the child slice. Callers must not modify it.
func (n *Node) Children() []*Node {
	return n.children
}

// Len returns the number of children.
func (n *Node) Len() int {
	return len(n.children)
}

// Child returns the i-th child, or nil if out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// HasChildren returns true if n has at least one child.
func (n *Node) HasChildren() bool {
	return len(n.children) > 0
}

// Index returns n's position within its container, or -1 if detached.
func (n *Node) Index() int {
	switch {
	case n.parent != nil:
		return indexOf(n.parent.children, n)
	case n.forest != nil:
		return indexOf(n.forest.roots, n)
	default:
		return -1
	}
}

// Append adds child as the last child of n.
func (n *Node) Append(child *Node) {
	n.InsertAt(len(n.children), child)
}

// InsertAt inserts child at index among n's children. The index is
// clamped to the valid range after child has been detached. Inserting n
// into its own subtree is ignored.
func (n *Node) InsertAt(index int, child *Node) {
	if child == nil || child.Contains(n) {
		return
	}
	child.Detach()
	n.children = insertNode(n.children, index, child)
	child.parent = n
}

// Remove detaches child from n. It returns false if child is not a child of n.
func (n *Node) Remove(child *Node) bool {
	if child == nil || child.parent != n {
		return false
	}
	child.Detach()
	return true
}

// Detach removes n from its container. Detaching a detached node is a no-op.
func (n *Node) Detach() {
	switch {
	case n.parent != nil:
		n.parent.children = removeNode(n.parent.children, n)
		n.parent = nil
	case n.forest != nil:
		n.forest.roots = removeNode(n.forest.roots, n)
		n.forest = nil
	}
}

// IsAncestorOf reports whether n is a strict ancestor of other.
func (n *Node) IsAncestorOf(other *Node) bool {
	if other == nil {
		return false
	}
	for p := other.parent; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// Contains reports whether other is n or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	return other == n || n.IsAncestorOf(other)
}

// Clone returns a detached deep copy of n with fresh IDs.
func (n *Node) Clone() *Node {
	c := &Node{
		ID:          uuid.New(),
		Name:        n.Name,
		AllowDrag:   n.AllowDrag,
		AllowDrop:   n.AllowDrop,
		AllowInsert: n.AllowInsert,
		Expanded:    n.Expanded,
	}
	for _, child := range n.children {
		cc := child.Clone()
		cc.parent = c
		c.children = append(c.children, cc)
	}
	return c
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// stops the walk; Walk then returns false as well.
func (n *Node) Walk(fn func(node *Node, depth int) bool) bool {
	return n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) bool {
	if !fn(n, depth) {
		return false
	}
	for _, child := range n.children {
		if !child.walk(fn, depth+1) {
			return false
		}
	}
	return true
}

// Find returns the node with the given ID in n's subtree, or nil.
func (n *Node) Find(id uuid.UUID) *Node {
	var found *Node
	n.Walk(func(node *Node, _ int) bool {
		if node.ID == id {
			found = node
			return false
		}
		return true
	})
	return found
}

// Path returns the slash-separated names from the top of n's tree down to n.
func (n *Node) Path() string {
	var parts []string
	for p := n; p != nil; p = p.parent {
		parts = append(parts, p.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return "/" + strings.Join(parts, "/")
}

// Depth returns the number of ancestors of n.
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// String returns the node name.
func (n *Node) String() string {
	return n.Name
}

func indexOf(nodes []*Node, n *Node) int {
	for i, c := range nodes {
		if c == n {
			return i
		}
	}
	return -1
}

func insertNode(nodes []*Node, index int, n *Node) []*Node {
	if index < 0 {
		index = 0
	}
	if index > len(nodes) {
		index = len(nodes)
	}
	nodes = append(nodes, nil)
	copy(nodes[index+1:], nodes[index:])
	nodes[index] = n
	return nodes
}

func removeNode(nodes []*Node, n *Node) []*Node {
	i := indexOf(nodes, n)
	if i < 0 {
		return nodes
	}
	copy(nodes[i:], nodes[i+1:])
	nodes[len(nodes)-1] = nil
	return nodes[:len(nodes)-1]
}
