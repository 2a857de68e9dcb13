// Package host implements the drag and drop capabilities over a tree.Forest.
//
// Host answers the controller's permission questions from per-node flags
// and materializes committed drops by moving, copying or creating nodes.
package host

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/treedrop/internal/dnd"
	"github.com/dshills/treedrop/internal/logging"
	"github.com/dshills/treedrop/internal/tree"
)

// DefaultNodeName names nodes created from payloads nobody understood.
const DefaultNodeName = "New node"

var (
	// ErrInvalidTarget indicates a drop target that is not part of the forest.
	ErrInvalidTarget = errors.New("invalid drop target")

	// ErrCycle indicates a move of a node into its own subtree.
	ErrCycle = errors.New("cannot move a node into itself")
)

// Mode selects what a drop of existing nodes does.
type Mode uint8

const (
	// ModeMove relocates dragged nodes.
	ModeMove Mode = iota
	// ModeCopy inserts deep copies of dragged nodes.
	ModeCopy
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeCopy {
		return "copy"
	}
	return "move"
}

// ParseMode parses "move" or "copy".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "move":
		return ModeMove, nil
	case "copy":
		return ModeCopy, nil
	default:
		return ModeMove, fmt.Errorf("unknown drop mode %q", s)
	}
}

// Operation records one committed drop.
type Operation struct {
	Mode   Mode
	Nodes  []string // names of the nodes placed, in final order
	Target string   // path of the parent or drop target; "/" is the root
	Index  int      // insertion index, or dnd.NoIndex for onto-drops
}

func (o Operation) String() string {
	where := "onto " + o.Target
	if o.Index != dnd.NoIndex {
		where = fmt.Sprintf("into %s at %d", o.Target, o.Index)
	}
	return fmt.Sprintf("%s [%s] %s", o.Mode, strings.Join(o.Nodes, ", "), where)
}

// Host is the sample DragHandler and DropHandler.
type Host struct {
	forest *tree.Forest
	mode   Mode
	log    *logging.Logger
	ops    []Operation
}

// Option configures a Host.
type Option func(*Host)

// WithMode sets the drop mode.
func WithMode(m Mode) Option {
	return func(h *Host) {
		h.mode = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.log = l.WithComponent("host")
		}
	}
}

// New creates a host over forest.
func New(forest *tree.Forest, opts ...Option) *Host {
	h := &Host{
		forest: forest,
		log:    logging.NullLogger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Forest returns the underlying forest.
func (h *Host) Forest() *tree.Forest {
	return h.forest
}

// Mode returns the drop mode.
func (h *Host) Mode() Mode {
	return h.mode
}

// SetMode changes the drop mode.
func (h *Host) SetMode(m Mode) {
	h.mode = m
}

// Log returns a copy of the committed operations, oldest first.
func (h *Host) Log() []Operation {
	out := make([]Operation, len(h.ops))
	copy(out, h.ops)
	return out
}

// LastOperation returns the most recent operation.
func (h *Host) LastOperation() (Operation, bool) {
	if len(h.ops) == 0 {
		return Operation{}, false
	}
	return h.ops[len(h.ops)-1], true
}

// CanDrag implements dnd.DragHandler.
func (h *Host) CanDrag(item dnd.Item) bool {
	n, ok := item.(*tree.Node)
	return ok && n.AllowDrag && h.forest.Owns(n)
}

// DragStarted implements dnd.DragHandler.
func (h *Host) DragStarted(item dnd.Item) dnd.DraggedItem {
	return dnd.ItemRef(item)
}

// CanAcceptDrop implements dnd.DropHandler. Onto-drops need AllowDrop on
// the target, and the root always accepts them. An insert needs AllowInsert
// on a sibling next to the gap, at the top level too.
func (h *Host) CanAcceptDrop(target dnd.Item, payload dnd.Payload, index int) bool {
	node, ok := h.resolve(target)
	if !ok {
		return false
	}
	if h.mode == ModeMove && h.wouldCycle(node, payload) {
		return false
	}

	if index == dnd.NoIndex {
		return node == nil || node.AllowDrop
	}

	siblings := h.forest.ChildrenOf(node)
	if index < 0 || index > len(siblings) {
		return false
	}
	if index > 0 && siblings[index-1].AllowInsert {
		return true
	}
	return index < len(siblings) && siblings[index].AllowInsert
}

// CommitDrop implements dnd.DropHandler.
func (h *Host) CommitDrop(target dnd.Item, payload dnd.Payload, index int) error {
	node, ok := h.resolve(target)
	if !ok {
		return fmt.Errorf("%w: %v", ErrInvalidTarget, target)
	}
	if h.mode == ModeMove && h.wouldCycle(node, payload) {
		return ErrCycle
	}

	var placed []*tree.Node
	if index == dnd.NoIndex {
		placed = h.materialize(payload)
		for _, n := range placed {
			h.forest.InsertUnder(node, len(h.forest.ChildrenOf(node)), n)
		}
		if node != nil {
			node.Expanded = true
		}
	} else {
		placed = h.insert(node, payload, index)
	}

	op := Operation{
		Mode:   h.mode,
		Nodes:  nodeNames(placed),
		Target: pathOf(node),
		Index:  index,
	}
	h.ops = append(h.ops, op)
	h.log.Info("%s", op)
	return nil
}

// insert places the payload before the child currently at index. Dragged
// siblings are detached first so the anchor stays put, then the reversed
// payload is inserted at the anchor's index.
func (h *Host) insert(parent *tree.Node, payload dnd.Payload, index int) []*tree.Node {
	siblings := h.forest.ChildrenOf(parent)
	moving := h.moving(payload)

	var anchor *tree.Node
	for i := index; i < len(siblings); i++ {
		if !moving[siblings[i]] {
			anchor = siblings[i]
			break
		}
	}

	nodes := h.materialize(payload.Reversed())
	for _, n := range nodes {
		n.Detach()
	}

	at := len(h.forest.ChildrenOf(parent))
	if anchor != nil {
		at = anchor.Index()
	}
	for _, n := range nodes {
		h.forest.InsertUnder(parent, at, n)
	}

	placed := make([]*tree.Node, len(nodes))
	for i, n := range nodes {
		placed[len(nodes)-1-i] = n
	}
	return placed
}

// materialize turns payload items into nodes ready to be placed.
func (h *Host) materialize(payload dnd.Payload) []*tree.Node {
	if payload.IsEmpty() {
		return []*tree.Node{tree.NewNode(DefaultNodeName)}
	}

	seen := make(map[*tree.Node]bool)
	out := make([]*tree.Node, 0, payload.Len())
	for _, it := range payload.Items() {
		switch it.Kind {
		case dnd.KindItem:
			n, ok := it.Item.(*tree.Node)
			if !ok || !h.forest.Owns(n) {
				out = append(out, tree.NewNode(DefaultNodeName))
				continue
			}
			if h.mode == ModeCopy {
				out = append(out, n.Clone())
				continue
			}
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		case dnd.KindValue:
			out = append(out, tree.NewNode(valueName(it.Value)))
		default:
			out = append(out, tree.NewNode(DefaultNodeName))
		}
	}
	return out
}

// moving returns the forest nodes a move-mode drop would relocate.
func (h *Host) moving(payload dnd.Payload) map[*tree.Node]bool {
	set := make(map[*tree.Node]bool)
	if h.mode != ModeMove {
		return set
	}
	for _, item := range payload.Nodes() {
		if n, ok := item.(*tree.Node); ok && h.forest.Owns(n) {
			set[n] = true
		}
	}
	return set
}

// wouldCycle reports whether moving payload under target puts a node
// inside its own subtree.
func (h *Host) wouldCycle(target *tree.Node, payload dnd.Payload) bool {
	if target == nil {
		return false
	}
	for n := range h.moving(payload) {
		if n.Contains(target) {
			return true
		}
	}
	return false
}

// resolve maps a controller item to a forest node; nil is the root.
func (h *Host) resolve(target dnd.Item) (*tree.Node, bool) {
	if target == nil {
		return nil, true
	}
	n, ok := target.(*tree.Node)
	if !ok || n == nil || !h.forest.Owns(n) {
		return nil, false
	}
	return n, true
}

func valueName(v any) string {
	switch v := v.(type) {
	case nil:
		return DefaultNodeName
	case string:
		if v == "" {
			return DefaultNodeName
		}
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func nodeNames(nodes []*tree.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func pathOf(n *tree.Node) string {
	if n == nil {
		return "/"
	}
	return n.Path()
}
